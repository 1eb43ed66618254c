package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/halver/sluice/internal/output"
	"github.com/halver/sluice/internal/utils"
	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove leftover scratch files from the download directory",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				output.PrintError(fmt.Sprintf("Configuration error: %v", err))
				os.Exit(1)
			}
			if cfg.DownloadDir == "" {
				cwd, _ := os.Getwd()
				cfg.DownloadDir = filepath.Join(cwd, utils.DefaultDownloadDir)
			}
			removed, err := cleanScratch(cfg.DownloadDir)
			if err != nil {
				output.PrintError(fmt.Sprintf("Error cleaning up scratch files: %v", err))
				os.Exit(1)
			}
			if removed == 0 {
				output.PrintInfo("No scratch files found")
				return
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d scratch file(s)", removed))
		},
	}
	return cmd
}

// cleanScratch removes segment scratch files and resume sidecars.
func cleanScratch(downloadDir string) (int, error) {
	entries, err := os.ReadDir(downloadDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !utils.PartFileRegex.MatchString(name) && !strings.HasSuffix(name, ".sluice.yml") {
			continue
		}
		if err := os.Remove(filepath.Join(downloadDir, name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func init() {
	rootCmd.AddCommand(newCleanCmd())
}
