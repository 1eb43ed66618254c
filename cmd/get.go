package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/halver/sluice/internal/engine"
	"github.com/halver/sluice/internal/output"
	"github.com/halver/sluice/internal/transport"
	"github.com/halver/sluice/internal/utils"
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [KEY or BUCKET/KEY]",
		Short: "Download an object from S3",
		Long: `Download an object from an S3-compatible store using concurrent
ranged connections. Interrupted downloads resume from the bytes already on
disk.

Examples:
  sluice get path/to/file.bin --bucket mybucket
  sluice get mybucket/path/to/file.bin -b mybucket -c 16
  sluice get file.bin -b mybucket --endpoint http://localhost:9000`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				output.PrintError(fmt.Sprintf("Configuration error: %v", err))
				os.Exit(1)
			}
			if err := cfg.Validate(); err != nil {
				output.PrintError(fmt.Sprintf("Configuration error: %v", err))
				os.Exit(1)
			}
			if cfg.DownloadDir == "" {
				cwd, _ := os.Getwd()
				cfg.DownloadDir = filepath.Join(cwd, utils.DefaultDownloadDir)
			}

			logFile, err := utils.OpenLogFile(cfg.DownloadDir, cfg.LogFile)
			if err != nil {
				output.PrintError(fmt.Sprintf("Error opening log file: %v", err))
				os.Exit(1)
			}
			defer logFile.Close()
			utils.InitLogger(logFile, cfg.Debug)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			t, err := transport.NewS3Transport(ctx, cfg)
			if err != nil {
				output.PrintError(fmt.Sprintf("Error creating S3 client: %v", err))
				os.Exit(1)
			}

			job := &utils.DownloadJob{
				ID:          uuid.NewString(),
				Bucket:      cfg.Bucket,
				Key:         utils.NormalizeKey(cfg.Bucket, args[0]),
				DownloadDir: cfg.DownloadDir,
				Connections: cfg.Connections,
			}

			output.PrintHeader(fmt.Sprintf("Downloading s3://%s/%s", job.Bucket, job.Key))
			result, err := engine.New(t).Download(ctx, job)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					output.PrintWarning("Download cancelled, partial segments preserved for resume")
					return
				}
				output.PrintError(fmt.Sprintf("Download failed: %v", err))
				os.Exit(1)
			}

			output.PrintSuccess(fmt.Sprintf("%s Saved %s (%s)", output.StyleSymbols["pass"],
				result.OutputPath, utils.FormatBytes(uint64(result.Size))))
			output.PrintDetail(fmt.Sprintf("  time %s %s avg %s %s attempts %d (max %d per segment)",
				utils.FormatDuration(result.Elapsed), output.StyleSymbols["dot"],
				utils.FormatSpeed(result.AvgSpeed), output.StyleSymbols["dot"],
				result.TotalRetries, result.MaxRetries))
		},
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(newGetCmd())
}
