package cmd

import (
	"fmt"
	"os"

	"github.com/halver/sluice/internal/utils"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	bucket      string
	region      string
	endpoint    string
	accessKey   string
	secretKey   string
	connections int
	downloadDir string
	logFileName string
	debug       bool
)

var SluiceVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "sluice",
	Short:   "Sluice is a resumable multi-connection S3 downloader",
	Version: SluiceVersion,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&bucket, "bucket", "b", "", "S3 bucket name")
	rootCmd.PersistentFlags().StringVarP(&region, "region", "r", utils.DefaultRegion, "AWS region")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Endpoint URL override for S3-compatible stores")
	rootCmd.PersistentFlags().StringVar(&accessKey, "access-key", "", "Access key (falls back to the default AWS credential chain)")
	rootCmd.PersistentFlags().StringVar(&secretKey, "secret-key", "", "Secret key")
	rootCmd.PersistentFlags().IntVarP(&connections, "connections", "c", utils.DefaultConnections, "Number of concurrent segment connections")
	rootCmd.PersistentFlags().StringVarP(&downloadDir, "download-dir", "d", "", "Download directory (default ./files)")
	rootCmd.PersistentFlags().StringVar(&logFileName, "log-file", "", "Log file name inside the download directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// resolveConfig layers flag overrides on top of the file/env config.
func resolveConfig(cmd *cobra.Command) (*utils.Config, error) {
	cfg, err := utils.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("bucket") {
		cfg.Bucket = bucket
	}
	if flags.Changed("region") {
		cfg.Region = region
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = endpoint
	}
	if flags.Changed("access-key") {
		cfg.AccessKey = accessKey
	}
	if flags.Changed("secret-key") {
		cfg.SecretKey = secretKey
	}
	if flags.Changed("connections") {
		cfg.Connections = connections
	}
	if flags.Changed("download-dir") {
		cfg.DownloadDir = downloadDir
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFileName
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	return cfg, nil
}
