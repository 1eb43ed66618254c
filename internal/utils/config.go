package utils

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config carries everything a download run needs outside the object key
// itself. Values resolve in the usual order: defaults, then the optional
// config file, then SLUICE_* environment variables, then flags.
type Config struct {
	Bucket      string `mapstructure:"bucket" yaml:"bucket"`
	Region      string `mapstructure:"region" yaml:"region"`
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey   string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey   string `mapstructure:"secret_key" yaml:"secret_key"`
	Connections int    `mapstructure:"connections" yaml:"connections"`
	DownloadDir string `mapstructure:"download_dir" yaml:"download_dir"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	Debug       bool   `mapstructure:"debug" yaml:"debug"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("region", DefaultRegion)
	v.SetDefault("connections", DefaultConnections)
	v.SetDefault("download_dir", DefaultDownloadDir)

	v.SetEnvPrefix("SLUICE")
	v.AutomaticEnv()
	for _, key := range []string{"bucket", "region", "endpoint", "access_key", "secret_key", "connections", "download_dir", "log_file", "debug"} {
		v.BindEnv(key)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Connections < 1 {
		return fmt.Errorf("connections must be a positive integer, got %d", c.Connections)
	}
	return nil
}
