package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type AppConfig struct {
	// TempDir stages scratch bitmaps between preprocessing and tracing.
	// Empty means the system temp directory.
	TempDir       string
	MaxUploadSize int64
	MaxBulkFiles  int
}

// StorageConfig points at an S3-compatible bucket used to archive produced
// SVGs. Disabled by default.
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "localhost")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("APP_TEMP_DIR", "")
	viper.SetDefault("APP_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	viper.SetDefault("APP_MAX_BULK_FILES", 20)
	viper.SetDefault("STORAGE_ENABLED", false)
	viper.SetDefault("S3_ENDPOINT", "localhost:9000")
	viper.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	viper.SetDefault("S3_USE_SSL", false)
	viper.SetDefault("S3_BUCKET_NAME", "svgs")
	viper.SetDefault("S3_REGION", "us-east-1")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		App: AppConfig{
			TempDir:       viper.GetString("APP_TEMP_DIR"),
			MaxUploadSize: viper.GetInt64("APP_MAX_UPLOAD_SIZE"),
			MaxBulkFiles:  viper.GetInt("APP_MAX_BULK_FILES"),
		},
		Storage: StorageConfig{
			Enabled:         viper.GetBool("STORAGE_ENABLED"),
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          viper.GetBool("S3_USE_SSL"),
			BucketName:      viper.GetString("S3_BUCKET_NAME"),
			Region:          viper.GetString("S3_REGION"),
		},
	}

	if cfg.App.TempDir != "" {
		if err := os.MkdirAll(cfg.App.TempDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create temp directory %s: %w", cfg.App.TempDir, err)
		}
	}

	return cfg, nil
}
