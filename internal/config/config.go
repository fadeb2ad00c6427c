package config

import (
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Staging   Staging   `mapstructure:"staging"`
	Retention Retention `mapstructure:"retention"`
	OCR       OCR       `mapstructure:"ocr"`
	Retry     Retry     `mapstructure:"retry"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Staging holds configuration for the staging filesystem area.
type Staging struct {
	BaseDir       string `mapstructure:"base_dir"`        // root of the staging area
	InboundDir    string `mapstructure:"inbound_dir"`     // uploads zone, relative to base
	OutboundDir   string `mapstructure:"outbound_dir"`    // outputs zone, relative to base
	MaxUploadSize int64  `mapstructure:"max_upload_size"` // multipart memory bound in bytes
}

// Retention defines how long staged files live and how often the sweeper runs.
type Retention struct {
	MaxAge        time.Duration `mapstructure:"max_age"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// OCR holds text-recognition defaults.
type OCR struct {
	Language string `mapstructure:"language"` // default tesseract language
}

// Retry defines retry policy configuration for outbound fetches.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"server.http_port": "HTTP_PORT",
		"staging.base_dir": "STAGING_BASE_DIR",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// MustLoad loads the configuration from the specified directory.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
