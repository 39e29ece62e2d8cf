package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Transport
	ListenAddr string   `mapstructure:"listen_addr"`
	ReadLimit  int64    `mapstructure:"read_limit"`
	ICEServers []string `mapstructure:"ice_servers"`

	// Replay
	InjectionTimeout time.Duration `mapstructure:"injection_timeout"`
	QueueSize        int           `mapstructure:"queue_size"`
	DryRun           bool          `mapstructure:"dry_run"`
	CheckBounds      bool          `mapstructure:"check_bounds"`
	Display          string        `mapstructure:"display"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns configuration with sensible defaults.
func Default() *Config {
	return &Config{
		ListenAddr:       ":5001",
		ReadLimit:        64 << 10,
		ICEServers:       []string{"stun:stun.l.google.com:19302"},
		InjectionTimeout: 250 * time.Millisecond,
		QueueSize:        256,
		CheckBounds:      true,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// Load reads configuration from file and environment. An empty cfgFile
// searches the default locations; a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("inputrelay")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INPUTRELAY")
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override values that
// are absent from the config file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("read_limit", cfg.ReadLimit)
	v.SetDefault("ice_servers", cfg.ICEServers)
	v.SetDefault("injection_timeout", cfg.InjectionTimeout)
	v.SetDefault("queue_size", cfg.QueueSize)
	v.SetDefault("dry_run", cfg.DryRun)
	v.SetDefault("check_bounds", cfg.CheckBounds)
	v.SetDefault("display", cfg.Display)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "InputRelay")
	case "darwin":
		return "/Library/Application Support/InputRelay"
	default:
		return "/etc/inputrelay"
	}
}
