// Package config loads application-level configuration (where data lives, how
// to log, how to play sounds). Timer settings live in the YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config and data directories.
const AppName = "focustimer"

// EnvPrefix prefixes environment overrides, e.g. FOCUSTIMER_LOG_LEVEL.
const EnvPrefix = "FOCUSTIMER"

var envReplacer = strings.NewReplacer(".", "_")

// Config is the resolved application configuration.
type Config struct {
	ConfigDir    string
	DataDir      string
	LogLevel     string
	LogFile      string
	Debug        bool
	TickInterval time.Duration
	SoundCommand string
	SoundFile    string
	TerminalBell bool
	// File is the config file that was read, empty when none was found.
	File string
}

// DefaultDir returns the OS-standard config directory for the app.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return filepath.Join(configDir, AppName), nil
	}
	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return "", fmt.Errorf("get config dir: %w", errors.Join(err, homeErr))
	}
	return filepath.Join(homeDir, ".config", AppName), nil
}

// Load resolves configuration from defaults, an optional config file and the
// environment. An explicit path that cannot be read is an error; a missing
// default config.yaml is not.
func Load(path string) (Config, error) {
	v := viper.New()

	configDir, err := DefaultDir()
	if err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		configDir = filepath.Dir(path)
	} else {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	v.SetDefault("config_dir", configDir)
	v.SetDefault("data_dir", configDir)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("debug", false)
	v.SetDefault("tick_interval", time.Second)
	v.SetDefault("sound.command", "")
	v.SetDefault("sound.file", "")
	v.SetDefault("sound.bell", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		ConfigDir:    v.GetString("config_dir"),
		DataDir:      v.GetString("data_dir"),
		LogLevel:     v.GetString("log.level"),
		LogFile:      v.GetString("log.file"),
		Debug:        v.GetBool("debug"),
		TickInterval: v.GetDuration("tick_interval"),
		SoundCommand: v.GetString("sound.command"),
		SoundFile:    v.GetString("sound.file"),
		TerminalBell: v.GetBool("sound.bell"),
		File:         v.ConfigFileUsed(),
	}
	if cfg.TickInterval <= 0 {
		return Config{}, fmt.Errorf("tick_interval must be positive, got %s", cfg.TickInterval)
	}
	return cfg, nil
}
