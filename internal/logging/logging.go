// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavour.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means warn.
	Level string
	// Verbosity is the count of -v flags; it lowers the level one step per flag.
	Verbosity int
	// Debug switches to the human-readable development encoder.
	Debug bool
	// OutputPaths overrides where logs go (default stderr).
	OutputPaths []string
}

// ParseLevel converts a level name into a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "debug", "trace":
		return zapcore.DebugLevel, nil
	default:
		return zapcore.WarnLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// EffectiveLevel applies the verbosity count on top of the named level.
func EffectiveLevel(options Options) (zapcore.Level, error) {
	level, err := ParseLevel(options.Level)
	if err != nil {
		return level, err
	}
	for count := options.Verbosity; count > 0 && level > zapcore.DebugLevel; count-- {
		level--
	}
	return level, nil
}

// New builds a logger from options.
func New(options Options) (*zap.Logger, error) {
	logger, _, err := Build(options)
	return logger, err
}

// Build is New that also returns the level handle so callers can change the
// level while the logger is in use.
func Build(options Options) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := EffectiveLevel(options)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}

	config := zap.NewProductionConfig()
	if options.Debug {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	if len(options.OutputPaths) > 0 {
		config.OutputPaths = options.OutputPaths
	}

	logger, err := config.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, config.Level, nil
}
