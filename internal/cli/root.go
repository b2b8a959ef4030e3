// Package cli implements the focusctl command line.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"focustimer/internal/config"
	"focustimer/internal/logging"
	"focustimer/internal/output"
)

// Build metadata, set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

type options struct {
	configPath string
	verbosity  int
	ui         *output.UI
}

// NewRootCmd creates the root CLI command.
func NewRootCmd() *cobra.Command {
	opts := &options{ui: output.New()}
	cmd := &cobra.Command{
		Use:           "focusctl",
		Short:         "Pomodoro focus timer for the terminal",
		Long:          "focusctl runs focus sessions in the terminal and manages the settings and history shared with the tray app.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is <config dir>/focustimer/config.yaml)")
	cmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		opts.ui.Out = cmd.OutOrStdout()
		opts.ui.ErrOut = cmd.ErrOrStderr()
		opts.ui.Verbose = opts.verbosity > 0
	}

	cmd.AddCommand(
		newRunCmd(opts),
		newShellCmd(opts),
		newStatsCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(opts),
		newAutostartCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// environment is what every command needs once flags are parsed.
type environment struct {
	config config.Config
	logger *zap.Logger
	level  zap.AtomicLevel
}

// load resolves configuration and builds a logger. defaultLogFile, when set,
// is used under the data dir if no log file is configured.
func (opts *options) load(defaultLogFile string) (*environment, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	logOptions := logging.Options{
		Level:     cfg.LogLevel,
		Debug:     cfg.Debug,
		Verbosity: opts.verbosity,
	}
	switch {
	case cfg.LogFile != "":
		logOptions.OutputPaths = []string{cfg.LogFile}
	case defaultLogFile != "":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		logOptions.OutputPaths = []string{filepath.Join(cfg.DataDir, defaultLogFile)}
	}
	logger, level, err := logging.Build(logOptions)
	if err != nil {
		return nil, err
	}

	if cfg.File != "" {
		opts.ui.VerboseLog("config: %s", cfg.File)
	}
	return &environment{config: cfg, logger: logger, level: level}, nil
}
