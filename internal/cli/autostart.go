package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"focustimer/internal/platform"
)

// AutostartName is the name the tray app is registered under at login.
const AutostartName = "FocusTimer"

const trayBinary = "focustimer"

func newAutostartCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start the tray app when you log in",
	}
	cmd.AddCommand(
		newAutostartEnableCmd(opts),
		newAutostartDisableCmd(opts),
		newAutostartStatusCmd(opts),
	)
	return cmd
}

func newAutostartEnableCmd(opts *options) *cobra.Command {
	var execPath string
	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Register the tray app to start at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if execPath == "" {
				found, err := findTrayBinary()
				if err != nil {
					return err
				}
				execPath = found
			}
			entry := platform.Entry{
				Name:    AutostartName,
				Exec:    execPath,
				Comment: "Pomodoro focus timer",
			}
			if opts.configPath != "" {
				entry.Args = []string{"--config", opts.configPath}
			}
			if err := platform.NewService().EnableAutostart(entry); err != nil {
				return err
			}
			opts.ui.Success("autostart enabled for %s", execPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&execPath, "exec", "", "path to the focustimer binary (default: next to focusctl or on PATH)")
	return cmd
}

func newAutostartDisableCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Stop starting the tray app at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := platform.NewService().DisableAutostart(AutostartName); err != nil {
				return err
			}
			opts.ui.Success("autostart disabled")
			return nil
		},
	}
}

func newAutostartStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether autostart is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := platform.NewService().AutostartEnabled(AutostartName)
			if err != nil {
				return err
			}
			if enabled {
				opts.ui.Info("autostart is enabled")
			} else {
				opts.ui.Info("autostart is disabled")
			}
			return nil
		},
	}
}

func findTrayBinary() (string, error) {
	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), trayBinary)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(trayBinary)
	if err != nil {
		return "", fmt.Errorf("cannot find the %s binary, pass --exec: %w", trayBinary, err)
	}
	return filepath.Abs(path)
}
