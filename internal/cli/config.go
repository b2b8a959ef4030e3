package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"focustimer/internal/core/model"
	"focustimer/internal/storage"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change timer settings",
	}
	cmd.AddCommand(newConfigGetCmd(opts), newConfigSetCmd(opts), newConfigPathCmd(opts))
	return cmd
}

func newConfigGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key...]",
		Short: "Print all settings or the named ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load("")
			if err != nil {
				return err
			}
			settings, ignored, err := storage.LoadSettings(settingsPath(env))
			if err != nil {
				return err
			}
			for _, fieldErr := range ignored {
				opts.ui.Warning("ignored: %v", fieldErr)
			}

			if len(args) == 0 {
				opts.ui.Settings(settings)
				return nil
			}
			for _, key := range args {
				value, err := settings.Value(key)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
			}
			return nil
		},
	}
}

func newConfigSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: `Change one setting. Durations are whole minutes and are checked against
their allowed range; booleans accept true/false, on/off and yes/no.

A running tray app picks the change up on its next start.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load("")
			if err != nil {
				return err
			}
			path := settingsPath(env)
			settings, _, err := storage.LoadSettings(path)
			if err != nil {
				return err
			}
			patch, err := model.ParsePatch(args[0], args[1])
			if err != nil {
				return err
			}
			updated, err := settings.Apply(patch)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := storage.SaveSettings(path, updated); err != nil {
				return err
			}
			value, _ := updated.Value(args[0])
			opts.ui.Success("%s = %s", args[0], value)
			return nil
		},
	}
}

func newConfigPathCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where configuration and data are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load("")
			if err != nil {
				return err
			}
			configFile := env.config.File
			if configFile == "" {
				configFile = filepath.Join(env.config.ConfigDir, "config.yaml") + " (not present)"
			}
			table := opts.ui.Table([]string{"What", "Path"})
			_ = table.Append([]string{"config", configFile})
			_ = table.Append([]string{"settings", settingsPath(env)})
			_ = table.Append([]string{"database", filepath.Join(env.config.DataDir, storage.DatabaseFileName)})
			return table.Render()
		},
	}
}
