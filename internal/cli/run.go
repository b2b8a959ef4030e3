package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"focustimer/internal/app"
	"focustimer/internal/core/model"
	"focustimer/internal/ui/tui"
)

func newRunCmd(opts *options) *cobra.Command {
	var (
		mode  string
		task  string
		start bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a focus session in a full-screen terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load("focusctl.log")
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()

			focus, err := app.Open(cmd.Context(), app.Options{
				Config:     env.config,
				Logger:     env.logger,
				BellWriter: os.Stdout,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := focus.Close(); err != nil {
					opts.ui.Warning("saving state: %v", err)
				}
			}()

			if cmd.Flags().Changed("mode") {
				parsed, err := model.ParseMode(mode)
				if err != nil {
					return err
				}
				if err := focus.Session.SwitchMode(parsed); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("task") {
				focus.Session.SetTask(task)
			}
			if start {
				focus.Session.Start()
			}

			program := tea.NewProgram(
				tui.New(focus.Session, tui.Options{
					Events:     focus.Session.Subscribe(64),
					Statistics: focus.Statistics,
				}),
				tea.WithAltScreen(),
			)
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("terminal ui: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "focus", "mode to start in (focus, short, long)")
	cmd.Flags().StringVarP(&task, "task", "t", "", "label for the current task")
	cmd.Flags().BoolVarP(&start, "start", "s", false, "start the countdown immediately")
	return cmd
}
