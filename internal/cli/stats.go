package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"focustimer/internal/app"
	"focustimer/internal/core/stats"
	"focustimer/internal/output"
	"focustimer/internal/storage"
)

func newStatsCmd(opts *options) *cobra.Command {
	var reset string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show focus statistics for today, this week and all time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load("")
			if err != nil {
				return err
			}
			store, err := app.OpenStore(cmd.Context(), env.config)
			if err != nil {
				return err
			}
			defer store.Close()

			now := time.Now()
			statistics, err := app.CurrentStatistics(cmd.Context(), store, now)
			if err != nil {
				return err
			}
			if reset != "" {
				accumulator := stats.New(statistics, stats.Options{Logger: env.logger})
				if err := accumulator.ResetPeriod(stats.Period(reset)); err != nil {
					return err
				}
				statistics = accumulator.Snapshot()
				if err := store.SaveStatistics(cmd.Context(), statistics, now); err != nil {
					return err
				}
				opts.ui.Success("%s statistics reset", output.PeriodTitle(stats.Period(reset)))
			}
			opts.ui.Statistics(statistics)
			return nil
		},
	}
	cmd.Flags().StringVar(&reset, "reset", "", "zero one period first (today, this_week, all_time)")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		limit int
		since time.Duration
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed focus sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			env, err := opts.load("")
			if err != nil {
				return err
			}
			store, err := app.OpenStore(cmd.Context(), env.config)
			if err != nil {
				return err
			}
			defer store.Close()

			var from time.Time
			if since > 0 {
				from = time.Now().Add(-since)
			}
			records, err := store.ListSessions(cmd.Context(), from, limit)
			if err != nil {
				return err
			}
			opts.ui.History(records)
			opts.ui.VerboseLog("database: %s", filepath.Join(env.config.DataDir, storage.DatabaseFileName))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of sessions (0 for all)")
	cmd.Flags().DurationVar(&since, "since", 0, "only sessions completed within this duration, e.g. 24h")
	return cmd
}

// settingsPath returns the settings file for the loaded configuration.
func settingsPath(env *environment) string {
	return storage.SettingsPath(env.config.ConfigDir)
}
