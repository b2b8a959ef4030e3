package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"focustimer/internal/core/model"
	"focustimer/internal/core/stats"
	"focustimer/internal/session"
	"focustimer/internal/storage"
)

// UI provides colored output and respects verbose mode.
type UI struct {
	Verbose bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	bold          = color.New(color.Bold).SprintFunc()
)

// ModeColor returns the mode title colored by mode: red for focus, green for breaks.
func ModeColor(mode model.Mode) string {
	switch mode {
	case model.ModeFocus:
		return red(mode.Title())
	case model.ModeShortBreak:
		return green(mode.Title())
	case model.ModeLongBreak:
		return cyan(mode.Title())
	default:
		return string(mode)
	}
}

// RunningColor renders the running flag.
func RunningColor(running bool) string {
	if running {
		return green("running")
	}
	return yellow("paused")
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// Status prints a one-line summary of the session.
func (u *UI) Status(snapshot session.Snapshot) {
	state := snapshot.State
	line := fmt.Sprintf("%s  %s  %s  %.0f%%  cycle %d/%d  total %d",
		ModeColor(state.Mode),
		bold(snapshot.Formatted),
		RunningColor(state.IsRunning),
		snapshot.Progress,
		state.CompletedFocusSessionsInCycle,
		snapshot.Settings.SessionsBeforeLongBreak,
		state.TotalCompletedFocusSessions,
	)
	if state.Task != "" {
		line += "  " + cyan(state.Task)
	}
	fmt.Fprintln(u.Out, line)
}

// Statistics prints the period buckets, the averages and the streak.
func (u *UI) Statistics(statistics stats.Statistics) {
	table := u.Table([]string{"Period", "Focus", "Sessions", "Cycles", "Per Session"})
	for _, period := range stats.Periods {
		bucket, err := statistics.Bucket(period)
		if err != nil {
			continue
		}
		_ = table.Append([]string{
			PeriodTitle(period),
			FormatMinutes(bucket.FocusMinutes),
			fmt.Sprintf("%d", bucket.CompletedFocusSessions),
			fmt.Sprintf("%d", bucket.CompletedCycles),
			FormatMinutes(bucket.AverageMinutes()),
		})
	}
	_ = table.Render()

	fmt.Fprintf(u.Out, "\nDaily average this week: %s\n", FormatMinutes(statistics.DailyAverageMinutes()))

	days := statistics.Streak.Days
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	fmt.Fprintf(u.Out, "Streak: %s %s\n", green(fmt.Sprintf("%d", days)), unit)
}

// History prints completed sessions.
func (u *UI) History(records []*storage.SessionRecord) {
	if len(records) == 0 {
		u.Info("No completed sessions yet.")
		return
	}
	table := u.Table([]string{"Completed", "Mode", "Minutes", "Task"})
	for _, record := range records {
		_ = table.Append([]string{
			record.CompletedAt.Local().Format(time.DateTime),
			ModeColor(record.Mode),
			fmt.Sprintf("%d", record.Minutes),
			record.Task,
		})
	}
	_ = table.Render()
}

// Settings prints every timer setting as a key/value table.
func (u *UI) Settings(settings model.Settings) {
	table := u.Table([]string{"Key", "Value"})
	for _, row := range SettingsRows(settings) {
		_ = table.Append(row)
	}
	_ = table.Render()
}

// SettingsRows renders settings as key/value pairs keyed by their config names.
func SettingsRows(settings model.Settings) [][]string {
	rows := make([][]string, 0, len(model.SettingKeys))
	for _, key := range model.SettingKeys {
		value, _ := settings.Value(key)
		rows = append(rows, []string{key, value})
	}
	return rows
}

// PeriodTitle returns a display label for a statistics period.
func PeriodTitle(period stats.Period) string {
	switch period {
	case stats.PeriodToday:
		return "Today"
	case stats.PeriodThisWeek:
		return "This week"
	case stats.PeriodAllTime:
		return "All time"
	default:
		return string(period)
	}
}

// FormatMinutes renders minutes as "1h 05m" or "25m".
func FormatMinutes(minutes float64) string {
	total := int(minutes)
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}
