package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"focustimer/internal/app"
	"focustimer/internal/core/model"
	"focustimer/internal/core/stats"
	"focustimer/internal/core/timer"
	"focustimer/internal/logging"
	"focustimer/internal/output"
)

var errQuit = errors.New("quit")

func newShellCmd(opts *options) *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Drive a live focus session from an interactive prompt",
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

			return runInteractiveShell(focus, env, prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "focus> ", "prompt string")
	return cmd
}

func runInteractiveShell(focus *app.App, env *environment, prompt string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(env.config.DataDir, "shell.history"),
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sh := newShell(focus, env.level, &output.UI{Out: rl.Stdout(), ErrOut: rl.Stderr()})
	stop := sh.watch(focus.Session.Subscribe(16))
	defer stop()

	fmt.Fprintln(rl.Stdout(), "Focus shell. Type 'help' for commands, 'exit' to leave.")
	sh.ui.Status(focus.Session.Snapshot())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sh.execute(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			sh.ui.Error("%v", err)
		}
	}
}

// shell interprets one line at a time against a running App.
type shell struct {
	focus *app.App
	level zap.AtomicLevel
	ui    *output.UI
	now   func() time.Time
}

func newShell(focus *app.App, level zap.AtomicLevel, ui *output.UI) *shell {
	return &shell{focus: focus, level: level, ui: ui, now: time.Now}
}

// watch reports completions as they happen until the channel closes or stop is called.
func (sh *shell) watch(events <-chan timer.Event) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				sh.report(event)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		wg.Wait()
	}
}

func (sh *shell) report(event timer.Event) {
	switch event.Type {
	case timer.EventFocusSessionCompleted:
		sh.ui.Success("Focus session complete (%d total)", event.TotalCompleted)
	case timer.EventCycleCompleted:
		sh.ui.Success("Cycle complete")
	case timer.EventModeChanged:
		sh.ui.Info("%s: %s", output.ModeColor(event.Mode), timer.FormatSeconds(event.Remaining))
	}
}

func (sh *shell) execute(line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	session := sh.focus.Session
	command, args := strings.ToLower(tokens[0]), tokens[1:]
	switch command {
	case "exit", "quit", "q":
		return errQuit
	case "help", "?":
		sh.help()
		return nil
	case "start":
		session.Start()
	case "pause":
		session.Pause()
	case "toggle", "t":
		session.Toggle()
	case "reset":
		session.Reset()
	case "skip":
		session.Skip()
		return nil
	case "mode":
		if len(args) != 1 {
			return errors.New("usage: mode focus|short|long")
		}
		mode, err := model.ParseMode(args[0])
		if err != nil {
			return err
		}
		return session.SwitchMode(mode)
	case "task":
		session.SetTask(strings.Join(args, " "))
	case "status", "s":
	case "get":
		return sh.get(args)
	case "set":
		return sh.set(args)
	case "stats":
		return sh.stats(args)
	case "history":
		return sh.history(args)
	case "log":
		return sh.log(args)
	default:
		return fmt.Errorf("unknown command %q (try 'help')", command)
	}
	sh.ui.Status(session.Snapshot())
	return nil
}

func (sh *shell) get(args []string) error {
	settings := sh.focus.Session.Snapshot().Settings
	if len(args) == 0 {
		sh.ui.Settings(settings)
		return nil
	}
	for _, key := range args {
		value, err := settings.Value(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.ui.Out, "%s = %s\n", key, value)
	}
	return nil
}

func (sh *shell) set(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set <key> <value>")
	}
	patch, err := model.ParsePatch(args[0], args[1])
	if err != nil {
		return err
	}
	if err := sh.focus.Session.UpdateSettings(patch); err != nil {
		return err
	}
	sh.ui.Success("%s = %s", args[0], args[1])
	return nil
}

func (sh *shell) stats(args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	reset := fs.String("reset", "", "zero a period (today, this_week, all_time)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *reset != "" {
		if err := sh.focus.ResetPeriod(stats.Period(*reset)); err != nil {
			return err
		}
		sh.ui.Success("%s statistics reset", output.PeriodTitle(stats.Period(*reset)))
	}
	sh.ui.Statistics(sh.focus.Statistics())
	return nil
}

func (sh *shell) history(args []string) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	limit := fs.IntP("limit", "n", 10, "number of sessions to show")
	since := fs.Duration("since", 0, "only sessions completed within this duration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var from time.Time
	if *since > 0 {
		from = sh.now().Add(-*since)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	records, err := sh.focus.History(ctx, from, *limit)
	if err != nil {
		return err
	}
	sh.ui.History(records)
	return nil
}

func (sh *shell) log(args []string) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		count int
		level string
		show  bool
	)
	fs.CountVarP(&count, "verbose", "v", "lower the level one step per flag")
	fs.StringVar(&level, "level", "", "set level (error|warn|info|debug)")
	fs.BoolVarP(&show, "show", "s", false, "show the current level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case show:
	case level != "":
		parsed, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		sh.level.SetLevel(parsed)
	case count > 0:
		parsed, _ := logging.EffectiveLevel(logging.Options{Verbosity: count})
		sh.level.SetLevel(parsed)
	}
	fmt.Fprintf(sh.ui.Out, "log level: %s\n", sh.level.Level())
	return nil
}

func (sh *shell) help() {
	fmt.Fprint(sh.ui.Out, `Commands:
  start | pause | toggle      control the countdown
  reset                       refill the current mode
  skip                        finish the current mode now
  mode focus|short|long       switch mode
  task <text>                 label the current work (empty clears)
  status                      show the timer
  get [key...]                show settings
  set <key> <value>           change a setting, e.g. set focus_duration_minutes 50
  stats [--reset period]      show statistics
  history [-n 10] [--since 24h]
  log [-v...] [--level l]     change log verbosity
  exit | quit
`)
}

func shellCompleter() *readline.PrefixCompleter {
	keys := make([]readline.PrefixCompleterInterface, 0, len(model.SettingKeys))
	for _, key := range model.SettingKeys {
		keys = append(keys, readline.PcItem(key))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("start"),
		readline.PcItem("pause"),
		readline.PcItem("toggle"),
		readline.PcItem("reset"),
		readline.PcItem("skip"),
		readline.PcItem("mode",
			readline.PcItem("focus"),
			readline.PcItem("short"),
			readline.PcItem("long"),
		),
		readline.PcItem("task"),
		readline.PcItem("status"),
		readline.PcItem("get", keys...),
		readline.PcItem("set", keys...),
		readline.PcItem("stats", readline.PcItem("--reset")),
		readline.PcItem("history"),
		readline.PcItem("log", readline.PcItem("--level"), readline.PcItem("--show")),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}
