// Package notify plays the completion cue. Every failure stays inside this
// package: the timer only ever sees a fire-and-forget Notify call.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotificationFailure wraps any error raised while playing a cue.
var ErrNotificationFailure = errors.New("notification failure")

// ErrNoPlayer indicates no audio player could be found on this system.
var ErrNoPlayer = errors.New("no audio player available")

// Notifier plays a single cue.
type Notifier interface {
	Notify(ctx context.Context) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context) error

// Notify calls fn.
func (fn Func) Notify(ctx context.Context) error {
	return fn(ctx)
}

// Async runs a Notifier in the background so the caller never blocks.
type Async struct {
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
}

// NewAsync wraps notifier. Each cue is abandoned after timeout.
func NewAsync(notifier Notifier, timeout time.Duration, logger *zap.Logger) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Async{notifier: notifier, timeout: timeout, logger: logger}
}

// Notify starts the cue and returns immediately. Calls after Close are dropped.
func (async *Async) Notify() {
	async.mu.Lock()
	if async.closed || async.notifier == nil {
		async.mu.Unlock()
		return
	}
	async.wg.Add(1)
	async.mu.Unlock()

	go func() {
		defer async.wg.Done()
		if err := async.run(); err != nil {
			async.logger.Warn("completion cue failed", zap.Error(err))
		}
	}()
}

// Close stops accepting cues and waits for the ones in flight.
func (async *Async) Close() {
	async.mu.Lock()
	async.closed = true
	async.mu.Unlock()
	async.wg.Wait()
}

func (async *Async) run() (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: panic: %v", ErrNotificationFailure, recovered)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), async.timeout)
	defer cancel()
	if notifyErr := async.notifier.Notify(ctx); notifyErr != nil {
		return fmt.Errorf("%w: %w", ErrNotificationFailure, notifyErr)
	}
	return nil
}

// Bell writes the terminal BEL character.
type Bell struct {
	Writer io.Writer
}

// Notify rings the bell.
func (bell Bell) Notify(context.Context) error {
	if bell.Writer == nil {
		return nil
	}
	_, err := bell.Writer.Write([]byte{'\a'})
	return err
}

// Command plays a sound file through an external player.
type Command struct {
	Path string
	Args []string
}

var knownPlayers = []struct {
	name string
	args []string
}{
	{name: "paplay"},
	{name: "pw-play"},
	{name: "aplay", args: []string{"-q"}},
	{name: "afplay"},
	{name: "ffplay", args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
}

// FindPlayer looks up a player on PATH. An explicit command wins over the known list.
func FindPlayer(command, soundFile string) (Command, error) {
	if soundFile == "" {
		return Command{}, fmt.Errorf("%w: no sound file configured", ErrNoPlayer)
	}
	if command != "" {
		path, err := exec.LookPath(command)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %s: %w", ErrNoPlayer, command, err)
		}
		return Command{Path: path, Args: []string{soundFile}}, nil
	}
	for _, player := range knownPlayers {
		path, err := exec.LookPath(player.name)
		if err != nil {
			continue
		}
		args := append(append([]string(nil), player.args...), soundFile)
		return Command{Path: path, Args: args}, nil
	}
	return Command{}, ErrNoPlayer
}

// Notify runs the player and waits for it to exit.
func (command Command) Notify(ctx context.Context) error {
	if command.Path == "" {
		return ErrNoPlayer
	}
	output, err := exec.CommandContext(ctx, command.Path, command.Args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", command.Path, err, output)
	}
	return nil
}

// Multi plays every notifier and joins their errors.
type Multi []Notifier

// Notify runs each notifier in order.
func (multi Multi) Notify(ctx context.Context) error {
	var errs []error
	for _, notifier := range multi {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
