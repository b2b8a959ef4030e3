package stats

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"focustimer/internal/core/timer"
)

// ErrUnreachableState indicates an event the accumulator does not recognize.
var ErrUnreachableState = errors.New("unreachable state")

// ErrUnknownPeriod is returned by ResetPeriod for an unknown bucket.
var ErrUnknownPeriod = errors.New("unknown period")

// Period names a statistics bucket.
type Period string

const (
	PeriodToday    Period = "today"
	PeriodThisWeek Period = "this_week"
	PeriodAllTime  Period = "all_time"
)

// Periods lists every bucket in display order.
var Periods = []Period{PeriodToday, PeriodThisWeek, PeriodAllTime}

// Bucket holds the counters for one period.
type Bucket struct {
	FocusMinutes           float64 `json:"focus_minutes"`
	CompletedFocusSessions int     `json:"completed_focus_sessions"`
	CompletedCycles        int     `json:"completed_cycles"`
}

// AverageMinutes is the focus time per completed session, zero before the first one.
func (bucket Bucket) AverageMinutes() float64 {
	if bucket.CompletedFocusSessions == 0 {
		return 0
	}
	return bucket.FocusMinutes / float64(bucket.CompletedFocusSessions)
}

// Streak counts consecutive calendar days with at least one focus session.
type Streak struct {
	Days    int    `json:"days"`
	LastDay string `json:"last_day,omitempty"`
}

// Statistics is a snapshot of every bucket.
type Statistics struct {
	Today    Bucket `json:"today"`
	ThisWeek Bucket `json:"this_week"`
	AllTime  Bucket `json:"all_time"`
	Streak   Streak `json:"streak"`
}

// Bucket returns the counters for period.
func (statistics Statistics) Bucket(period Period) (Bucket, error) {
	switch period {
	case PeriodToday:
		return statistics.Today, nil
	case PeriodThisWeek:
		return statistics.ThisWeek, nil
	case PeriodAllTime:
		return statistics.AllTime, nil
	default:
		return Bucket{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}
}

// DailyAverageMinutes spreads this week's focus time over seven days.
func (statistics Statistics) DailyAverageMinutes() float64 {
	return statistics.ThisWeek.FocusMinutes / 7
}

// Options configures an Accumulator.
type Options struct {
	Logger *zap.Logger
	// Debug turns an unrecognized event into a panic.
	Debug bool
}

// Accumulator tallies engine completion events into period buckets.
type Accumulator struct {
	mu         sync.RWMutex
	statistics Statistics
	logger     *zap.Logger
	debug      bool
	onChange   []func(Statistics)
}

// New creates an Accumulator seeded with a previously persisted snapshot.
func New(snapshot Statistics, options Options) *Accumulator {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Accumulator{
		statistics: snapshot,
		logger:     options.Logger,
		debug:      options.Debug,
	}
}

// OnChange registers a callback invoked with a snapshot after every mutation.
// Register callbacks before the accumulator starts observing events.
func (accumulator *Accumulator) OnChange(callback func(Statistics)) {
	accumulator.mu.Lock()
	accumulator.onChange = append(accumulator.onChange, callback)
	accumulator.mu.Unlock()
}

// Snapshot returns a copy of the counters.
func (accumulator *Accumulator) Snapshot() Statistics {
	accumulator.mu.RLock()
	defer accumulator.mu.RUnlock()
	return accumulator.statistics
}

// Observe consumes an engine event. It satisfies timer.Observer.
func (accumulator *Accumulator) Observe(event timer.Event) {
	switch event.Type {
	case timer.EventFocusSessionCompleted:
		accumulator.mutate(func(statistics *Statistics) {
			minutes := float64(event.FocusMinutes)
			for _, bucket := range statistics.buckets() {
				bucket.FocusMinutes += minutes
				bucket.CompletedFocusSessions++
			}
			statistics.Streak = statistics.Streak.extend(event.At)
		})
	case timer.EventCycleCompleted:
		accumulator.mutate(func(statistics *Statistics) {
			for _, bucket := range statistics.buckets() {
				bucket.CompletedCycles++
			}
		})
	case timer.EventModeChanged, timer.EventTick, timer.EventStarted,
		timer.EventPaused, timer.EventReset, timer.EventSettingsChanged:
	default:
		err := fmt.Errorf("%w: event type %q", ErrUnreachableState, event.Type)
		if accumulator.debug {
			panic(err)
		}
		accumulator.logger.Error("statistics ignored event", zap.Error(err))
	}
}

// ResetPeriod zeroes the counters of one bucket.
func (accumulator *Accumulator) ResetPeriod(period Period) error {
	if _, err := accumulator.Snapshot().Bucket(period); err != nil {
		return err
	}
	accumulator.mutate(func(statistics *Statistics) {
		switch period {
		case PeriodToday:
			statistics.Today = Bucket{}
		case PeriodThisWeek:
			statistics.ThisWeek = Bucket{}
		case PeriodAllTime:
			statistics.AllTime = Bucket{}
		}
	})
	accumulator.logger.Debug("statistics period reset", zap.String("period", string(period)))
	return nil
}

func (accumulator *Accumulator) mutate(apply func(*Statistics)) {
	accumulator.mu.Lock()
	apply(&accumulator.statistics)
	snapshot := accumulator.statistics
	callbacks := append(([]func(Statistics))(nil), accumulator.onChange...)
	accumulator.mu.Unlock()

	for _, callback := range callbacks {
		callback(snapshot)
	}
}

func (statistics *Statistics) buckets() []*Bucket {
	return []*Bucket{&statistics.Today, &statistics.ThisWeek, &statistics.AllTime}
}

const dayLayout = "2006-01-02"

func (streak Streak) extend(at time.Time) Streak {
	if at.IsZero() {
		return streak
	}
	today := at.Format(dayLayout)
	switch streak.LastDay {
	case today:
		if streak.Days == 0 {
			streak.Days = 1
		}
	case at.AddDate(0, 0, -1).Format(dayLayout):
		streak.Days++
	default:
		streak.Days = 1
	}
	streak.LastDay = today
	return streak
}
