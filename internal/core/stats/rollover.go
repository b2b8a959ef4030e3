package stats

import (
	"fmt"
	"sync"
	"time"
)

// Rollover resets the today and this-week buckets when the calendar moves on.
// It is driven by the host; the accumulator never looks at the clock itself.
type Rollover struct {
	mu          sync.Mutex
	accumulator *Accumulator
	day         string
	week        string
}

// NewRollover tracks boundaries starting from since, usually the time the
// statistics snapshot was last saved.
func NewRollover(accumulator *Accumulator, since time.Time) *Rollover {
	return &Rollover{
		accumulator: accumulator,
		day:         since.Format(dayLayout),
		week:        weekKey(since),
	}
}

// Check resets any bucket whose period ended before now and reports what was reset.
func (rollover *Rollover) Check(now time.Time) []Period {
	rollover.mu.Lock()
	defer rollover.mu.Unlock()

	var reset []Period
	if day := now.Format(dayLayout); day != rollover.day {
		rollover.day = day
		_ = rollover.accumulator.ResetPeriod(PeriodToday)
		reset = append(reset, PeriodToday)
	}
	if week := weekKey(now); week != rollover.week {
		rollover.week = week
		_ = rollover.accumulator.ResetPeriod(PeriodThisWeek)
		reset = append(reset, PeriodThisWeek)
	}
	return reset
}

func weekKey(at time.Time) string {
	year, week := at.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
