package session

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled callback and returns once its driver has exited.
// It is safe to call more than once. It must not be called from inside the
// callback; the callback stops its own driver by returning false.
type CancelFunc func()

// Scheduler is the periodic driver of a Session. Callback runs once per interval
// until it returns false or the returned CancelFunc is called.
type Scheduler interface {
	Schedule(callback func() bool, interval time.Duration) CancelFunc
}

// TickerScheduler drives callbacks from a time.Ticker on its own goroutine.
type TickerScheduler struct{}

// Schedule starts a ticker loop that runs callback once per interval.
func (TickerScheduler) Schedule(callback func() bool, interval time.Duration) CancelFunc {
	if interval <= 0 {
		interval = time.Second
	}
	stopCh := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				select {
				case <-stopCh:
					return
				default:
				}
				if !callback() {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopCh) })
		<-done
	}
}
