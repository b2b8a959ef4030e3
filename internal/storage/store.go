package storage

import (
	"context"
	"time"

	"focustimer/internal/core/model"
	"focustimer/internal/core/stats"
	"focustimer/internal/core/timer"
)

// SessionRecord is one completed focus session.
type SessionRecord struct {
	ID          string
	Mode        model.Mode
	Minutes     int
	Task        string
	CompletedAt time.Time
}

// Store persists history, statistics and the timer counters between runs.
type Store interface {
	RecordSession(ctx context.Context, record *SessionRecord) error
	ListSessions(ctx context.Context, since time.Time, limit int) ([]*SessionRecord, error)

	SaveStatistics(ctx context.Context, statistics stats.Statistics, at time.Time) error
	LoadStatistics(ctx context.Context) (stats.Statistics, time.Time, error)

	SaveTimerState(ctx context.Context, state timer.State) error
	LoadTimerState(ctx context.Context) (*timer.State, error)

	Close() error
}
