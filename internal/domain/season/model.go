package season

import (
	"context"
	"time"
)

// Season is a fixed-duration scoring window. At most one season is active,
// i.e. has EndsAt in the future.
type Season struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// ActiveAt reports whether t falls inside the season window.
func (s *Season) ActiveAt(t time.Time) bool {
	return !t.Before(s.StartedAt) && t.Before(s.EndsAt)
}

// Remaining returns the time left until the season ends, never negative.
func (s *Season) Remaining(now time.Time) time.Duration {
	if d := s.EndsAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Repository defines persistence operations for seasons.
type Repository interface {
	// GetOrCreateActive returns the season active at now, creating
	// [now, now+duration) atomically when none is.
	GetOrCreateActive(ctx context.Context, now time.Time, duration time.Duration) (*Season, error)
	// StartNew closes any active season at now, opens a fresh one and zeroes
	// season-scoped counters of every user in one transaction.
	StartNew(ctx context.Context, now time.Time, duration time.Duration) (*Season, error)
}
