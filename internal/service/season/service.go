package season

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	domain "referral-giveaway-bot/internal/domain/season"
	"referral-giveaway-bot/internal/domain/user"
)

// Cache is an optional shared copy of the active season.
type Cache interface {
	Get(ctx context.Context) (*domain.Season, error)
	Set(ctx context.Context, s *domain.Season, now time.Time) error
	Invalidate(ctx context.Context) error
}

// Registry is the single source of truth for the current scoring window.
// Expiry is evaluated lazily on access; nothing runs on a timer.
type Registry struct {
	repo     domain.Repository
	cache    Cache
	duration time.Duration
	now      func() time.Time
}

func NewRegistry(repo domain.Repository, duration time.Duration) *Registry {
	return &Registry{repo: repo, duration: duration, now: time.Now}
}

// WithCache enables the shared season cache.
func (r *Registry) WithCache(c Cache) *Registry {
	r.cache = c
	return r
}

// WithClock replaces the time source.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Duration is the length of newly created seasons.
func (r *Registry) Duration() time.Duration { return r.duration }

// GetOrCreateActiveSeason returns the season whose end is in the future,
// creating one that starts now when none exists.
func (r *Registry) GetOrCreateActiveSeason(ctx context.Context) (*domain.Season, error) {
	now := r.now().UTC()
	if r.cache != nil {
		s, err := r.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("season cache read failed")
		} else if s != nil && s.ActiveAt(now) {
			return s, nil
		}
	}

	s, err := r.repo.GetOrCreateActive(ctx, now, r.duration)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("season repository returned no season")
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, s, now); err != nil {
			log.Warn().Err(err).Int64("season_id", s.ID).Msg("season cache write failed")
		}
	}
	return s, nil
}

// ForceNewSeason closes the current season and starts the next one now,
// resetting season-scoped counters for every user.
func (r *Registry) ForceNewSeason(ctx context.Context) (*domain.Season, error) {
	now := r.now().UTC()
	s, err := r.repo.StartNew(ctx, now, r.duration)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("season cache invalidate failed")
		}
	}
	log.Info().Int64("season_id", s.ID).Time("ends_at", s.EndsAt).Msg("season started")
	return s, nil
}

// RolloverIfNeeded moves u forward into the active season. Season-scoped
// counters and the wheel cooldown are zeroed; lifetime referrals and
// activation survive. It must run while the user's row is locked. Applying it
// twice is a no-op.
//
// Season ids only grow, so a caller that resolved the season before another
// request moved the row ahead never rolls it back: the row stays in the newer
// season and the caller's change lands there.
func RolloverIfNeeded(u *user.User, activeSeasonID int64) bool {
	if activeSeasonID <= u.SeasonID {
		return false
	}
	u.SeasonID = activeSeasonID
	u.SeasonReferralTickets = 0
	u.SeasonBonusTickets = 0
	u.LastSpinAt = nil
	u.RecomputeTotal()
	return true
}
