package tickets

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "referral-giveaway-bot/internal/common/errors"
	domainseason "referral-giveaway-bot/internal/domain/season"
	"referral-giveaway-bot/internal/domain/settings"
	"referral-giveaway-bot/internal/domain/user"
)

// AdminStats is the snapshot shown to administrators.
type AdminStats struct {
	user.Stats
	Active       bool      `json:"active"`
	SeasonID     int64     `json:"season_id"`
	SeasonEndsAt time.Time `json:"season_ends_at"`
}

// IsActive reads the persisted global switch. It defaults to active when it
// was never set.
func (s *Service) IsActive(ctx context.Context) (bool, error) {
	if s.switches != nil {
		v, hit, err := s.switches.GetBool(ctx, settings.KeyGiveawayActive)
		if err != nil {
			log.Warn().Err(err).Msg("settings cache read failed")
		} else if hit {
			return v, nil
		}
	}
	if s.settings == nil {
		return true, nil
	}
	v, err := s.settings.GetBool(ctx, settings.KeyGiveawayActive, true)
	if err != nil {
		return false, apperrors.NewDatabaseError("read giveaway switch", err)
	}
	if s.switches != nil {
		if err := s.switches.SetBool(ctx, settings.KeyGiveawayActive, v); err != nil {
			log.Warn().Err(err).Msg("settings cache write failed")
		}
	}
	return v, nil
}

// SetActive persists the global switch. While off, entry and spin
// operations are rejected with PAUSED; read-only views keep working.
func (s *Service) SetActive(ctx context.Context, active bool) error {
	if s.settings == nil {
		return apperrors.New(apperrors.ErrCodeInternal, "Settings storage is not configured")
	}
	if err := s.settings.SetBool(ctx, settings.KeyGiveawayActive, active); err != nil {
		return apperrors.NewDatabaseError("write giveaway switch", err)
	}
	if s.switches != nil {
		if err := s.switches.Invalidate(ctx, settings.KeyGiveawayActive); err != nil {
			log.Warn().Err(err).Msg("settings cache invalidate failed")
		}
	}
	log.Info().Bool("active", active).Msg("giveaway switch changed")
	return nil
}

// ResetSeason ends the current season now and zeroes season-scoped counters
// of every user.
func (s *Service) ResetSeason(ctx context.Context) (*domainseason.Season, error) {
	next, err := s.seasons.ForceNewSeason(ctx)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseError("reset season", err)
	}
	return next, nil
}

func (s *Service) Stats(ctx context.Context) (*AdminStats, error) {
	active, err := s.activeSeason(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.users.Stats(ctx, active.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("stats", err)
	}
	on, err := s.IsActive(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminStats{Stats: *st, Active: on, SeasonID: active.ID, SeasonEndsAt: active.EndsAt}, nil
}

// UserReport is the admin view of one user: the stored summary plus the
// number of referral edges recorded with the user as referrer.
type UserReport struct {
	Summary
	RecordedReferrals int `json:"recorded_referrals"`
}

// InspectUser reads a user's stored state without re-checking subscriptions.
// RecordedReferrals counts ledger edges and can only exceed LifetimeReferrals
// if a counter write was lost.
func (s *Service) InspectUser(ctx context.Context, userID int64) (*UserReport, error) {
	sum, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	n, err := s.ledger.CountByReferrer(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count referrals", err).WithUserID(userID)
	}
	if n != sum.LifetimeReferrals {
		log.Warn().Int64("user_id", userID).Int("recorded", n).Int("lifetime", sum.LifetimeReferrals).
			Msg("referral ledger and counter disagree")
	}
	return &UserReport{Summary: *sum, RecordedReferrals: n}, nil
}

func (s *Service) ensureActive(ctx context.Context) error {
	on, err := s.IsActive(ctx)
	if err != nil {
		return err
	}
	if !on {
		return apperrors.NewPausedError()
	}
	return nil
}
