package tickets

import (
	"context"

	"referral-giveaway-bot/internal/domain/season"
)

// MembershipOracle answers "is user X a member of channel Y". Implementations
// fail closed and never return errors.
type MembershipOracle interface {
	IsMember(ctx context.Context, userID int64, channel string) bool
}

// SeasonRegistry provides the active scoring window.
type SeasonRegistry interface {
	GetOrCreateActiveSeason(ctx context.Context) (*season.Season, error)
	ForceNewSeason(ctx context.Context) (*season.Season, error)
}

// SwitchCache mirrors persisted boolean settings.
type SwitchCache interface {
	GetBool(ctx context.Context, name string) (value bool, hit bool, err error)
	SetBool(ctx context.Context, name string, value bool) error
	Invalidate(ctx context.Context, name string) error
}
