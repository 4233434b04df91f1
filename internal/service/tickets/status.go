package tickets

import (
	"context"

	apperrors "referral-giveaway-bot/internal/common/errors"
	"referral-giveaway-bot/internal/domain/user"
)

// Status re-checks sponsor subscriptions, persists the canonical count and
// returns the view every front-end renders.
func (s *Service) Status(ctx context.Context, userID int64) (*Summary, error) {
	u, statuses, err := s.evaluate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, u, statuses)
}

// Snapshot returns the same view from stored facts only, without calling the
// oracle or writing anything.
func (s *Service) Snapshot(ctx context.Context, userID int64) (*Summary, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user", err).WithUserID(userID)
	}
	if u == nil {
		return nil, apperrors.NewUserNotFoundError(userID)
	}
	statuses, err := s.storedStatuses(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, u, statuses)
}

func (s *Service) summarize(ctx context.Context, u *user.User, statuses []ChannelStatus) (*Summary, error) {
	active, err := s.activeSeason(ctx)
	if err != nil {
		return nil, err
	}
	on, err := s.IsActive(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	sum := &Summary{
		UserID:              u.ID,
		DisplayName:         u.DisplayName,
		Tickets:             u.TotalTickets,
		ReferralTickets:     u.SeasonReferralTickets,
		BonusTickets:        u.SeasonBonusTickets,
		ReferralTicketCap:   s.rules.ReferralTicketCap,
		LifetimeReferrals:   u.LifetimeReferrals,
		ActivationThreshold: s.rules.ActivationThreshold,
		Activated:           u.Activated,
		AllSubscribed:       u.AllSubscribed,
		Channels:            statuses,
		SeasonID:            active.ID,
		SeasonEndsAt:        active.EndsAt,
		SeasonRemaining:     active.Remaining(now),
		SpinAvailable:       true,
		GiveawayActive:      on,
		Prize:               s.prize,
		ReferralLink:        s.ReferralLink(u.ID),
	}
	// A stale row from a finished season shows what the next touch will leave.
	if u.SeasonID < active.ID {
		sum.Tickets, sum.ReferralTickets, sum.BonusTickets = 0, 0, 0
	} else if next := s.rules.nextSpinAt(u); !next.IsZero() && now.Before(next) {
		sum.SpinAvailable = false
		sum.NextSpinAt = &next
	}
	return sum, nil
}
