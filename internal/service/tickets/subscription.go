package tickets

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "referral-giveaway-bot/internal/common/errors"
	"referral-giveaway-bot/internal/domain/user"
	"referral-giveaway-bot/internal/service/season"
)

// EvaluateSubscription asks the oracle about every sponsor channel, then
// stores the answers and the aggregate flag. Oracle calls run before the
// user's row is locked. A failed check counts as not subscribed.
func (s *Service) EvaluateSubscription(ctx context.Context, userID int64) (bool, []ChannelStatus, error) {
	u, statuses, err := s.evaluate(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	return u.AllSubscribed, statuses, nil
}

// ComputeTickets recomputes the canonical count from the stored balances and
// the last known subscription flag and persists it as the user's total.
func (s *Service) ComputeTickets(ctx context.Context, userID int64) (int, error) {
	active, err := s.activeSeason(ctx)
	if err != nil {
		return 0, err
	}
	u, err := s.mutate(ctx, userID, active, func(u *user.User) error {
		u.RecomputeTotal()
		return nil
	})
	if err != nil {
		return 0, notFoundOr(err, userID, "compute tickets")
	}
	return u.TotalTickets, nil
}

func (s *Service) evaluate(ctx context.Context, userID int64) (*user.User, []ChannelStatus, error) {
	statuses := s.checkChannels(ctx, userID)

	now := s.now().UTC()
	all := true
	facts := make([]user.ChannelFact, 0, len(statuses))
	for _, st := range statuses {
		all = all && st.Subscribed
		facts = append(facts, user.ChannelFact{Channel: st.Channel, Subscribed: st.Subscribed, CheckedAt: now})
	}

	active, err := s.activeSeason(ctx)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.users.SaveSubscriptions(ctx, userID, facts, func(u *user.User) error {
		season.RolloverIfNeeded(u, active.ID)
		u.AllSubscribed = all
		u.RecomputeTotal()
		return nil
	})
	if err != nil {
		return nil, nil, notFoundOr(err, userID, "save subscriptions")
	}

	log.Debug().
		Int64("user_id", userID).
		Bool("all_subscribed", all).
		Int("total_tickets", u.TotalTickets).
		Msg("subscription evaluated")
	return u, statuses, nil
}

// checkChannels queries the oracle for all channels concurrently. Results keep
// the configured channel order.
func (s *Service) checkChannels(ctx context.Context, userID int64) []ChannelStatus {
	statuses := make([]ChannelStatus, len(s.channels))
	var wg sync.WaitGroup
	for i, ch := range s.channels {
		statuses[i].Channel = ch
		if s.oracle == nil {
			continue
		}
		wg.Add(1)
		go func(i int, ch string) {
			defer wg.Done()
			statuses[i].Subscribed = s.oracle.IsMember(ctx, userID, ch)
		}(i, ch)
	}
	wg.Wait()
	return statuses
}

// storedStatuses rebuilds the per-channel view from persisted facts without
// calling the oracle. Channels never checked are reported as not subscribed.
func (s *Service) storedStatuses(ctx context.Context, userID int64) ([]ChannelStatus, error) {
	facts, err := s.users.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list subscriptions", err).WithUserID(userID)
	}
	known := make(map[string]bool, len(facts))
	for _, f := range facts {
		known[f.Channel] = f.Subscribed
	}
	out := make([]ChannelStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ChannelStatus{Channel: ch, Subscribed: known[ch]})
	}
	return out, nil
}
