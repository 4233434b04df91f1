package tickets

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	apperrors "referral-giveaway-bot/internal/common/errors"
	"referral-giveaway-bot/internal/domain/user"
	"referral-giveaway-bot/internal/utils/random"
)

const RewardEmpty = "empty"

// wheelSlot is one sector of the wheel with its roll weight.
type wheelSlot struct {
	Code    string
	Tickets int
	Weight  int
}

// wheel is the fixed server-side reward table. Client input is only ever
// looked up here, never trusted as an amount.
var wheel = []wheelSlot{
	{Code: RewardEmpty, Tickets: 0, Weight: 40},
	{Code: "tickets_1", Tickets: 1, Weight: 25},
	{Code: "tickets_2", Tickets: 2, Weight: 15},
	{Code: "tickets_3", Tickets: 3, Weight: 10},
	{Code: "tickets_4", Tickets: 4, Weight: 6},
	{Code: "tickets_5", Tickets: 5, Weight: 4},
}

// rollRandomInt is replaced in tests.
var rollRandomInt = random.Int

var errCooldown = errors.New("wheel cooldown")

// RewardAmount maps a reward code to its ticket amount.
func RewardAmount(code string) (int, bool) {
	for _, slot := range wheel {
		if slot.Code == code {
			return slot.Tickets, true
		}
	}
	return 0, false
}

// RewardCodes lists valid reward codes in table order.
func RewardCodes() []string {
	out := make([]string, 0, len(wheel))
	for _, slot := range wheel {
		out = append(out, slot.Code)
	}
	return out
}

// GrantWheelSpin applies a completed spin. The cooldown check and the balance
// update happen under the same row lock, so concurrent spins serialize and
// only one of them can be granted.
func (s *Service) GrantWheelSpin(ctx context.Context, userID int64, rewardCode string) (*SpinOutcome, error) {
	amount, ok := RewardAmount(rewardCode)
	if !ok {
		log.Warn().Int64("user_id", userID).Str("reward_code", rewardCode).Msg("rejected unknown reward code")
		return nil, apperrors.New(apperrors.ErrCodeInvalidReward, "Unknown reward code").
			WithDetail("reward_code", rewardCode).
			WithUserID(userID)
	}
	if err := s.ensureActive(ctx); err != nil {
		return nil, err
	}
	active, err := s.activeSeason(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := &SpinOutcome{}
	_, err = s.mutate(ctx, userID, active, func(u *user.User) error {
		if next := s.rules.nextSpinAt(u); !next.IsZero() && now.Before(next) {
			out.Status = SpinCooldown
			out.Remaining = next.Sub(now)
			out.NextSpinAt = next
			out.BonusTickets = u.SeasonBonusTickets
			out.TotalTickets = u.TotalTickets
			return errCooldown
		}
		u.SeasonBonusTickets += amount
		spunAt := now
		u.LastSpinAt = &spunAt
		u.RecomputeTotal()

		out.Status = SpinGranted
		out.RewardCode = rewardCode
		out.Awarded = amount
		out.NextSpinAt = now.Add(s.rules.WheelCooldown)
		out.BonusTickets = u.SeasonBonusTickets
		out.TotalTickets = u.TotalTickets
		return nil
	})
	if errors.Is(err, errCooldown) {
		return out, nil
	}
	if err != nil {
		return nil, notFoundOr(err, userID, "grant wheel spin")
	}

	log.Info().
		Int64("user_id", userID).
		Str("reward_code", rewardCode).
		Int("awarded", amount).
		Int("bonus_tickets", out.BonusTickets).
		Msg("wheel spin granted")
	return out, nil
}

// RollWheel lets the server pick the sector and then grants it.
func (s *Service) RollWheel(ctx context.Context, userID int64) (*SpinOutcome, error) {
	code, err := rollReward()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to roll the wheel")
	}
	return s.GrantWheelSpin(ctx, userID, code)
}

func rollReward() (string, error) {
	total := 0
	for _, slot := range wheel {
		total += slot.Weight
	}
	r, err := rollRandomInt(total)
	if err != nil {
		return "", err
	}
	for _, slot := range wheel {
		if r < slot.Weight {
			return slot.Code, nil
		}
		r -= slot.Weight
	}
	return RewardEmpty, nil
}
