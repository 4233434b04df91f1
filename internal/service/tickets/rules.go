package tickets

import (
	"time"

	"referral-giveaway-bot/internal/domain/user"
)

// Rules are the tunable constants of the ticket state machine.
type Rules struct {
	ActivationThreshold int
	ReferralTicketCap   int
	WheelCooldown       time.Duration
}

func DefaultRules() Rules {
	return Rules{
		ActivationThreshold: 2,
		ReferralTicketCap:   10,
		WheelCooldown:       6 * time.Hour,
	}
}

// applyReferral credits one newly recorded referral to its referrer.
// Activation is decided first, so the activating referral already earns a
// ticket. Activation never reverts and the season balance never exceeds the cap.
func (r Rules) applyReferral(u *user.User) (activated, granted bool) {
	u.LifetimeReferrals++
	if !u.Activated && u.LifetimeReferrals >= r.ActivationThreshold {
		u.Activated = true
		activated = true
	}
	if u.Activated && u.SeasonReferralTickets < r.ReferralTicketCap {
		u.SeasonReferralTickets++
		granted = true
	}
	u.RecomputeTotal()
	return activated, granted
}

// nextSpinAt returns when u may spin again; zero time means now.
func (r Rules) nextSpinAt(u *user.User) time.Time {
	if u.LastSpinAt == nil {
		return time.Time{}
	}
	return u.LastSpinAt.Add(r.WheelCooldown)
}
