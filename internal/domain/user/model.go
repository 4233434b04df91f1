package user

import "time"

// User is a giveaway participant mirrored from Telegram identity.
// ID is a Telegram user ID. Season-scoped counters belong to SeasonID and are
// reset on rollover; LifetimeReferrals and Activated survive it.
type User struct {
	ID                    int64      `json:"id"`
	DisplayName           string     `json:"display_name"`
	LifetimeReferrals     int        `json:"lifetime_referrals"`
	Activated             bool       `json:"activated"`
	SeasonID              int64      `json:"season_id"`
	SeasonReferralTickets int        `json:"season_referral_tickets"`
	SeasonBonusTickets    int        `json:"season_bonus_tickets"`
	TotalTickets          int        `json:"total_tickets"`
	AllSubscribed         bool       `json:"all_subscribed"`
	LastSpinAt            *time.Time `json:"last_spin_at,omitempty"`
	LastSeenAt            time.Time  `json:"last_seen_at"`
	CreatedAt             time.Time  `json:"created_at"`
}

// EarnedTickets is the accrued balance regardless of subscription state.
func (u *User) EarnedTickets() int {
	return u.SeasonReferralTickets + u.SeasonBonusTickets
}

// RecomputeTotal applies the freeze rule: earned tickets are visible only
// while the user is subscribed to every sponsor channel.
func (u *User) RecomputeTotal() int {
	if u.AllSubscribed {
		u.TotalTickets = u.EarnedTickets()
	} else {
		u.TotalTickets = 0
	}
	return u.TotalTickets
}

// ChannelFact is the last known subscription state of a user in one sponsor channel.
type ChannelFact struct {
	Channel    string    `json:"channel"`
	Subscribed bool      `json:"subscribed"`
	CheckedAt  time.Time `json:"checked_at"`
}
