package tickets

import "time"

// ChannelStatus is the subscription state of one sponsor channel.
type ChannelStatus struct {
	Channel    string `json:"channel"`
	Subscribed bool   `json:"subscribed"`
}

// Attribution describes what a referral did to the referrer's record.
type Attribution struct {
	ReferrerID            int64 `json:"referrer_id"`
	ReferredID            int64 `json:"referred_id"`
	Inserted              bool  `json:"inserted"`
	JustActivated         bool  `json:"just_activated"`
	TicketGranted         bool  `json:"ticket_granted"`
	LifetimeReferrals     int   `json:"lifetime_referrals"`
	SeasonReferralTickets int   `json:"season_referral_tickets"`
}

type SpinStatus string

const (
	SpinGranted  SpinStatus = "granted"
	SpinCooldown SpinStatus = "cooldown"
)

// SpinOutcome is the result of a wheel spin attempt. Cooldown is a normal
// outcome, not an error.
type SpinOutcome struct {
	Status       SpinStatus    `json:"status"`
	RewardCode   string        `json:"reward_code,omitempty"`
	Awarded      int           `json:"awarded"`
	Remaining    time.Duration `json:"remaining"`
	NextSpinAt   time.Time     `json:"next_spin_at"`
	BonusTickets int           `json:"bonus_tickets"`
	TotalTickets int           `json:"total_tickets"`
}

// Summary is the rendering-agnostic view every front-end shows.
type Summary struct {
	UserID              int64           `json:"user_id"`
	DisplayName         string          `json:"display_name"`
	Tickets             int             `json:"tickets"`
	ReferralTickets     int             `json:"referral_tickets"`
	BonusTickets        int             `json:"bonus_tickets"`
	ReferralTicketCap   int             `json:"referral_ticket_cap"`
	LifetimeReferrals   int             `json:"lifetime_referrals"`
	ActivationThreshold int             `json:"activation_threshold"`
	Activated           bool            `json:"activated"`
	AllSubscribed       bool            `json:"all_subscribed"`
	Channels            []ChannelStatus `json:"channels"`
	SeasonID            int64           `json:"season_id"`
	SeasonEndsAt        time.Time       `json:"season_ends_at"`
	SeasonRemaining     time.Duration   `json:"season_remaining"`
	SpinAvailable       bool            `json:"spin_available"`
	NextSpinAt          *time.Time      `json:"next_spin_at,omitempty"`
	GiveawayActive      bool            `json:"giveaway_active"`
	Prize               string          `json:"prize"`
	ReferralLink        string          `json:"referral_link"`
}
