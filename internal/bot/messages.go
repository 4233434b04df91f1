package bot

import (
	"fmt"
	"strings"
	"time"

	"referral-giveaway-bot/internal/service/tickets"
)

const pausedText = "⏸ The giveaway is paused right now. Please come back later."

func statusText(s *tickets.Summary) string {
	var b strings.Builder
	if !s.GiveawayActive {
		b.WriteString(pausedText + "\n\n")
	}

	var subscribed, missing []string
	for _, ch := range s.Channels {
		if ch.Subscribed {
			subscribed = append(subscribed, "✅ "+ch.Channel)
		} else {
			missing = append(missing, "❌ "+ch.Channel)
		}
	}

	if !s.AllSubscribed {
		b.WriteString("⚠️ You are not subscribed to every sponsor channel!\n\n")
		b.WriteString("Subscribe to take part:\n")
		b.WriteString(strings.Join(missing, "\n"))
		if len(subscribed) > 0 {
			b.WriteString("\n\n✅ Subscribed:\n")
			b.WriteString(strings.Join(subscribed, "\n"))
		}
		if earned := s.ReferralTickets + s.BonusTickets; earned > 0 {
			b.WriteString(fmt.Sprintf("\n\n🧊 %d tickets are frozen until you subscribe again.", earned))
		}
		return b.String()
	}

	name := s.DisplayName
	if name == "" {
		name = "friend"
	}
	b.WriteString(fmt.Sprintf("🎉 Hi, %s!\n\n", name))
	if s.Prize != "" {
		b.WriteString("🎁 Prize of this season:\n" + s.Prize + "\n\n")
	}
	b.WriteString("✅ You are subscribed to every channel!\n")
	b.WriteString(strings.Join(subscribed, "\n"))
	b.WriteString("\n\n")
	b.WriteString(ticketLines(s))
	b.WriteString(fmt.Sprintf("\n⏳ Season ends in %s", humanDuration(s.SeasonRemaining)))
	return b.String()
}

func ticketsText(s *tickets.Summary) string {
	var b strings.Builder
	b.WriteString(ticketLines(s))
	b.WriteString("\n")
	switch {
	case !s.AllSubscribed:
		b.WriteString("\n🧊 Subscribe to every sponsor channel to unfreeze your tickets.")
	case s.Tickets > 0:
		b.WriteString("\n✅ You are in the drawing!")
	case !s.Activated:
		b.WriteString(fmt.Sprintf("\n⏳ You need %d referrals to take part.", s.ActivationThreshold))
	}
	if s.SpinAvailable {
		b.WriteString("\n🎡 A wheel spin is available.")
	} else if s.NextSpinAt != nil {
		b.WriteString(fmt.Sprintf("\n🎡 Next wheel spin at %s UTC.", s.NextSpinAt.UTC().Format("15:04")))
	}
	return b.String()
}

func ticketLines(s *tickets.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎫 Your tickets: %d\n", s.Tickets))
	b.WriteString(fmt.Sprintf("👥 Referral tickets: %d / %d\n", s.ReferralTickets, s.ReferralTicketCap))
	if s.BonusTickets > 0 {
		b.WriteString(fmt.Sprintf("🎡 Wheel tickets: %d\n", s.BonusTickets))
	}
	b.WriteString(fmt.Sprintf("🤝 Referrals: %d", s.LifetimeReferrals))
	if !s.Activated {
		b.WriteString(fmt.Sprintf(" (at least %d to take part)", s.ActivationThreshold))
	}
	b.WriteString("\n")
	return b.String()
}

func refLinkText(link string) string {
	return "🔗 Your referral link:\n\n" + link + "\n\n" +
		"📤 Share it with friends! Everyone who opens it and starts the bot counts as your referral.\n" +
		"💡 More friends, more tickets!"
}

func rulesText(r tickets.Rules, channels []string, season time.Duration) string {
	var b strings.Builder
	b.WriteString("📜 GIVEAWAY RULES:\n\n")
	b.WriteString(fmt.Sprintf("1️⃣ Subscribe to all %d sponsor channels\n", len(channels)))
	b.WriteString(fmt.Sprintf("2️⃣ Invite at least %d friends with your link\n", r.ActivationThreshold))
	b.WriteString(fmt.Sprintf("3️⃣ Every referral after that = +1 ticket (max %d per season)\n", r.ReferralTicketCap))
	b.WriteString(fmt.Sprintf("4️⃣ Spin the wheel once every %s for bonus tickets\n", humanDuration(r.WheelCooldown)))
	if season > 0 {
		b.WriteString(fmt.Sprintf("5️⃣ A drawing takes place every %s\n", humanDuration(season)))
	}
	b.WriteString("\n⚠️ Tickets freeze while you are unsubscribed from any sponsor.")
	return b.String()
}

func statsText(st *tickets.AdminStats) string {
	state := "▶️ active"
	if !st.Active {
		state = "⏸ paused"
	}
	return fmt.Sprintf("📊 Giveaway stats\n\n"+
		"State: %s\n"+
		"Season: #%d, ends %s UTC\n"+
		"Registered: %d\n"+
		"Activated: %d\n"+
		"Eligible: %d\n"+
		"Tickets in the pool: %d",
		state, st.SeasonID, st.SeasonEndsAt.UTC().Format("2006-01-02 15:04"),
		st.Registered, st.Activated, st.Eligible, st.TotalTickets)
}

// humanDuration renders whole days and hours, or minutes under an hour.
func humanDuration(d time.Duration) string {
	if d < time.Hour {
		m := int(d.Round(time.Minute) / time.Minute)
		return fmt.Sprintf("%dm", m)
	}
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)) / time.Hour)
	switch {
	case days == 0:
		return fmt.Sprintf("%dh", hours)
	case hours == 0:
		return fmt.Sprintf("%dd", days)
	default:
		return fmt.Sprintf("%dd %dh", days, hours)
	}
}
