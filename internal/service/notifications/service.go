package notifications

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"referral-giveaway-bot/internal/domain/drawing"
	"referral-giveaway-bot/internal/service/tickets"
)

// Sender delivers a plain-text direct message.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Service formats and sends giveaway notifications as direct messages.
// Delivery is best effort; failures are logged and never returned.
type Service struct {
	tg      Sender
	spacing time.Duration
	pending sync.WaitGroup
}

func NewService(tg Sender) *Service {
	return &Service{tg: tg, spacing: 150 * time.Millisecond}
}

// WithSpacing sets the delay between consecutive winner messages.
func (s *Service) WithSpacing(d time.Duration) *Service {
	s.spacing = d
	return s
}

// NotifyWinners DMs every winner of a drawing, spreading sends out a bit to
// avoid a burst. Messages are sent in the background.
func (s *Service) NotifyWinners(_ context.Context, winners []drawing.Winner) {
	if s == nil || s.tg == nil || len(winners) == 0 {
		return
	}
	for i, w := range winners {
		s.pending.Add(1)
		go func(idx int, w drawing.Winner) {
			defer s.pending.Done()
			time.Sleep(time.Duration(idx) * s.spacing)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.send(ctx, w.UserID, buildWinnerMessage(w))
		}(i, w)
	}
}

// NotifyReferral tells the referrer what a new referral earned them.
func (s *Service) NotifyReferral(ctx context.Context, a *tickets.Attribution, rules tickets.Rules) {
	if s == nil || s.tg == nil || a == nil || !a.Inserted {
		return
	}
	s.send(ctx, a.ReferrerID, buildReferralMessage(a, rules))
}

// Wait blocks until background sends have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) send(ctx context.Context, chatID int64, text string) {
	if err := s.tg.SendMessage(ctx, chatID, text); err != nil {
		log.Warn().Err(err).Int64("user_id", chatID).Msg("notification not delivered")
	}
}

func buildWinnerMessage(w drawing.Winner) string {
	var b strings.Builder
	b.WriteString("🎉 Congratulations, you won the giveaway!\n\n")
	if w.Prize != "" {
		b.WriteString("🎁 Prize: ")
		b.WriteString(w.Prize)
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("🏆 Place: %d\n", w.Place))
	b.WriteString(fmt.Sprintf("🎟 Tickets at the draw: %d\n\n", w.Tickets))
	b.WriteString("We will contact you shortly to hand over the prize.")
	return b.String()
}

func buildReferralMessage(a *tickets.Attribution, rules tickets.Rules) string {
	var b strings.Builder
	b.WriteString("👋 A new friend joined with your link!\n")
	b.WriteString(fmt.Sprintf("👥 Referrals: %d\n", a.LifetimeReferrals))
	switch {
	case a.JustActivated:
		b.WriteString("✅ Your account is activated, referrals now earn tickets.\n")
	case a.LifetimeReferrals < rules.ActivationThreshold:
		b.WriteString(fmt.Sprintf("🔒 Invite %d more to activate tickets.\n", rules.ActivationThreshold-a.LifetimeReferrals))
	}
	if a.TicketGranted {
		b.WriteString(fmt.Sprintf("🎟 +1 ticket (%d/%d this season)", a.SeasonReferralTickets, rules.ReferralTicketCap))
	} else if a.SeasonReferralTickets >= rules.ReferralTicketCap {
		b.WriteString(fmt.Sprintf("🎟 Season referral limit reached (%d/%d)", a.SeasonReferralTickets, rules.ReferralTicketCap))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatWinners renders a drawing result as a plain-text list, one line per place.
func FormatWinners(winners []drawing.Winner) string {
	if len(winners) == 0 {
		return "No winners."
	}
	var b strings.Builder
	for _, w := range winners {
		name := w.DisplayName
		if name == "" {
			name = fmt.Sprintf("id %d", w.UserID)
		}
		b.WriteString(fmt.Sprintf("%d. %s (%d tickets)\n", w.Place, name, w.Tickets))
	}
	return strings.TrimRight(b.String(), "\n")
}
