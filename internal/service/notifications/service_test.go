package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-giveaway-bot/internal/domain/drawing"
	"referral-giveaway-bot/internal/service/tickets"
)

type fakeSender struct {
	mu   sync.Mutex
	sent map[int64]string
	fail bool
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("blocked by user")
	}
	if f.sent == nil {
		f.sent = map[int64]string{}
	}
	f.sent[chatID] = text
	return nil
}

func TestNotifyWinners(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender).WithSpacing(0)

	svc.NotifyWinners(context.Background(), []drawing.Winner{
		{UserID: 1, Place: 1, Prize: "iPhone", Tickets: 3},
		{UserID: 2, Place: 2, Prize: "iPhone", Tickets: 1},
	})
	svc.Wait()

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1], "Prize: iPhone")
	assert.Contains(t, sender.sent[2], "Place: 2")
}

func TestNotifyWinners_FailureIsSwallowed(t *testing.T) {
	svc := NewService(&fakeSender{fail: true}).WithSpacing(0)
	svc.NotifyWinners(context.Background(), []drawing.Winner{{UserID: 1, Place: 1}})
	svc.Wait()
}

func TestNotifyReferral(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender)
	rules := tickets.DefaultRules()

	svc.NotifyReferral(context.Background(), &tickets.Attribution{ReferrerID: 5, Inserted: false}, rules)
	assert.Empty(t, sender.sent)

	svc.NotifyReferral(context.Background(), &tickets.Attribution{ReferrerID: 5, Inserted: true, LifetimeReferrals: 1}, rules)
	assert.Contains(t, sender.sent[5], "Invite 1 more")

	svc.NotifyReferral(context.Background(), &tickets.Attribution{
		ReferrerID: 5, Inserted: true, LifetimeReferrals: 2, JustActivated: true, TicketGranted: true, SeasonReferralTickets: 1,
	}, rules)
	assert.Contains(t, sender.sent[5], "activated")
	assert.Contains(t, sender.sent[5], "+1 ticket (1/10")
}

func TestFormatWinners(t *testing.T) {
	assert.Equal(t, "No winners.", FormatWinners(nil))
	assert.Equal(t, "1. alice (3 tickets)\n2. id 7 (1 tickets)", FormatWinners([]drawing.Winner{
		{Place: 1, UserID: 1, DisplayName: "alice", Tickets: 3},
		{Place: 2, UserID: 7, Tickets: 1},
	}))
}
