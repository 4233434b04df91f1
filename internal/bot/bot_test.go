package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	apperrors "referral-giveaway-bot/internal/common/errors"
	domaindrawing "referral-giveaway-bot/internal/domain/drawing"
	"referral-giveaway-bot/internal/domain/season"
	"referral-giveaway-bot/internal/domain/user"
	"referral-giveaway-bot/internal/service/drawing"
	"referral-giveaway-bot/internal/service/tickets"
)

type fakeEngine struct {
	users      map[int64]string
	paused     bool
	attributed [][2]int64
	attrErr    error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{users: map[int64]string{}}
}

func (f *fakeEngine) RegisterOrTouch(_ context.Context, id int64, name string) (*user.User, bool, error) {
	if f.paused {
		return nil, false, apperrors.NewPausedError()
	}
	_, existed := f.users[id]
	f.users[id] = name
	return &user.User{ID: id, DisplayName: name}, !existed, nil
}

func (f *fakeEngine) AttributeReferral(_ context.Context, referrer, referred int64) (*tickets.Attribution, error) {
	if f.attrErr != nil {
		return nil, f.attrErr
	}
	f.attributed = append(f.attributed, [2]int64{referrer, referred})
	return &tickets.Attribution{ReferrerID: referrer, ReferredID: referred, Inserted: true, LifetimeReferrals: 1}, nil
}

func (f *fakeEngine) Status(_ context.Context, id int64) (*tickets.Summary, error) {
	name, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewUserNotFoundError(id)
	}
	return &tickets.Summary{
		UserID:              id,
		DisplayName:         name,
		AllSubscribed:       true,
		Channels:            []tickets.ChannelStatus{{Channel: "@sponsor", Subscribed: true}},
		ReferralTicketCap:   10,
		ActivationThreshold: 2,
		GiveawayActive:      true,
		Prize:               "iPhone",
		SeasonRemaining:     50 * time.Hour,
		SpinAvailable:       true,
	}, nil
}

func (f *fakeEngine) ReferralLink(int64) string { return "https://t.me/giveaway_bot?start=1" }
func (f *fakeEngine) Rules() tickets.Rules      { return tickets.DefaultRules() }
func (f *fakeEngine) Channels() []string        { return []string{"@Sponsor", "-1001"} }

func (f *fakeEngine) SetActive(_ context.Context, active bool) error {
	f.paused = !active
	return nil
}

func (f *fakeEngine) ResetSeason(context.Context) (*season.Season, error) {
	return &season.Season{ID: 2}, nil
}

func (f *fakeEngine) Stats(context.Context) (*tickets.AdminStats, error) {
	return &tickets.AdminStats{Active: true, SeasonID: 2}, nil
}

type fakeNotifier struct {
	got []*tickets.Attribution
}

func (f *fakeNotifier) NotifyReferral(_ context.Context, a *tickets.Attribution, _ tickets.Rules) {
	f.got = append(f.got, a)
}

type fakeDrawer struct {
	k     int
	prize string
	err   error
}

func (f *fakeDrawer) RunDrawing(_ context.Context, k int, prize string) (*drawing.Result, error) {
	f.k, f.prize = k, prize
	if f.err != nil {
		return nil, f.err
	}
	return &drawing.Result{
		DrawingID: "d1",
		Prize:     prize,
		Eligible:  3,
		Winners:   []domaindrawing.Winner{{Place: 1, UserID: 5, DisplayName: "@winner", Tickets: 4}},
	}, nil
}

func newTestBot(engine *fakeEngine, drawer *fakeDrawer, n *fakeNotifier) *Bot {
	var notifier ReferralNotifier
	if n != nil {
		notifier = n
	}
	return newBot(nil, engine, drawer, notifier, nil, Options{DefaultWinners: 2, Admins: map[int64]struct{}{1: {}}})
}

func TestStart_AttributesReferralForNewUserOnly(t *testing.T) {
	engine := newFakeEngine()
	n := &fakeNotifier{}
	b := newTestBot(engine, &fakeDrawer{}, n)
	ctx := context.Background()

	engine.users[7] = "@referrer"

	text, markup, err := b.start(ctx, &tele.User{ID: 8, Username: "friend"}, "7")
	require.NoError(t, err)
	assert.Contains(t, text, "Hi, @friend")
	assert.Contains(t, text, "iPhone")
	require.NotNil(t, markup)
	assert.Equal(t, [][2]int64{{7, 8}}, engine.attributed)
	require.Len(t, n.got, 1)
	assert.Equal(t, int64(7), n.got[0].ReferrerID)

	// a returning user is never attributed again
	_, _, err = b.start(ctx, &tele.User{ID: 8, Username: "friend"}, "ref_9")
	require.NoError(t, err)
	assert.Len(t, engine.attributed, 1)
}

func TestStart_BadPayloadStillRegisters(t *testing.T) {
	engine := newFakeEngine()
	n := &fakeNotifier{}
	b := newTestBot(engine, &fakeDrawer{}, n)

	_, _, err := b.start(context.Background(), &tele.User{ID: 8, FirstName: "Ann"}, "promo")
	require.NoError(t, err)
	assert.Equal(t, "Ann", engine.users[8])
	assert.Empty(t, engine.attributed)

	engine.attrErr = apperrors.New(apperrors.ErrCodeInvalidReferral, "Unknown referrer")
	_, _, err = b.start(context.Background(), &tele.User{ID: 9}, "12345")
	require.NoError(t, err)
	assert.Empty(t, n.got)
}

func TestStart_Paused(t *testing.T) {
	engine := newFakeEngine()
	engine.paused = true
	b := newTestBot(engine, &fakeDrawer{}, nil)

	text, markup, err := b.start(context.Background(), &tele.User{ID: 8}, "")
	require.NoError(t, err)
	assert.Equal(t, pausedText, text)
	assert.Nil(t, markup)
}

func TestRegisteredStatus_RegistersUnknownUser(t *testing.T) {
	engine := newFakeEngine()
	b := newTestBot(engine, &fakeDrawer{}, nil)

	text, _, err := b.registeredStatus(context.Background(), &tele.User{ID: 3, Username: "late"})
	require.NoError(t, err)
	assert.Contains(t, text, "@late")
	assert.Contains(t, engine.users, int64(3))
}

func TestDraw(t *testing.T) {
	drawer := &fakeDrawer{}
	b := newTestBot(newFakeEngine(), drawer, nil)
	ctx := context.Background()

	text := b.draw(ctx, 1, "")
	assert.Equal(t, 2, drawer.k)
	assert.Contains(t, text, "1. @winner (4 tickets)")

	text = b.draw(ctx, 1, "3 Telegram Premium")
	assert.Equal(t, 3, drawer.k)
	assert.Equal(t, "Telegram Premium", drawer.prize)
	assert.Contains(t, text, "🎁 Telegram Premium")

	assert.Contains(t, b.draw(ctx, 1, "0"), "Usage")

	drawer.err = apperrors.NewInsufficientParticipantsError(1, 3)
	assert.Contains(t, b.draw(ctx, 1, "3"), "❌")

	drawer.err = assert.AnError
	assert.Equal(t, "❌ Drawing failed, try again later.", b.draw(ctx, 1, ""))
}

func TestParseDrawArgs(t *testing.T) {
	cases := []struct {
		in      string
		k       int
		prize   string
		wantErr bool
	}{
		{"", 1, "", false},
		{"5", 5, "", false},
		{" 2  Stars pack ", 2, "Stars pack", false},
		{"Premium", 1, "Premium", false},
		{"-1", 0, "", true},
	}
	for _, tc := range cases {
		k, prize, err := parseDrawArgs(tc.in, 1)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.k, k, tc.in)
		assert.Equal(t, tc.prize, prize, tc.in)
	}
}

func TestIsSponsorAndChatRef(t *testing.T) {
	b := newTestBot(newFakeEngine(), &fakeDrawer{}, nil)

	assert.Equal(t, "@sponsor", chatRef(&tele.Chat{ID: -5, Username: "sponsor"}))
	assert.Equal(t, "-1001", chatRef(&tele.Chat{ID: -1001}))
	assert.True(t, b.isSponsor("@sponsor"))
	assert.True(t, b.isSponsor("-1001"))
	assert.False(t, b.isSponsor("@other"))
	assert.True(t, b.isAdmin(1))
	assert.False(t, b.isAdmin(2))
}

func TestStatusText_Unsubscribed(t *testing.T) {
	text := statusText(&tickets.Summary{
		GiveawayActive:  true,
		ReferralTickets: 3,
		BonusTickets:    2,
		Channels: []tickets.ChannelStatus{
			{Channel: "@a", Subscribed: true},
			{Channel: "@b"},
		},
	})
	assert.Contains(t, text, "❌ @b")
	assert.Contains(t, text, "✅ @a")
	assert.Contains(t, text, "5 tickets are frozen")
}

func TestTicketsText(t *testing.T) {
	next := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	text := ticketsText(&tickets.Summary{AllSubscribed: true, ActivationThreshold: 2, ReferralTicketCap: 10, LifetimeReferrals: 1, NextSpinAt: &next})
	assert.Contains(t, text, "You need 2 referrals")
	assert.Contains(t, text, "18:30")
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "45m", humanDuration(45*time.Minute))
	assert.Equal(t, "6h", humanDuration(6*time.Hour))
	assert.Equal(t, "7d", humanDuration(7*24*time.Hour))
	assert.Equal(t, "2d 2h", humanDuration(50*time.Hour))
}

func TestRulesText(t *testing.T) {
	text := rulesText(tickets.DefaultRules(), []string{"@a", "@b", "@c"}, 7*24*time.Hour)
	assert.Contains(t, text, "all 3 sponsor channels")
	assert.Contains(t, text, "at least 2 friends")
	assert.Contains(t, text, "max 10 per season")
	assert.Contains(t, text, "every 7d")
}
