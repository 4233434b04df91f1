package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"

	"referral-giveaway-bot/internal/common/logger"
	"referral-giveaway-bot/internal/domain/season"
	"referral-giveaway-bot/internal/domain/user"
	"referral-giveaway-bot/internal/service/drawing"
	"referral-giveaway-bot/internal/service/tickets"
	"referral-giveaway-bot/internal/workers"
)

// Engine is the part of the ticket engine the bot talks to.
type Engine interface {
	RegisterOrTouch(ctx context.Context, userID int64, displayName string) (*user.User, bool, error)
	AttributeReferral(ctx context.Context, referrerID, referredID int64) (*tickets.Attribution, error)
	Status(ctx context.Context, userID int64) (*tickets.Summary, error)
	ReferralLink(userID int64) string
	Rules() tickets.Rules
	Channels() []string
	SetActive(ctx context.Context, active bool) error
	ResetSeason(ctx context.Context) (*season.Season, error)
	Stats(ctx context.Context) (*tickets.AdminStats, error)
}

// Drawer runs a drawing on admin request.
type Drawer interface {
	RunDrawing(ctx context.Context, k int, prize string) (*drawing.Result, error)
}

// ReferralNotifier tells a referrer about a new referral.
type ReferralNotifier interface {
	NotifyReferral(ctx context.Context, a *tickets.Attribution, rules tickets.Rules)
}

// EventPublisher appends membership events to a stream.
type EventPublisher interface {
	PublishEvent(ctx context.Context, stream string, values map[string]interface{}) (string, error)
}

type Options struct {
	Token          string
	APIURL         string
	PollTimeout    time.Duration
	Admins         map[int64]struct{}
	WebAppURL      string
	Stream         string
	DefaultWinners int
	SeasonLength   time.Duration
}

// Bot is the Telegram front-end. It keeps no state of its own.
type Bot struct {
	bot      *tele.Bot
	engine   Engine
	drawer   Drawer
	notifier ReferralNotifier
	events   EventPublisher
	opts     Options
	log      zerolog.Logger
}

const handlerTimeout = 15 * time.Second

var (
	menu       = &tele.ReplyMarkup{}
	btnTickets = menu.Data("🎫 My tickets", "my_tickets")
	btnRefLink = menu.Data("🔗 My referral link", "my_reflink")
	btnRefresh = menu.Data("🔄 Refresh status", "refresh_status")
	btnRules   = menu.Data("🏆 Giveaway rules", "rules")
	btnBack    = menu.Data("🔙 Back", "back_to_main")
)

func New(engine Engine, drawer Drawer, notifier ReferralNotifier, events EventPublisher, opts Options) (*Bot, error) {
	lg := logger.Component("bot")
	pref := tele.Settings{
		Token: opts.Token,
		URL:   opts.APIURL,
		Poller: &tele.LongPoller{
			Timeout:        opts.PollTimeout,
			AllowedUpdates: []string{"message", "callback_query", "chat_member"},
		},
		OnError: func(err error, c tele.Context) {
			ev := lg.Error().Err(err)
			if c != nil && c.Sender() != nil {
				ev = ev.Int64("user_id", c.Sender().ID)
			}
			ev.Msg("bot handler failed")
		},
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := newBot(tb, engine, drawer, notifier, events, opts)
	b.registerHandlers()
	return b, nil
}

func newBot(tb *tele.Bot, engine Engine, drawer Drawer, notifier ReferralNotifier, events EventPublisher, opts Options) *Bot {
	if opts.Stream == "" {
		opts.Stream = workers.DefaultStream
	}
	if opts.DefaultWinners < 1 {
		opts.DefaultWinners = 1
	}
	return &Bot{
		bot:      tb,
		engine:   engine,
		drawer:   drawer,
		notifier: notifier,
		events:   events,
		opts:     opts,
		log:      logger.Component("bot"),
	}
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/status", b.handleStatus)
	b.bot.Handle("/ref", b.handleRefLink)
	b.bot.Handle("/rules", b.handleRules)

	b.bot.Handle(&btnTickets, b.onMyTickets)
	b.bot.Handle(&btnRefLink, b.onRefLink)
	b.bot.Handle(&btnRefresh, b.onRefresh)
	b.bot.Handle(&btnRules, b.onRules)
	b.bot.Handle(&btnBack, b.onRefresh)

	b.bot.Handle(tele.OnChatMember, b.onChatMember)

	admins := make([]int64, 0, len(b.opts.Admins))
	for id := range b.opts.Admins {
		admins = append(admins, id)
	}
	adm := b.bot.Group()
	adm.Use(middleware.Whitelist(admins...))
	adm.Handle("/draw", b.handleDraw)
	adm.Handle("/reset_season", b.handleResetSeason)
	adm.Handle("/pause", b.handlePause)
	adm.Handle("/resume", b.handleResume)
	adm.Handle("/stats", b.handleStats)
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()
	b.log.Info().Str("bot", b.bot.Me.Username).Msg("bot polling started")
	b.bot.Start()
}

func (b *Bot) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

func (b *Bot) isAdmin(id int64) bool {
	_, ok := b.opts.Admins[id]
	return ok
}

// chatRef identifies a chat the way sponsor channels are configured.
func chatRef(chat *tele.Chat) string {
	if chat == nil {
		return ""
	}
	if chat.Username != "" {
		return "@" + chat.Username
	}
	return strconv.FormatInt(chat.ID, 10)
}
