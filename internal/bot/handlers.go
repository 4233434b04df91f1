package bot

import (
	"context"
	"errors"
	"strings"

	tele "gopkg.in/telebot.v3"

	apperrors "referral-giveaway-bot/internal/common/errors"
	"referral-giveaway-bot/internal/service/tickets"
	"referral-giveaway-bot/internal/workers"
)

func (b *Bot) handleStart(c tele.Context) error {
	ctx, cancel := b.context()
	defer cancel()

	text, markup, err := b.start(ctx, c.Sender(), c.Message().Payload)
	if err != nil {
		return err
	}
	return c.Send(text, markup)
}

// start registers the sender, credits the referrer of a new user and
// renders the main status view.
func (b *Bot) start(ctx context.Context, sender *tele.User, payload string) (string, *tele.ReplyMarkup, error) {
	_, created, err := b.engine.RegisterOrTouch(ctx, sender.ID, displayName(sender))
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodePaused) {
			return pausedText, nil, nil
		}
		return "", nil, err
	}

	if created {
		b.attribute(ctx, sender.ID, payload)
	}
	return b.status(ctx, sender.ID)
}

// attribute never fails the /start flow: a bad payload only costs the referrer.
func (b *Bot) attribute(ctx context.Context, referredID int64, payload string) {
	referrerID, err := tickets.ParseReferralPayload(payload)
	if err != nil {
		b.log.Debug().Str("payload", payload).Int64("user_id", referredID).Msg("ignoring malformed referral payload")
		return
	}
	if referrerID == 0 {
		return
	}

	a, err := b.engine.AttributeReferral(ctx, referrerID, referredID)
	if err != nil {
		ev := b.log.Warn()
		if apperrors.IsCode(err, apperrors.ErrCodeInvalidReferral) {
			ev = b.log.Debug()
		}
		ev.Err(err).Int64("referrer_id", referrerID).Int64("user_id", referredID).Msg("referral not attributed")
		return
	}
	if b.notifier != nil {
		b.notifier.NotifyReferral(ctx, a, b.engine.Rules())
	}
}

func (b *Bot) status(ctx context.Context, userID int64) (string, *tele.ReplyMarkup, error) {
	sum, err := b.engine.Status(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	return statusText(sum), b.mainMenu(), nil
}

func (b *Bot) handleStatus(c tele.Context) error {
	ctx, cancel := b.context()
	defer cancel()

	text, markup, err := b.registeredStatus(ctx, c.Sender())
	if err != nil {
		return err
	}
	return c.Send(text, markup)
}

// registeredStatus renders the status, registering users who never sent /start.
func (b *Bot) registeredStatus(ctx context.Context, sender *tele.User) (string, *tele.ReplyMarkup, error) {
	text, markup, err := b.status(ctx, sender.ID)
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return b.start(ctx, sender, "")
	}
	return text, markup, err
}

func (b *Bot) handleRefLink(c tele.Context) error {
	return c.Send(refLinkText(b.engine.ReferralLink(c.Sender().ID)), b.subMenu())
}

func (b *Bot) handleRules(c tele.Context) error {
	return c.Send(rulesText(b.engine.Rules(), b.engine.Channels(), b.opts.SeasonLength), b.subMenu())
}

func (b *Bot) onMyTickets(c tele.Context) error {
	defer c.Respond()
	ctx, cancel := b.context()
	defer cancel()

	sum, err := b.engine.Status(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	return c.Edit(ticketsText(sum), b.subMenu())
}

func (b *Bot) onRefLink(c tele.Context) error {
	defer c.Respond()
	return c.Edit(refLinkText(b.engine.ReferralLink(c.Sender().ID)), b.subMenu())
}

func (b *Bot) onRules(c tele.Context) error {
	defer c.Respond()
	return c.Edit(rulesText(b.engine.Rules(), b.engine.Channels(), b.opts.SeasonLength), b.subMenu())
}

func (b *Bot) onRefresh(c tele.Context) error {
	defer c.Respond()
	ctx, cancel := b.context()
	defer cancel()

	text, markup, err := b.registeredStatus(ctx, c.Sender())
	if err != nil {
		return err
	}
	err = c.Edit(text, markup)
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}

// onChatMember forwards sponsor membership changes to the re-evaluation worker.
func (b *Bot) onChatMember(c tele.Context) error {
	upd := c.ChatMember()
	if upd == nil || upd.NewChatMember == nil || upd.NewChatMember.User == nil {
		return nil
	}
	ref := chatRef(upd.Chat)
	if !b.isSponsor(ref) {
		return nil
	}
	ctx, cancel := b.context()
	defer cancel()

	userID := upd.NewChatMember.User.ID
	if _, err := b.events.PublishEvent(ctx, b.opts.Stream, workers.MembershipEvent(userID, ref, string(upd.NewChatMember.Role))); err != nil {
		b.log.Warn().Err(err).Int64("user_id", userID).Str("channel", ref).Msg("failed to publish membership event")
	}
	return nil
}

func (b *Bot) isSponsor(ref string) bool {
	for _, ch := range b.engine.Channels() {
		if strings.EqualFold(ch, ref) {
			return true
		}
	}
	return false
}

func (b *Bot) mainMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := []tele.Row{
		m.Row(btnTickets),
		m.Row(btnRefLink),
		m.Row(btnRefresh),
		m.Row(btnRules),
	}
	if b.opts.WebAppURL != "" {
		rows = append(rows, m.Row(m.WebApp("🎡 Spin the wheel", &tele.WebApp{URL: b.opts.WebAppURL})))
	}
	m.Inline(rows...)
	return m
}

func (b *Bot) subMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(btnRefresh), m.Row(btnBack))
	return m
}

// displayName prefers @username and falls back to the full name.
func displayName(u *tele.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
