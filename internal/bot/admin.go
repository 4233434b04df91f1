package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	apperrors "referral-giveaway-bot/internal/common/errors"
	"referral-giveaway-bot/internal/service/notifications"
)

// /draw [winners] [prize text]
func (b *Bot) handleDraw(c tele.Context) error {
	ctx, cancel := b.context()
	defer cancel()
	return c.Send(b.draw(ctx, c.Sender().ID, c.Message().Payload))
}

func (b *Bot) draw(ctx context.Context, adminID int64, payload string) string {
	k, prize, err := parseDrawArgs(payload, b.opts.DefaultWinners)
	if err != nil {
		return "Usage: /draw [winners] [prize]"
	}

	res, err := b.drawer.RunDrawing(ctx, k, prize)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && !appErr.IsInternal() {
			return "❌ " + appErr.Message
		}
		b.log.Error().Err(err).Int64("admin_id", adminID).Msg("drawing failed")
		return "❌ Drawing failed, try again later."
	}

	b.log.Info().Int64("admin_id", adminID).Str("drawing_id", res.DrawingID).Msg("drawing run from bot")
	var sb strings.Builder
	sb.WriteString("🏆 Drawing results\n")
	if res.Prize != "" {
		sb.WriteString("🎁 " + res.Prize + "\n")
	}
	sb.WriteString(fmt.Sprintf("👥 Eligible: %d\n\n", res.Eligible))
	sb.WriteString(notifications.FormatWinners(res.Winners))
	return sb.String()
}

func (b *Bot) handleResetSeason(c tele.Context) error {
	ctx, cancel := b.context()
	defer cancel()

	s, err := b.engine.ResetSeason(ctx)
	if err != nil {
		b.log.Error().Err(err).Int64("admin_id", c.Sender().ID).Msg("season reset failed")
		return c.Send("❌ Season reset failed.")
	}
	b.log.Info().Int64("admin_id", c.Sender().ID).Int64("season_id", s.ID).Msg("season reset from bot")
	return c.Send(fmt.Sprintf("🔁 Season #%d started, ends %s UTC.", s.ID, s.EndsAt.UTC().Format("2006-01-02 15:04")))
}

func (b *Bot) handlePause(c tele.Context) error {
	return b.setActive(c, false)
}

func (b *Bot) handleResume(c tele.Context) error {
	return b.setActive(c, true)
}

func (b *Bot) setActive(c tele.Context, active bool) error {
	ctx, cancel := b.context()
	defer cancel()

	if err := b.engine.SetActive(ctx, active); err != nil {
		b.log.Error().Err(err).Bool("active", active).Msg("failed to switch giveaway")
		return c.Send("❌ Could not update the giveaway switch.")
	}
	b.log.Info().Int64("admin_id", c.Sender().ID).Bool("active", active).Msg("giveaway switched from bot")
	if active {
		return c.Send("▶️ Giveaway resumed.")
	}
	return c.Send("⏸ Giveaway paused.")
}

func (b *Bot) handleStats(c tele.Context) error {
	ctx, cancel := b.context()
	defer cancel()

	st, err := b.engine.Stats(ctx)
	if err != nil {
		return err
	}
	return c.Send(statsText(st))
}

// parseDrawArgs reads an optional leading winner count and the rest as prize.
func parseDrawArgs(payload string, def int) (int, string, error) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return def, "", nil
	}
	k, err := strconv.Atoi(fields[0])
	if err != nil {
		return def, strings.Join(fields, " "), nil
	}
	if k < 1 {
		return 0, "", fmt.Errorf("winner count must be positive: %d", k)
	}
	return k, strings.Join(fields[1:], " "), nil
}
