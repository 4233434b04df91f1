package tickets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "referral-giveaway-bot/internal/common/errors"
	"referral-giveaway-bot/internal/domain/referral"
	domainseason "referral-giveaway-bot/internal/domain/season"
	"referral-giveaway-bot/internal/domain/settings"
	"referral-giveaway-bot/internal/domain/user"
	"referral-giveaway-bot/internal/service/season"
)

// Options carries deployment-level configuration of the engine.
type Options struct {
	Channels    []string
	Rules       Rules
	BotUsername string
	Prize       string
}

// Service is the eligibility and ticket engine. Every counter mutation goes
// through a repository call that holds the user's row lock.
type Service struct {
	users    user.Repository
	ledger   referral.Ledger
	seasons  SeasonRegistry
	oracle   MembershipOracle
	settings settings.Repository
	switches SwitchCache

	channels    []string
	rules       Rules
	botUsername string
	prize       string
	now         func() time.Time
}

func NewService(users user.Repository, ledger referral.Ledger, seasons SeasonRegistry, oracle MembershipOracle, settingsRepo settings.Repository, opts Options) *Service {
	rules := opts.Rules
	def := DefaultRules()
	if rules.ActivationThreshold <= 0 {
		rules.ActivationThreshold = def.ActivationThreshold
	}
	if rules.ReferralTicketCap <= 0 {
		rules.ReferralTicketCap = def.ReferralTicketCap
	}
	if rules.WheelCooldown <= 0 {
		rules.WheelCooldown = def.WheelCooldown
	}
	return &Service{
		users:       users,
		ledger:      ledger,
		seasons:     seasons,
		oracle:      oracle,
		settings:    settingsRepo,
		channels:    append([]string(nil), opts.Channels...),
		rules:       rules,
		botUsername: strings.TrimPrefix(strings.TrimSpace(opts.BotUsername), "@"),
		prize:       opts.Prize,
		now:         time.Now,
	}
}

// WithSwitchCache enables the shared cache for the global switch.
func (s *Service) WithSwitchCache(c SwitchCache) *Service {
	s.switches = c
	return s
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Rules() Rules        { return s.rules }
func (s *Service) Channels() []string  { return append([]string(nil), s.channels...) }
func (s *Service) Prize() string       { return s.prize }
func (s *Service) BotUsername() string { return s.botUsername }

// RegisterOrTouch upserts the user with the latest display name and rolls
// them into the active season when it changed. created reports a first entry.
func (s *Service) RegisterOrTouch(ctx context.Context, userID int64, displayName string) (*user.User, bool, error) {
	if userID <= 0 {
		return nil, false, apperrors.NewValidationError("user_id", "must be positive")
	}
	if err := s.ensureActive(ctx); err != nil {
		return nil, false, err
	}
	active, err := s.activeSeason(ctx)
	if err != nil {
		return nil, false, err
	}

	u, created, err := s.users.Upsert(ctx, userID, strings.TrimSpace(displayName), s.now().UTC(), func(u *user.User) error {
		season.RolloverIfNeeded(u, active.ID)
		return nil
	})
	if err != nil {
		return nil, false, apperrors.NewDatabaseError("upsert user", err).WithUserID(userID)
	}
	if created {
		log.Info().Int64("user_id", userID).Int64("season_id", active.ID).Msg("user registered")
	}
	return u, created, nil
}

// AttributeReferral records referrer -> referred at most once. Only a newly
// recorded edge changes the referrer; repeated calls are no-ops.
func (s *Service) AttributeReferral(ctx context.Context, referrerID, referredID int64) (*Attribution, error) {
	if referrerID <= 0 || referredID <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidReferral, "Malformed referrer id").
			WithDetail("referrer_id", referrerID).
			WithUserID(referredID)
	}
	if referrerID == referredID {
		return nil, apperrors.New(apperrors.ErrCodeInvalidReferral, "Self-referral is not allowed").
			WithUserID(referredID)
	}
	if err := s.ensureActive(ctx); err != nil {
		return nil, err
	}
	active, err := s.activeSeason(ctx)
	if err != nil {
		return nil, err
	}

	res := &Attribution{ReferrerID: referrerID, ReferredID: referredID}
	edge := referral.Edge{ReferrerID: referrerID, ReferredID: referredID, CreatedAt: s.now().UTC()}
	inserted, err := s.ledger.TryAttribute(ctx, edge, func(u *user.User) error {
		season.RolloverIfNeeded(u, active.ID)
		res.JustActivated, res.TicketGranted = s.rules.applyReferral(u)
		res.LifetimeReferrals = u.LifetimeReferrals
		res.SeasonReferralTickets = u.SeasonReferralTickets
		return nil
	})
	if errors.Is(err, user.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidReferral, "Unknown referrer").
			WithDetail("referrer_id", referrerID).
			WithUserID(referredID)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("attribute referral", err).WithUserID(referredID)
	}
	if !inserted {
		return &Attribution{ReferrerID: referrerID, ReferredID: referredID}, nil
	}
	res.Inserted = true

	log.Info().
		Int64("referrer_id", referrerID).
		Int64("referred_id", referredID).
		Int("lifetime_referrals", res.LifetimeReferrals).
		Bool("activated", res.JustActivated).
		Bool("ticket_granted", res.TicketGranted).
		Msg("referral attributed")
	return res, nil
}

// ParseReferralPayload extracts the referrer id from a start payload. Both
// "123" and "ref_123" are accepted. An empty payload yields 0 and no error.
func ParseReferralPayload(payload string) (int64, error) {
	p := strings.TrimSpace(payload)
	if p == "" {
		return 0, nil
	}
	p = strings.TrimPrefix(p, "ref_")
	id, err := strconv.ParseInt(p, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.ErrCodeInvalidReferral, "Malformed referral payload").
			WithDetail("payload", payload)
	}
	return id, nil
}

// ReferralLink is the deep link that starts the bot with userID as payload.
func (s *Service) ReferralLink(userID int64) string {
	if s.botUsername == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%d", s.botUsername, userID)
}

// Leaderboard returns users of the active season with the highest totals.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]user.User, error) {
	active, err := s.activeSeason(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Top(ctx, active.ID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("leaderboard", err)
	}
	return users, nil
}

func (s *Service) activeSeason(ctx context.Context) (*domainseason.Season, error) {
	active, err := s.seasons.GetOrCreateActiveSeason(ctx)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseError("active season", err)
	}
	return active, nil
}

// mutate runs fn on an existing user after rolling them into the active season.
func (s *Service) mutate(ctx context.Context, userID int64, active *domainseason.Season, fn user.MutateFunc) (*user.User, error) {
	return s.users.Mutate(ctx, userID, func(u *user.User) error {
		season.RolloverIfNeeded(u, active.ID)
		if fn == nil {
			return nil
		}
		return fn(u)
	})
}

func notFoundOr(err error, userID int64, op string) error {
	if errors.Is(err, user.ErrNotFound) {
		return apperrors.NewUserNotFoundError(userID)
	}
	return apperrors.NewDatabaseError(op, err).WithUserID(userID)
}
