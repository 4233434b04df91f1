package drawing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "referral-giveaway-bot/internal/common/errors"
	domain "referral-giveaway-bot/internal/domain/drawing"
	"referral-giveaway-bot/internal/domain/season"
)

// SeasonResolver names the season whose tickets a drawing weighs.
type SeasonResolver interface {
	GetOrCreateActiveSeason(ctx context.Context) (*season.Season, error)
}

// Notifier delivers drawing results. Failures never undo a drawing.
type Notifier interface {
	NotifyWinners(ctx context.Context, winners []domain.Winner)
}

// Result is one completed drawing in draw order.
type Result struct {
	DrawingID string          `json:"drawing_id"`
	SeasonID  int64           `json:"season_id"`
	Prize     string          `json:"prize"`
	Requested int             `json:"requested"`
	Eligible  int             `json:"eligible"`
	Winners   []domain.Winner `json:"winners"`
	Partial   bool            `json:"partial"`
	DrawnAt   time.Time       `json:"drawn_at"`
}

type Service struct {
	repo     domain.Repository
	seasons  SeasonResolver
	notifier Notifier
	prize    string
	now      func() time.Time
}

func NewService(repo domain.Repository, seasons SeasonResolver, defaultPrize string) *Service {
	return &Service{repo: repo, seasons: seasons, prize: defaultPrize, now: time.Now}
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RunDrawing selects k distinct winners among eligible users and appends
// them to the winner history in one transaction. With fewer than k eligible
// users nothing is recorded. An empty prize falls back to the configured one.
func (s *Service) RunDrawing(ctx context.Context, k int, prize string) (*Result, error) {
	if k < 1 {
		return nil, apperrors.NewValidationError("winners", "must be at least 1")
	}
	if prize == "" {
		prize = s.prize
	}

	active, err := s.seasons.GetOrCreateActiveSeason(ctx)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewDatabaseError("active season", err)
	}

	entrants, err := s.repo.ListEligible(ctx, active.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list eligible", err)
	}
	if len(entrants) < k {
		return nil, apperrors.NewInsufficientParticipantsError(len(entrants), k)
	}

	picked, err := Draw(entrants, k)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Drawing failed")
	}

	now := s.now().UTC()
	res := &Result{
		DrawingID: uuid.NewString(),
		SeasonID:  active.ID,
		Prize:     prize,
		Requested: k,
		Eligible:  len(entrants),
		Partial:   len(picked) < k,
		DrawnAt:   now,
		Winners:   make([]domain.Winner, 0, len(picked)),
	}
	for i, e := range picked {
		res.Winners = append(res.Winners, domain.Winner{
			DrawingID:   res.DrawingID,
			Place:       i + 1,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Prize:       prize,
			Tickets:     e.Tickets,
			WonAt:       now,
		})
	}
	if err := s.repo.RecordWinners(ctx, res.Winners); err != nil {
		return nil, apperrors.NewDatabaseError("record winners", err)
	}

	log.Info().
		Str("drawing_id", res.DrawingID).
		Int64("season_id", res.SeasonID).
		Int("requested", k).
		Int("eligible", res.Eligible).
		Int("winners", len(res.Winners)).
		Msg("drawing completed")

	if s.notifier != nil {
		s.notifier.NotifyWinners(ctx, res.Winners)
	}
	return res, nil
}

// History returns the latest winner records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]domain.Winner, error) {
	winners, err := s.repo.ListWinners(ctx, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list winners", err)
	}
	return winners, nil
}
