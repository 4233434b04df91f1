package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"referral-giveaway-bot/internal/domain/season"
)

// seasonLockKey serializes season creation across instances.
const seasonLockKey = 7_001_001

// SeasonRepository stores scoring seasons.
type SeasonRepository struct {
	db *sql.DB
}

func NewSeasonRepository(db *sql.DB) *SeasonRepository { return &SeasonRepository{db: db} }

var _ season.Repository = (*SeasonRepository)(nil)

const activeSeasonQuery = `
SELECT id, started_at, ends_at
FROM seasons
WHERE ends_at > $1
ORDER BY started_at DESC, id DESC
LIMIT 1`

func scanSeason(row rowScanner) (*season.Season, error) {
	var s season.Season
	if err := row.Scan(&s.ID, &s.StartedAt, &s.EndsAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreateActive returns the season whose end is after now. When none is,
// a new one is created under a transaction-scoped advisory lock so that
// concurrent callers agree on a single season.
func (r *SeasonRepository) GetOrCreateActive(ctx context.Context, now time.Time, duration time.Duration) (*season.Season, error) {
	s, err := scanSeason(r.db.QueryRowContext(ctx, activeSeasonQuery, now))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, seasonLockKey); err != nil {
			return err
		}
		// Another instance may have created it while we waited for the lock.
		existing, err := scanSeason(tx.QueryRowContext(ctx, activeSeasonQuery, now))
		if err == nil {
			s = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		s, err = insertSeason(ctx, tx, now, duration)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// StartNew ends the active season at now, opens the next one and resets the
// season-scoped counters of all users to it.
func (r *SeasonRepository) StartNew(ctx context.Context, now time.Time, duration time.Duration) (*season.Season, error) {
	const closeActive = `UPDATE seasons SET ends_at = GREATEST($1, started_at + interval '1 millisecond') WHERE ends_at > $1`
	const resetUsers = `
UPDATE users SET
	season_id = $1,
	season_referral_tickets = 0,
	season_bonus_tickets = 0,
	total_tickets = 0,
	last_spin_at = NULL`
	var s *season.Season
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, seasonLockKey); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, closeActive, now); err != nil {
			return err
		}
		var err error
		if s, err = insertSeason(ctx, tx, now, duration); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, resetUsers, s.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func insertSeason(ctx context.Context, tx *sql.Tx, now time.Time, duration time.Duration) (*season.Season, error) {
	s := &season.Season{StartedAt: now, EndsAt: now.Add(duration)}
	const q = `INSERT INTO seasons (started_at, ends_at) VALUES ($1, $2) RETURNING id`
	if err := tx.QueryRowContext(ctx, q, s.StartedAt, s.EndsAt).Scan(&s.ID); err != nil {
		return nil, err
	}
	return s, nil
}
