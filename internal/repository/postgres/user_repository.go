package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	domain "referral-giveaway-bot/internal/domain/user"
)

// UserRepository stores participants and their subscription facts in Postgres.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

var _ domain.Repository = (*UserRepository)(nil)

// Upsert inserts the user or refreshes display name and last-seen time, then
// applies fn under the row lock. An empty display name keeps the stored one.
func (r *UserRepository) Upsert(ctx context.Context, id int64, displayName string, now time.Time, fn domain.MutateFunc) (*domain.User, bool, error) {
	const q = `
INSERT INTO users (id, display_name, last_seen_at, created_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (id) DO UPDATE SET
	display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
	last_seen_at = EXCLUDED.last_seen_at
RETURNING (xmax = 0) AS created`
	var (
		u       *domain.User
		created bool
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, q, id, displayName, now).Scan(&created); err != nil {
			return err
		}
		var err error
		u, err = mutateLocked(ctx, tx, id, fn)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return u, created, nil
}

// Mutate applies fn to an existing user under its row lock.
func (r *UserRepository) Mutate(ctx context.Context, id int64, fn domain.MutateFunc) (*domain.User, error) {
	var u *domain.User
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		u, err = mutateLocked(ctx, tx, id, fn)
		return err
	})
	return u, err
}

// SaveSubscriptions replaces the user's subscription facts with the given set
// and applies fn in the same transaction. Facts for channels that are no
// longer configured are dropped.
func (r *UserRepository) SaveSubscriptions(ctx context.Context, id int64, facts []domain.ChannelFact, fn domain.MutateFunc) (*domain.User, error) {
	const upsert = `
INSERT INTO user_subscriptions (user_id, channel, subscribed, checked_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, channel) DO UPDATE SET
	subscribed = EXCLUDED.subscribed,
	checked_at = EXCLUDED.checked_at`
	const prune = `DELETE FROM user_subscriptions WHERE user_id=$1 AND NOT (channel = ANY($2))`

	channels := make([]string, 0, len(facts))
	for _, f := range facts {
		channels = append(channels, f.Channel)
	}

	var u *domain.User
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		// Lock first so facts and the aggregate flag change together.
		if _, err = lockUser(ctx, tx, id); err != nil {
			return err
		}
		for _, f := range facts {
			if _, err = tx.ExecContext(ctx, upsert, id, f.Channel, f.Subscribed, f.CheckedAt); err != nil {
				return err
			}
		}
		if _, err = tx.ExecContext(ctx, prune, id, pq.Array(channels)); err != nil {
			return err
		}
		u, err = mutateLocked(ctx, tx, id, fn)
		return err
	})
	return u, err
}

// GetByID returns a user by Telegram ID, or nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// ListSubscriptions returns the last known per-channel facts ordered by channel.
func (r *UserRepository) ListSubscriptions(ctx context.Context, id int64) ([]domain.ChannelFact, error) {
	const q = `SELECT channel, subscribed, checked_at FROM user_subscriptions WHERE user_id=$1 ORDER BY channel`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []domain.ChannelFact
	for rows.Next() {
		var f domain.ChannelFact
		if err := rows.Scan(&f.Channel, &f.Subscribed, &f.CheckedAt); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// Top returns users of the season with a positive total ordered by tickets.
func (r *UserRepository) Top(ctx context.Context, seasonID int64, limit int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	q := `SELECT ` + userColumns + `
FROM users
WHERE season_id = $1 AND total_tickets > 0
ORDER BY total_tickets DESC, created_at ASC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, seasonID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Stats aggregates participant counters in one pass. Ticket figures only
// count rows already in the given season.
func (r *UserRepository) Stats(ctx context.Context, seasonID int64) (*domain.Stats, error) {
	const q = `
SELECT
	count(*),
	count(*) FILTER (WHERE activated),
	count(*) FILTER (WHERE season_id = $1 AND all_subscribed AND total_tickets > 0),
	COALESCE(sum(total_tickets) FILTER (WHERE season_id = $1 AND all_subscribed), 0)
FROM users`
	var s domain.Stats
	if err := r.db.QueryRowContext(ctx, q, seasonID).Scan(&s.Registered, &s.Activated, &s.Eligible, &s.TotalTickets); err != nil {
		return nil, err
	}
	return &s, nil
}
