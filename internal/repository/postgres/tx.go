package postgres

import (
	"context"
	"database/sql"
	"errors"

	domain "referral-giveaway-bot/internal/domain/user"
)

// withTx runs fn inside a transaction, committing on success and rolling back
// on any error returned by fn.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

const userColumns = `id, display_name, lifetime_referrals, activated, season_id,
	season_referral_tickets, season_bonus_tickets, total_tickets, all_subscribed,
	last_spin_at, last_seen_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u        domain.User
		lastSpin sql.NullTime
	)
	if err := row.Scan(
		&u.ID,
		&u.DisplayName,
		&u.LifetimeReferrals,
		&u.Activated,
		&u.SeasonID,
		&u.SeasonReferralTickets,
		&u.SeasonBonusTickets,
		&u.TotalTickets,
		&u.AllSubscribed,
		&lastSpin,
		&u.LastSeenAt,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if lastSpin.Valid {
		t := lastSpin.Time
		u.LastSpinAt = &t
	}
	return &u, nil
}

// lockUser selects the user row FOR UPDATE; the lock is held until tx ends.
func lockUser(ctx context.Context, tx *sql.Tx, id int64) (*domain.User, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return u, err
}

// saveUser writes back every mutable column of a locked user.
func saveUser(ctx context.Context, tx *sql.Tx, u *domain.User) error {
	const q = `
UPDATE users SET
	lifetime_referrals=$2,
	activated=$3,
	season_id=$4,
	season_referral_tickets=$5,
	season_bonus_tickets=$6,
	total_tickets=$7,
	all_subscribed=$8,
	last_spin_at=$9
WHERE id=$1`
	var lastSpin sql.NullTime
	if u.LastSpinAt != nil {
		lastSpin = sql.NullTime{Time: *u.LastSpinAt, Valid: true}
	}
	_, err := tx.ExecContext(ctx, q,
		u.ID,
		u.LifetimeReferrals,
		u.Activated,
		u.SeasonID,
		u.SeasonReferralTickets,
		u.SeasonBonusTickets,
		u.TotalTickets,
		u.AllSubscribed,
		lastSpin,
	)
	return err
}

// mutateLocked is the shared lock, apply, write-back sequence.
func mutateLocked(ctx context.Context, tx *sql.Tx, id int64, fn domain.MutateFunc) (*domain.User, error) {
	u, err := lockUser(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if fn != nil {
		if err := fn(u); err != nil {
			return nil, err
		}
	}
	if err := saveUser(ctx, tx, u); err != nil {
		return nil, err
	}
	return u, nil
}
