package postgres

import (
	"context"
	"database/sql"

	"referral-giveaway-bot/internal/domain/referral"
	domain "referral-giveaway-bot/internal/domain/user"
)

// ReferralRepository is the Postgres-backed referral ledger.
type ReferralRepository struct {
	db *sql.DB
}

func NewReferralRepository(db *sql.DB) *ReferralRepository { return &ReferralRepository{db: db} }

var _ referral.Ledger = (*ReferralRepository)(nil)

// TryAttribute records the edge at most once. The primary key on
// (referrer_id, referred_id) makes a concurrent duplicate wait for the first
// insert and then observe a conflict, so apply runs exactly once per pair.
func (r *ReferralRepository) TryAttribute(ctx context.Context, e referral.Edge, apply domain.MutateFunc) (bool, error) {
	const q = `
INSERT INTO referrals (referrer_id, referred_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING`
	inserted := false
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q, e.ReferrerID, e.ReferredID, e.CreatedAt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := mutateLocked(ctx, tx, e.ReferrerID, apply); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// CountByReferrer returns the number of recorded edges for a referrer.
func (r *ReferralRepository) CountByReferrer(ctx context.Context, referrerID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM referrals WHERE referrer_id=$1`, referrerID).Scan(&n)
	return n, err
}
