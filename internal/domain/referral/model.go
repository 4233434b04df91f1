package referral

import (
	"context"
	"time"

	"referral-giveaway-bot/internal/domain/user"
)

// Edge is an immutable (referrer, referred) attribution record.
type Edge struct {
	ReferrerID int64     `json:"referrer_id"`
	ReferredID int64     `json:"referred_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ledger is the only source of truth for who invited whom.
type Ledger interface {
	// TryAttribute inserts the edge if absent. When it is newly inserted the
	// referrer row is locked and apply runs on it in the same transaction.
	// An absent referrer aborts the transaction with user.ErrNotFound and the
	// edge is not recorded.
	TryAttribute(ctx context.Context, e Edge, apply user.MutateFunc) (inserted bool, err error)
	CountByReferrer(ctx context.Context, referrerID int64) (int, error)
}
