package postgres

import (
	"context"
	"database/sql"

	"referral-giveaway-bot/internal/domain/drawing"
)

// WinnerRepository reads the drawing pool and appends winner history.
type WinnerRepository struct {
	db *sql.DB
}

func NewWinnerRepository(db *sql.DB) *WinnerRepository { return &WinnerRepository{db: db} }

var _ drawing.Repository = (*WinnerRepository)(nil)

// ListEligible returns users of the season subscribed to every sponsor with
// tickets. Rows not yet rolled out of an older season carry stale totals.
func (r *WinnerRepository) ListEligible(ctx context.Context, seasonID int64) ([]drawing.Entrant, error) {
	const q = `
SELECT id, display_name, total_tickets
FROM users
WHERE season_id = $1 AND all_subscribed AND total_tickets > 0
ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []drawing.Entrant
	for rows.Next() {
		var e drawing.Entrant
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Tickets); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordWinners inserts all winners of a drawing in one transaction.
func (r *WinnerRepository) RecordWinners(ctx context.Context, winners []drawing.Winner) error {
	if len(winners) == 0 {
		return nil
	}
	const q = `
INSERT INTO winners (drawing_id, place, user_id, display_name, prize, tickets, won_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for i := range winners {
			w := &winners[i]
			if err := tx.QueryRowContext(ctx, q, w.DrawingID, w.Place, w.UserID, w.DisplayName, w.Prize, w.Tickets, w.WonAt).Scan(&w.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListWinners returns the most recent winner rows first.
func (r *WinnerRepository) ListWinners(ctx context.Context, limit int) ([]drawing.Winner, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	const q = `
SELECT id, drawing_id, place, user_id, display_name, prize, tickets, won_at
FROM winners
ORDER BY won_at DESC, place ASC
LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []drawing.Winner
	for rows.Next() {
		var w drawing.Winner
		if err := rows.Scan(&w.ID, &w.DrawingID, &w.Place, &w.UserID, &w.DisplayName, &w.Prize, &w.Tickets, &w.WonAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
