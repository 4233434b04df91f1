package drawing

import (
	"context"
	"time"
)

// Entrant is an eligible participant with its pool weight.
type Entrant struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Tickets     int    `json:"tickets"`
}

// Winner is an append-only history row, one per drawing win.
type Winner struct {
	ID          int64     `json:"id"`
	DrawingID   string    `json:"drawing_id"`
	Place       int       `json:"place"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Prize       string    `json:"prize"`
	Tickets     int       `json:"tickets"`
	WonAt       time.Time `json:"won_at"`
}

// Repository defines persistence operations for drawings.
type Repository interface {
	// ListEligible returns users of seasonID subscribed to every sponsor with
	// a positive total.
	ListEligible(ctx context.Context, seasonID int64) ([]Entrant, error)
	// RecordWinners appends all rows of one drawing atomically.
	RecordWinners(ctx context.Context, winners []Winner) error
	ListWinners(ctx context.Context, limit int) ([]Winner, error)
}
