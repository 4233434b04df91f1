package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by mutating repository calls when the user row is absent.
var ErrNotFound = errors.New("user not found")

// MutateFunc changes a row-locked user in place. Returning an error aborts the
// transaction and nothing is written.
type MutateFunc func(u *User) error

// Repository defines persistence operations for the User aggregate.
// Every method taking a MutateFunc runs it while holding the user's row lock
// and writes the result back in the same transaction.
type Repository interface {
	// Upsert creates the user or refreshes display name and last-seen time,
	// then applies fn under the row lock. created reports a first insert.
	Upsert(ctx context.Context, id int64, displayName string, now time.Time, fn MutateFunc) (u *User, created bool, err error)
	// Mutate applies fn to an existing user. Returns ErrNotFound when absent.
	Mutate(ctx context.Context, id int64, fn MutateFunc) (*User, error)
	// SaveSubscriptions stores per-channel facts and applies fn in one transaction.
	SaveSubscriptions(ctx context.Context, id int64, facts []ChannelFact, fn MutateFunc) (*User, error)
	// GetByID returns nil, nil when the user does not exist.
	GetByID(ctx context.Context, id int64) (*User, error)
	ListSubscriptions(ctx context.Context, id int64) ([]ChannelFact, error)
	// Top returns users of the given season ordered by total tickets, ties by
	// earliest registration. Rows left in an earlier season are not ranked.
	Top(ctx context.Context, seasonID int64, limit int) ([]User, error)
	// Stats counts registrations over all time and tickets of seasonID only.
	Stats(ctx context.Context, seasonID int64) (*Stats, error)
}

// Stats is an aggregate snapshot for administrators.
type Stats struct {
	Registered   int `json:"registered"`
	Activated    int `json:"activated"`
	Eligible     int `json:"eligible"`
	TotalTickets int `json:"total_tickets"`
}
