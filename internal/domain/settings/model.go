package settings

import "context"

// KeyGiveawayActive holds the global switch gating new entries and spins.
const KeyGiveawayActive = "giveaway_active"

// Repository stores persisted key/value configuration.
type Repository interface {
	// GetBool returns def when the key was never set.
	GetBool(ctx context.Context, key string, def bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}
