package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"referral-giveaway-bot/internal/domain/settings"
)

// SettingsRepository persists key/value switches.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository { return &SettingsRepository{db: db} }

var _ settings.Repository = (*SettingsRepository)(nil)

func (r *SettingsRepository) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=$1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return def, nil
		}
		return def, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def, err
	}
	return b, nil
}

func (r *SettingsRepository) SetBool(ctx context.Context, key string, value bool) error {
	const q = `
INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := r.db.ExecContext(ctx, q, key, strconv.FormatBool(value))
	return err
}
