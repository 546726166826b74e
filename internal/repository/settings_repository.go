package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// SettingsRepository stores settings documents as JSON under a fixed key
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get unmarshals the document stored under key into out. Returns false
// when no document exists, letting the caller fall back to defaults.
func (r *SettingsRepository) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, err
	}
	return true, nil
}

// Set marshals and stores a document under key, replacing any previous one
func (r *SettingsRepository) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC())
	return err
}
