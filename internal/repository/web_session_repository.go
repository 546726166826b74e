package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/easygallery/server/internal/models"
)

// WebSessionRepository handles web session persistence
type WebSessionRepository struct {
	db *sql.DB
}

// NewWebSessionRepository creates a new WebSessionRepository
func NewWebSessionRepository(db *sql.DB) *WebSessionRepository {
	return &WebSessionRepository{db: db}
}

// GetByID retrieves an active session by its token id
func (r *WebSessionRepository) GetByID(ctx context.Context, id string) (*models.WebSession, error) {
	query := `SELECT id, user_id, created_at, expires_at, last_activity_at, ip_address, user_agent, is_active
			  FROM web_sessions WHERE id = $1 AND is_active = true`

	var session models.WebSession
	var ip, ua sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt,
		&session.LastActivityAt, &ip, &ua, &session.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session.IPAddress = ip.String
	session.UserAgent = ua.String
	return &session, nil
}

// Add inserts a new session
func (r *WebSessionRepository) Add(ctx context.Context, session *models.WebSession) error {
	query := `INSERT INTO web_sessions (id, user_id, created_at, expires_at, last_activity_at, ip_address, user_agent, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt,
		session.LastActivityAt, session.IPAddress, session.UserAgent, session.IsActive,
	)
	return err
}

// Touch updates the last activity timestamp
func (r *WebSessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE web_sessions SET last_activity_at = $1 WHERE id = $2`, at, id)
	return err
}

// Deactivate marks a session inactive (logout)
func (r *WebSessionRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE web_sessions SET is_active = false WHERE id = $1`, id)
	return err
}

// DeleteExpired removes sessions that expired before the given time
func (r *WebSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM web_sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	return int(rows), err
}
