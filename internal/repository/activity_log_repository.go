package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/easygallery/server/internal/models"
)

// ActivityLogRepository handles audit log persistence
type ActivityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *sql.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Add inserts an audit entry
func (r *ActivityLogRepository) Add(ctx context.Context, entry *models.ActivityLog) error {
	query := `INSERT INTO activity_logs (id, action, user_id, details, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Action, entry.UserID, entry.DetailsJSON(), entry.CreatedAt)
	return err
}

// GetRecent retrieves the newest audit entries across all users
func (r *ActivityLogRepository) GetRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	query := `SELECT id, action, user_id, details, created_at FROM activity_logs
			  ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLogs(rows)
}

// GetForUser retrieves the newest audit entries for one user
func (r *ActivityLogRepository) GetForUser(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error) {
	query := `SELECT id, action, user_id, details, created_at FROM activity_logs
			  WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLogs(rows)
}

func collectLogs(rows *sql.Rows) ([]*models.ActivityLog, error) {
	var entries []*models.ActivityLog
	for rows.Next() {
		var entry models.ActivityLog
		var userID sql.NullString
		var details string
		if err := rows.Scan(&entry.ID, &entry.Action, &userID, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.UserID = userID.String
		if details != "" && details != "{}" {
			// Unreadable details are kept as nil rather than failing the listing
			_ = json.Unmarshal([]byte(details), &entry.Details)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
