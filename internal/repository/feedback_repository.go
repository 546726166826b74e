package repository

import (
	"context"
	"database/sql"

	"github.com/easygallery/server/internal/models"
)

// FeedbackRepository handles client feedback persistence
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Add inserts a feedback entry
func (r *FeedbackRepository) Add(ctx context.Context, fb *models.Feedback) error {
	query := `INSERT INTO feedback (id, user_id, message, rating, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		fb.ID, fb.UserID, fb.Message, fb.Rating, fb.CreatedAt)
	return err
}

// GetAll retrieves the newest feedback entries
func (r *FeedbackRepository) GetAll(ctx context.Context, limit int) ([]*models.Feedback, error) {
	query := `SELECT id, user_id, message, rating, created_at FROM feedback
			  ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.Feedback
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.Message, &fb.Rating, &fb.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &fb)
	}
	return entries, rows.Err()
}
