package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/easygallery/server/internal/models"
)

// SelectionRepository handles the per-user selection ledger
type SelectionRepository struct {
	db *sql.DB
}

// NewSelectionRepository creates a new SelectionRepository
func NewSelectionRepository(db *sql.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

const selectionColumns = `user_id, photo_id, status, last_viewed_index, finalized, created_at, updated_at`

// Get retrieves the ledger entry for one (user, photo) pair
func (r *SelectionRepository) Get(ctx context.Context, userID, photoID string) (*models.Selection, error) {
	query := `SELECT ` + selectionColumns + ` FROM selections WHERE user_id = $1 AND photo_id = $2`

	var sel models.Selection
	err := r.db.QueryRowContext(ctx, query, userID, photoID).Scan(
		&sel.UserID, &sel.PhotoID, &sel.Status, &sel.LastViewedIndex,
		&sel.Finalized, &sel.CreatedAt, &sel.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &sel, nil
}

// GetAllForUser retrieves all ledger entries for a user
func (r *SelectionRepository) GetAllForUser(ctx context.Context, userID string) ([]*models.Selection, error) {
	query := `SELECT ` + selectionColumns + ` FROM selections WHERE user_id = $1 ORDER BY updated_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sels []*models.Selection
	for rows.Next() {
		var sel models.Selection
		if err := rows.Scan(
			&sel.UserID, &sel.PhotoID, &sel.Status, &sel.LastViewedIndex,
			&sel.Finalized, &sel.CreatedAt, &sel.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sels = append(sels, &sel)
	}
	return sels, rows.Err()
}

// CountByStatus returns how many of a user's entries carry the given status
func (r *SelectionRepository) CountByStatus(ctx context.Context, userID string, status models.SelectionStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM selections WHERE user_id = $1 AND status = $2`,
		userID, string(status)).Scan(&count)
	return count, err
}

// Record writes one ledger entry. The lock flags and the quota are
// checked against the users table inside the same transaction as the
// write, so concurrent requests cannot slip past the limit. Returns
// models.ErrSelectionLocked, models.ErrQuotaExceeded or
// models.ErrUserNotFound as appropriate.
func (r *SelectionRepository) Record(ctx context.Context, sel *models.Selection) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var finalized, locked bool
	var limit *int
	err = tx.QueryRowContext(ctx,
		`SELECT selection_finalized, selection_locked, selection_limit FROM users WHERE id = $1`,
		sel.UserID).Scan(&finalized, &locked, &limit)
	if err == sql.ErrNoRows {
		return models.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if finalized || locked {
		return models.ErrSelectionLocked
	}

	// Re-marking an already selected photo never trips the quota, so the
	// current entry is excluded from the count.
	if sel.Status == models.StatusSelected && limit != nil {
		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM selections WHERE user_id = $1 AND status = $2 AND photo_id <> $3`,
			sel.UserID, string(models.StatusSelected), sel.PhotoID).Scan(&count)
		if err != nil {
			return err
		}
		if count >= *limit {
			return models.ErrQuotaExceeded
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO selections (`+selectionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT(user_id, photo_id) DO UPDATE SET
			status = excluded.status,
			last_viewed_index = excluded.last_viewed_index,
			updated_at = excluded.updated_at`,
		sel.UserID, sel.PhotoID, string(sel.Status), sel.LastViewedIndex,
		sel.Finalized, sel.CreatedAt, sel.UpdatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO resume_points (user_id, last_index, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT(user_id) DO UPDATE SET
			last_index = excluded.last_index,
			updated_at = excluded.updated_at`,
		sel.UserID, sel.LastViewedIndex, sel.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// FinalizeAll marks every ledger entry finalized and flips the user's
// finalize and lock flags in one transaction. Returns the number of
// entries finalized.
func (r *SelectionRepository) FinalizeAll(ctx context.Context, userID string, at time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE selections SET finalized = true, updated_at = $1 WHERE user_id = $2`,
		at, userID)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	userResult, err := tx.ExecContext(ctx,
		`UPDATE users SET selection_finalized = true, selection_locked = true,
		 finalized_at = $1, updated_at = $2 WHERE id = $3`,
		at, at, userID)
	if err != nil {
		return 0, err
	}
	userRows, err := userResult.RowsAffected()
	if err != nil {
		return 0, err
	}
	if userRows == 0 {
		return 0, models.ErrUserNotFound
	}

	return int(rows), tx.Commit()
}

// DeleteAllForUser clears a user's ledger and resume pointer in one
// transaction. The caller decides whether to also reopen the selection.
func (r *SelectionRepository) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM resume_points WHERE user_id = $1`, userID); err != nil {
		return 0, err
	}

	return int(rows), tx.Commit()
}

// GetResume retrieves a user's resume pointer
func (r *SelectionRepository) GetResume(ctx context.Context, userID string) (*models.ResumePointer, error) {
	var rp models.ResumePointer
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, last_index, updated_at FROM resume_points WHERE user_id = $1`,
		userID).Scan(&rp.UserID, &rp.LastIndex, &rp.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rp, nil
}

// SetResume stores a user's resume pointer
func (r *SelectionRepository) SetResume(ctx context.Context, userID string, lastIndex int) error {
	if lastIndex < 0 {
		lastIndex = 0
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO resume_points (user_id, last_index, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT(user_id) DO UPDATE SET
			last_index = excluded.last_index,
			updated_at = excluded.updated_at`,
		userID, lastIndex, time.Now().UTC())
	return err
}
