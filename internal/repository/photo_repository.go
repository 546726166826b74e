package repository

import (
	"context"
	"database/sql"

	"github.com/easygallery/server/internal/models"
)

// PhotoRepository handles photo persistence
type PhotoRepository struct {
	db *sql.DB
}

// NewPhotoRepository creates a new PhotoRepository
func NewPhotoRepository(db *sql.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

const photoColumns = `id, user_id, drive_file_id, name, mime_type, folder_id,
			thumb_url, full_url, created_at, updated_at`

// GetByID retrieves a photo by its ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

	var photo models.Photo
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&photo.ID, &photo.UserID, &photo.DriveFileID, &photo.Name,
		&photo.MimeType, &photo.FolderID, &photo.ThumbURL, &photo.FullURL,
		&photo.CreatedAt, &photo.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &photo, nil
}

// GetAllForUser retrieves a user's photos ordered by name
func (r *PhotoRepository) GetAllForUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE user_id = $1 ORDER BY name, drive_file_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		var photo models.Photo
		if err := rows.Scan(
			&photo.ID, &photo.UserID, &photo.DriveFileID, &photo.Name,
			&photo.MimeType, &photo.FolderID, &photo.ThumbURL, &photo.FullURL,
			&photo.CreatedAt, &photo.UpdatedAt,
		); err != nil {
			return nil, err
		}
		photos = append(photos, &photo)
	}
	return photos, rows.Err()
}

// CountForUser returns the number of photos mirrored for a user
func (r *PhotoRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// UpsertBatch inserts or refreshes a batch of photos in one transaction.
// Conflicts on (user_id, drive_file_id) update the mutable columns and
// keep the original created_at, so re-running a sync converges.
func (r *PhotoRepository) UpsertBatch(ctx context.Context, photos []*models.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO photos (` + photoColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT(user_id, drive_file_id) DO UPDATE SET
				name = excluded.name,
				mime_type = excluded.mime_type,
				folder_id = excluded.folder_id,
				thumb_url = excluded.thumb_url,
				full_url = excluded.full_url,
				updated_at = excluded.updated_at`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, photo := range photos {
		if _, err := stmt.ExecContext(ctx,
			photo.ID, photo.UserID, photo.DriveFileID, photo.Name,
			photo.MimeType, photo.FolderID, photo.ThumbURL, photo.FullURL,
			photo.CreatedAt, photo.UpdatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteAllForUser removes all photos mirrored for a user
func (r *PhotoRepository) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	return int(rows), err
}
