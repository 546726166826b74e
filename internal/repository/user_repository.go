package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/easygallery/server/internal/models"
)

// UserRepository handles user persistence
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, display_name, password_hash, is_admin, selection_limit,
			selection_finalized, selection_locked, finalized_at,
			drive_folder_id, drive_folder_link, created_at, updated_at, is_active`

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by their email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// GetAll retrieves all users ordered by creation time
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Add inserts a new user
func (r *UserRepository) Add(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.DisplayName, user.PasswordHash,
		user.IsAdmin, user.SelectionLimit,
		user.SelectionFinal, user.SelectionLocked, user.FinalizedAt,
		user.DriveFolderID, user.DriveFolderLink,
		user.CreatedAt, user.UpdatedAt, user.IsActive,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return models.ErrEmailExists
	}
	return err
}

// Update saves changes to an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET email = $1, display_name = $2, password_hash = $3,
			  is_admin = $4, selection_limit = $5, selection_finalized = $6,
			  selection_locked = $7, finalized_at = $8, drive_folder_id = $9,
			  drive_folder_link = $10, updated_at = $11, is_active = $12
			  WHERE id = $13`

	result, err := r.db.ExecContext(ctx, query,
		user.Email, user.DisplayName, user.PasswordHash,
		user.IsAdmin, user.SelectionLimit,
		user.SelectionFinal, user.SelectionLocked, user.FinalizedAt,
		user.DriveFolderID, user.DriveFolderLink,
		user.UpdatedAt, user.IsActive, user.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// Delete removes a user; dependent rows cascade
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// SetSelectionFlags updates the finalize and lock flags for a user
func (r *UserRepository) SetSelectionFlags(ctx context.Context, userID string, finalized, locked bool, finalizedAt *time.Time) error {
	query := `UPDATE users SET selection_finalized = $1, selection_locked = $2,
			  finalized_at = $3, updated_at = $4 WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, finalized, locked, finalizedAt, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) scanRow(row rowScanner) (*models.User, error) {
	var user models.User
	var passwordHash sql.NullString
	err := row.Scan(
		&user.ID, &user.Email, &user.DisplayName, &passwordHash,
		&user.IsAdmin, &user.SelectionLimit,
		&user.SelectionFinal, &user.SelectionLocked, &user.FinalizedAt,
		&user.DriveFolderID, &user.DriveFolderLink,
		&user.CreatedAt, &user.UpdatedAt, &user.IsActive,
	)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = passwordHash.String
	return &user, nil
}
