package repository

import (
	"context"
	"database/sql"

	"github.com/easygallery/server/internal/models"
)

// SyncJobRepository handles sync job persistence
type SyncJobRepository struct {
	db *sql.DB
}

// NewSyncJobRepository creates a new SyncJobRepository
func NewSyncJobRepository(db *sql.DB) *SyncJobRepository {
	return &SyncJobRepository{db: db}
}

const syncJobColumns = `id, user_id, folder_id, status, processed, total, percent, started_at, finished_at, last_error`

// GetByID retrieves a sync job by its ID
func (r *SyncJobRepository) GetByID(ctx context.Context, id string) (*models.SyncJob, error) {
	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE id = $1`
	return scanSyncJob(r.db.QueryRowContext(ctx, query, id))
}

// GetLatestForUser retrieves the most recently started job for a user
func (r *SyncJobRepository) GetLatestForUser(ctx context.Context, userID string) (*models.SyncJob, error) {
	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE user_id = $1
			  ORDER BY started_at DESC LIMIT 1`
	return scanSyncJob(r.db.QueryRowContext(ctx, query, userID))
}

// Add inserts a new sync job
func (r *SyncJobRepository) Add(ctx context.Context, job *models.SyncJob) error {
	query := `INSERT INTO sync_jobs (` + syncJobColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.UserID, job.FolderID, string(job.State),
		job.Processed, job.Total, job.Percent,
		job.StartedAt, job.FinishedAt, job.LastError,
	)
	return err
}

// Update saves the current counters and state of a job
func (r *SyncJobRepository) Update(ctx context.Context, job *models.SyncJob) error {
	query := `UPDATE sync_jobs SET status = $1, processed = $2, total = $3,
			  percent = $4, finished_at = $5, last_error = $6
			  WHERE id = $7`

	_, err := r.db.ExecContext(ctx, query,
		string(job.State),
		job.Processed, job.Total, job.Percent,
		job.FinishedAt, job.LastError, job.ID,
	)
	return err
}

func scanSyncJob(row *sql.Row) (*models.SyncJob, error) {
	var job models.SyncJob
	err := row.Scan(
		&job.ID, &job.UserID, &job.FolderID, &job.State,
		&job.Processed, &job.Total, &job.Percent,
		&job.StartedAt, &job.FinishedAt, &job.LastError,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &job, nil
}
