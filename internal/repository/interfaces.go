package repository

import (
	"context"
	"time"

	"github.com/easygallery/server/internal/models"
)

// UserRepo defines the interface for user persistence operations
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Add(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) (bool, error)
	SetSelectionFlags(ctx context.Context, userID string, finalized, locked bool, finalizedAt *time.Time) error
}

// PhotoRepo defines the interface for photo persistence operations
type PhotoRepo interface {
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	GetAllForUser(ctx context.Context, userID string) ([]*models.Photo, error)
	CountForUser(ctx context.Context, userID string) (int, error)
	UpsertBatch(ctx context.Context, photos []*models.Photo) error
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
}

// SelectionRepo defines the interface for selection ledger operations
type SelectionRepo interface {
	Get(ctx context.Context, userID, photoID string) (*models.Selection, error)
	GetAllForUser(ctx context.Context, userID string) ([]*models.Selection, error)
	CountByStatus(ctx context.Context, userID string, status models.SelectionStatus) (int, error)
	Record(ctx context.Context, sel *models.Selection) error
	FinalizeAll(ctx context.Context, userID string, at time.Time) (int, error)
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
	GetResume(ctx context.Context, userID string) (*models.ResumePointer, error)
	SetResume(ctx context.Context, userID string, lastIndex int) error
}

// SyncJobRepo defines the interface for sync job persistence operations
type SyncJobRepo interface {
	GetByID(ctx context.Context, id string) (*models.SyncJob, error)
	GetLatestForUser(ctx context.Context, userID string) (*models.SyncJob, error)
	Add(ctx context.Context, job *models.SyncJob) error
	Update(ctx context.Context, job *models.SyncJob) error
}

// WebSessionRepo defines the interface for web session persistence operations
type WebSessionRepo interface {
	GetByID(ctx context.Context, id string) (*models.WebSession, error)
	Add(ctx context.Context, session *models.WebSession) error
	Touch(ctx context.Context, id string, at time.Time) error
	Deactivate(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// ActivityLogRepo defines the interface for activity log persistence operations
type ActivityLogRepo interface {
	Add(ctx context.Context, entry *models.ActivityLog) error
	GetRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error)
	GetForUser(ctx context.Context, userID string, limit int) ([]*models.ActivityLog, error)
}

// SettingsRepo defines the interface for settings document persistence
type SettingsRepo interface {
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// FeedbackRepo defines the interface for feedback persistence operations
type FeedbackRepo interface {
	Add(ctx context.Context, fb *models.Feedback) error
	GetAll(ctx context.Context, limit int) ([]*models.Feedback, error)
}
