package services

import (
	"context"
	"time"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/observability"
	"github.com/easygallery/server/internal/repository"
)

// UserService handles client profile management
type UserService struct {
	userRepo     repository.UserRepo
	activityRepo repository.ActivityLogRepo
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepo, activityRepo repository.ActivityLogRepo) *UserService {
	return &UserService{userRepo: userRepo, activityRepo: activityRepo}
}

// Create builds and stores a new client profile
func (s *UserService) Create(ctx context.Context, email, displayName, password string, isAdmin bool, driveFolderLink string, selectionLimit *int) (*models.User, error) {
	ctx, span := observability.StartServiceSpan(ctx, "user", "Create")
	defer span.End()

	user, err := models.NewUser(email, displayName, isAdmin)
	if err != nil {
		return nil, err
	}
	if password != "" {
		if err := user.SetPassword(password); err != nil {
			return nil, err
		}
	}
	user.DriveFolderLink = driveFolderLink
	user.DriveFolderID = models.ParseFolderID(driveFolderLink)
	user.SelectionLimit = selectionLimit

	if err := s.userRepo.Add(ctx, user); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.logActivity(ctx, models.ActionUserCreated, user.ID, map[string]interface{}{
		"email": user.Email,
	})

	observability.SetSuccess(span)
	return user, nil
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns all users
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.GetAll(ctx)
}

// UpdateFields applies the non-nil fields of the request to the user
type UpdateFields struct {
	DisplayName     *string
	Password        *string
	DriveFolderLink *string
	SelectionLimit  *int
	ClearLimit      bool
	IsActive        *bool
}

// Update applies profile changes
func (s *UserService) Update(ctx context.Context, id string, fields UpdateFields) (*models.User, error) {
	ctx, span := observability.StartServiceSpan(ctx, "user", "Update")
	defer span.End()
	span.SetAttributes(observability.UserID(id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	if fields.DisplayName != nil {
		user.DisplayName = *fields.DisplayName
	}
	if fields.Password != nil {
		if err := user.SetPassword(*fields.Password); err != nil {
			return nil, err
		}
	}
	if fields.DriveFolderLink != nil {
		user.DriveFolderLink = *fields.DriveFolderLink
		user.DriveFolderID = models.ParseFolderID(*fields.DriveFolderLink)
	}
	if fields.ClearLimit {
		user.SelectionLimit = nil
	} else if fields.SelectionLimit != nil {
		user.SelectionLimit = fields.SelectionLimit
	}
	if fields.IsActive != nil {
		user.IsActive = *fields.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSuccess(span)
	return user, nil
}

// Delete removes a user and, through cascades, their photos, selections
// and sessions.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx, span := observability.StartServiceSpan(ctx, "user", "Delete")
	defer span.End()
	span.SetAttributes(observability.UserID(id))

	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	if !deleted {
		return models.ErrUserNotFound
	}

	s.logActivity(ctx, models.ActionUserDeleted, id, nil)
	observability.SetSuccess(span)
	return nil
}

func (s *UserService) logActivity(ctx context.Context, action, userID string, details map[string]interface{}) {
	if s.activityRepo == nil {
		return
	}
	if err := s.activityRepo.Add(ctx, models.NewActivityLog(action, userID, details)); err != nil {
		observability.Warnf("Failed to write activity log: %v", err)
	}
}
