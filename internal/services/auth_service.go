package services

import (
	"context"
	"time"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/observability"
	"github.com/easygallery/server/internal/repository"
)

// AuthService handles login, logout and session validation
type AuthService struct {
	userRepo     repository.UserRepo
	sessionRepo  repository.WebSessionRepo
	activityRepo repository.ActivityLogRepo
	metrics      *observability.BusinessMetrics
	sessionTTL   time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepo,
	sessionRepo repository.WebSessionRepo,
	activityRepo repository.ActivityLogRepo,
	sessionTTL time.Duration,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		sessionTTL:   sessionTTL,
	}
}

// SetMetrics sets the business metrics instruments
func (s *AuthService) SetMetrics(metrics *observability.BusinessMetrics) {
	s.metrics = metrics
}

// Login verifies credentials and opens a session. Unknown emails and
// wrong passwords both come back as models.ErrInvalidPassword so the
// response does not leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*models.User, *models.WebSession, error) {
	ctx, span := observability.StartServiceSpan(ctx, "auth", "Login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		observability.RecordError(span, err)
		return nil, nil, err
	}
	if user == nil || !user.IsActive || !user.VerifyPassword(password) {
		if s.metrics != nil {
			s.metrics.RecordAuthAttempt(ctx, "password", false)
		}
		return nil, nil, models.ErrInvalidPassword
	}

	session, err := models.NewWebSession(user.ID, ipAddress, userAgent, s.sessionTTL)
	if err != nil {
		observability.RecordError(span, err)
		return nil, nil, err
	}
	if err := s.sessionRepo.Add(ctx, session); err != nil {
		observability.RecordError(span, err)
		return nil, nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordAuthAttempt(ctx, "password", true)
	}
	if s.activityRepo != nil {
		entry := models.NewActivityLog(models.ActionLogin, user.ID, nil)
		if err := s.activityRepo.Add(ctx, entry); err != nil {
			observability.Warnf("Failed to write login activity: %v", err)
		}
	}

	observability.SetSuccess(span)
	return user, session, nil
}

// Logout deactivates a session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessionRepo.Deactivate(ctx, sessionID)
}

// ValidateSession resolves a session token to its user. Expired or
// inactive sessions come back as (nil, nil, nil).
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, *models.WebSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || session.IsExpired() {
		return nil, nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil, nil
	}

	if err := s.sessionRepo.Touch(ctx, session.ID, time.Now().UTC()); err != nil {
		observability.Debugf("Failed to touch session: %v", err)
	}

	return user, session, nil
}

// VerifyPassword re-proves a user's password for destructive admin
// operations such as resetting a client's selections.
func (s *AuthService) VerifyPassword(ctx context.Context, userID, password string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, models.ErrUserNotFound
	}
	return user.VerifyPassword(password), nil
}

// CleanupExpiredSessions removes sessions past their expiry
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	return s.sessionRepo.DeleteExpired(ctx, time.Now().UTC())
}

// SessionTTL returns the configured session lifetime
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}
