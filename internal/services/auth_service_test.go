package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/repository"
)

func setupAuth(t *testing.T) (*AuthService, *repository.UserRepository) {
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepository(db)
	sessions := repository.NewWebSessionRepository(db)
	activity := repository.NewActivityLogRepository(db)

	return NewAuthService(users, sessions, activity, time.Hour), users
}

func addAuthUser(t *testing.T, users *repository.UserRepository, email, password string) *models.User {
	user, err := models.NewUser(email, "Test User", false)
	require.NoError(t, err)
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, users.Add(context.Background(), user))
	return user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials open a session", func(t *testing.T) {
		svc, users := setupAuth(t)
		addAuthUser(t, users, "client@example.com", "correct-horse")

		user, session, err := svc.Login(ctx, "client@example.com", "correct-horse", "127.0.0.1", "test-agent")
		require.NoError(t, err)
		assert.Equal(t, "client@example.com", user.Email)
		assert.NotEmpty(t, session.ID)
		assert.False(t, session.IsExpired())

		validated, _, err := svc.ValidateSession(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, validated)
		assert.Equal(t, user.ID, validated.ID)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		svc, users := setupAuth(t)
		addAuthUser(t, users, "client@example.com", "correct-horse")

		_, _, errWrong := svc.Login(ctx, "client@example.com", "battery-staple", "", "")
		_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "whatever", "", "")

		assert.ErrorIs(t, errWrong, models.ErrInvalidPassword)
		assert.ErrorIs(t, errUnknown, models.ErrInvalidPassword)
	})

	t.Run("inactive accounts cannot log in", func(t *testing.T) {
		svc, users := setupAuth(t)
		user := addAuthUser(t, users, "client@example.com", "correct-horse")
		user.IsActive = false
		require.NoError(t, users.Update(ctx, user))

		_, _, err := svc.Login(ctx, "client@example.com", "correct-horse", "", "")
		assert.ErrorIs(t, err, models.ErrInvalidPassword)
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		svc, users := setupAuth(t)
		addAuthUser(t, users, "client@example.com", "correct-horse")

		_, session, err := svc.Login(ctx, "client@example.com", "correct-horse", "", "")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, session.ID))

		validated, _, err := svc.ValidateSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Nil(t, validated)
	})

	t.Run("password re-proof for destructive actions", func(t *testing.T) {
		svc, users := setupAuth(t)
		user := addAuthUser(t, users, "admin@example.com", "correct-horse")

		ok, err := svc.VerifyPassword(ctx, user.ID, "correct-horse")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.VerifyPassword(ctx, user.ID, "wrong")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
