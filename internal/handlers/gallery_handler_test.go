package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/middleware"
	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/repository"
	"github.com/easygallery/server/internal/services"
)

type galleryFixture struct {
	handler *GalleryHandler
	svc     *services.SelectionService
	user    *models.User
}

func setupGallery(t *testing.T) *galleryFixture {
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepository(db)
	photos := repository.NewPhotoRepository(db)
	selections := repository.NewSelectionRepository(db)
	feedback := repository.NewFeedbackRepository(db)
	sessions := repository.NewWebSessionRepository(db)
	activity := repository.NewActivityLogRepository(db)

	selectionService := services.NewSelectionService(selections, photos, users, feedback, activity)
	authService := services.NewAuthService(users, sessions, activity, time.Hour)

	ctx := context.Background()
	user, err := models.NewUser("client@example.com", "Client", false)
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("correct-horse"))
	require.NoError(t, users.Add(ctx, user))

	photo, err := models.NewPhoto(user.ID, "f1", "f1.jpg", "image/jpeg", "folder", time.Now())
	require.NoError(t, err)
	require.NoError(t, photos.UpsertBatch(ctx, []*models.Photo{photo}))
	_, err = selectionService.SetStatus(ctx, user.ID, photo.ID, models.StatusSelected, 0)
	require.NoError(t, err)

	return &galleryFixture{
		handler: NewGalleryHandler(photos, selectionService, feedback, authService),
		svc:     selectionService,
		user:    user,
	}
}

func (f *galleryFixture) postReset(t *testing.T, password string) *httptest.ResponseRecorder {
	body, err := json.Marshal(models.ResetSelectionsRequest{Password: password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/gallery/reset", bytes.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, f.user))

	rec := httptest.NewRecorder()
	f.handler.ResetOwn(rec, req)
	return rec
}

func TestGalleryHandler_ResetOwn(t *testing.T) {
	ctx := context.Background()

	t.Run("correct password wipes the caller's own ledger", func(t *testing.T) {
		f := setupGallery(t)

		rec := f.postReset(t, "correct-horse")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["ok"])
		assert.Equal(t, float64(1), resp["removed"])

		sels, err := f.svc.ListForUser(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Empty(t, sels)
	})

	t.Run("wrong password is rejected and the ledger survives", func(t *testing.T) {
		f := setupGallery(t)

		rec := f.postReset(t, "battery-staple")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		sels, err := f.svc.ListForUser(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Len(t, sels, 1)
	})

	t.Run("no session yields unauthorized", func(t *testing.T) {
		f := setupGallery(t)

		body, err := json.Marshal(models.ResetSelectionsRequest{Password: "correct-horse"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/gallery/reset", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		f.handler.ResetOwn(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
