package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/models"
)

func TestPhotoRepository_UpsertBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("inserting the same batch twice leaves one row per file", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)

		batch := make([]*models.Photo, 0, 3)
		for _, fileID := range []string{"f1", "f2", "f3"} {
			photo, err := models.NewPhoto("u1", fileID, fileID+".jpg", "image/jpeg", "folder-1", time.Now())
			require.NoError(t, err)
			batch = append(batch, photo)
		}

		require.NoError(t, db.photos.UpsertBatch(ctx, batch))
		require.NoError(t, db.photos.UpsertBatch(ctx, batch))

		count, err := db.photos.CountForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("conflicting rows refresh mutable columns", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)

		photo, err := models.NewPhoto("u1", "f1", "old-name.jpg", "image/jpeg", "folder-1", time.Now())
		require.NoError(t, err)
		require.NoError(t, db.photos.UpsertBatch(ctx, []*models.Photo{photo}))

		renamed, err := models.NewPhoto("u1", "f1", "new-name.jpg", "image/jpeg", "folder-2", time.Now())
		require.NoError(t, err)
		require.NoError(t, db.photos.UpsertBatch(ctx, []*models.Photo{renamed}))

		got, err := db.photos.GetByID(ctx, photo.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "new-name.jpg", got.Name)
		assert.Equal(t, "folder-2", got.FolderID)
	})

	t.Run("same file under two users stays separate", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)
		db.addUser(t, "u2", nil)

		for _, userID := range []string{"u1", "u2"} {
			photo, err := models.NewPhoto(userID, "shared", "shared.jpg", "image/jpeg", "folder-1", time.Now())
			require.NoError(t, err)
			require.NoError(t, db.photos.UpsertBatch(ctx, []*models.Photo{photo}))
		}

		c1, err := db.photos.CountForUser(ctx, "u1")
		require.NoError(t, err)
		c2, err := db.photos.CountForUser(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, 1, c1)
		assert.Equal(t, 1, c2)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		assert.NoError(t, db.photos.UpsertBatch(ctx, nil))
	})
}

func TestPhotoRepository_GetAllForUser(t *testing.T) {
	ctx := context.Background()

	db := setupTestDB(t)
	db.addUser(t, "u1", nil)

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		photo, err := models.NewPhoto("u1", "id-"+name, name+".jpg", "image/jpeg", "folder-1", time.Now())
		require.NoError(t, err)
		require.NoError(t, db.photos.UpsertBatch(ctx, []*models.Photo{photo}))
	}

	photos, err := db.photos.GetAllForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, "alpha.jpg", photos[0].Name)
	assert.Equal(t, "bravo.jpg", photos[1].Name)
	assert.Equal(t, "charlie.jpg", photos[2].Name)
}

func TestPhotoRepository_DeleteAllForUser(t *testing.T) {
	ctx := context.Background()

	db := setupTestDB(t)
	db.addUser(t, "u1", nil)
	db.addPhoto(t, "u1", "f1")
	db.addPhoto(t, "u1", "f2")

	deleted, err := db.photos.DeleteAllForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	count, err := db.photos.CountForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
