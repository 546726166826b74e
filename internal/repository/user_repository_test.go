package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/models"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips a user", func(t *testing.T) {
		db := setupTestDB(t)

		user, err := models.NewUser("Client@Example.com", "Client One", false)
		require.NoError(t, err)
		user.DriveFolderLink = "https://drive.google.com/drive/folders/1AbC_d-9xYz"
		user.SelectionLimit = intPtr(40)
		require.NoError(t, db.users.Add(ctx, user))

		got, err := db.users.GetByEmail(ctx, "client@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "client@example.com", got.Email)
		require.NotNil(t, got.SelectionLimit)
		assert.Equal(t, 40, *got.SelectionLimit)
		assert.False(t, got.Locked())
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		db := setupTestDB(t)

		first, err := models.NewUser("dup@example.com", "First", false)
		require.NoError(t, err)
		require.NoError(t, db.users.Add(ctx, first))

		second, err := models.NewUser("dup@example.com", "Second", false)
		require.NoError(t, err)
		err = db.users.Add(ctx, second)
		assert.ErrorIs(t, err, models.ErrEmailExists)
	})

	t.Run("missing users come back nil", func(t *testing.T) {
		db := setupTestDB(t)

		got, err := db.users.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SetSelectionFlags reopens a finalized selection", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)

		now := time.Now().UTC()
		require.NoError(t, db.users.SetSelectionFlags(ctx, "u1", true, true, &now))

		got, err := db.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, got.Locked())

		require.NoError(t, db.users.SetSelectionFlags(ctx, "u1", false, false, nil))

		got, err = db.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, got.Locked())
		assert.Nil(t, got.FinalizedAt)
	})

	t.Run("deleting a user cascades to photos and selections", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)
		photo := db.addPhoto(t, "u1", "f1")

		sel, err := models.NewSelection("u1", photo.ID, models.StatusSelected, 0)
		require.NoError(t, err)
		require.NoError(t, db.selections.Record(ctx, sel))

		deleted, err := db.users.Delete(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, deleted)

		count, err := db.photos.CountForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		sels, err := db.selections.GetAllForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, sels)
	})
}
