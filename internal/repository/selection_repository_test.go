package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/models"
)

func setupTestDB(t *testing.T) *testDB {
	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testDB{
		users:      NewUserRepository(db),
		photos:     NewPhotoRepository(db),
		selections: NewSelectionRepository(db),
	}
}

type testDB struct {
	users      *UserRepository
	photos     *PhotoRepository
	selections *SelectionRepository
}

func (d *testDB) addUser(t *testing.T, id string, limit *int) *models.User {
	user, err := models.NewUser(id+"@example.com", "User "+id, false)
	require.NoError(t, err)
	user.ID = id
	user.SelectionLimit = limit
	require.NoError(t, d.users.Add(context.Background(), user))
	return user
}

func (d *testDB) addPhoto(t *testing.T, userID, fileID string) *models.Photo {
	photo, err := models.NewPhoto(userID, fileID, fileID+".jpg", "image/jpeg", "folder-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, d.photos.UpsertBatch(context.Background(), []*models.Photo{photo}))
	return photo
}

func intPtr(n int) *int { return &n }

func TestSelectionRepository_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and updates one row per photo", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)
		photo := db.addPhoto(t, "u1", "f1")

		sel, err := models.NewSelection("u1", photo.ID, models.StatusLater, 3)
		require.NoError(t, err)
		require.NoError(t, db.selections.Record(ctx, sel))

		sel2, err := models.NewSelection("u1", photo.ID, models.StatusSelected, 3)
		require.NoError(t, err)
		require.NoError(t, db.selections.Record(ctx, sel2))

		got, err := db.selections.Get(ctx, "u1", photo.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StatusSelected, got.Status)

		all, err := db.selections.GetAllForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("updates the resume pointer with the write", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)
		photo := db.addPhoto(t, "u1", "f1")

		sel, err := models.NewSelection("u1", photo.ID, models.StatusSkip, 42)
		require.NoError(t, err)
		require.NoError(t, db.selections.Record(ctx, sel))

		rp, err := db.selections.GetResume(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, rp)
		assert.Equal(t, 42, rp.LastIndex)
	})

	t.Run("rejects the write past the selection limit", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", intPtr(2))
		p1 := db.addPhoto(t, "u1", "f1")
		p2 := db.addPhoto(t, "u1", "f2")
		p3 := db.addPhoto(t, "u1", "f3")

		for _, p := range []*models.Photo{p1, p2} {
			sel, err := models.NewSelection("u1", p.ID, models.StatusSelected, 0)
			require.NoError(t, err)
			require.NoError(t, db.selections.Record(ctx, sel))
		}

		sel, err := models.NewSelection("u1", p3.ID, models.StatusSelected, 0)
		require.NoError(t, err)
		err = db.selections.Record(ctx, sel)
		assert.ErrorIs(t, err, models.ErrQuotaExceeded)

		// The rejected write leaves no trace
		got, err := db.selections.Get(ctx, "u1", p3.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("re-marking a selected photo does not trip the limit", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", intPtr(1))
		photo := db.addPhoto(t, "u1", "f1")

		sel, err := models.NewSelection("u1", photo.ID, models.StatusSelected, 0)
		require.NoError(t, err)
		require.NoError(t, db.selections.Record(ctx, sel))
		require.NoError(t, db.selections.Record(ctx, sel))
	})

	t.Run("non-selected statuses ignore the limit", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", intPtr(0))
		photo := db.addPhoto(t, "u1", "f1")

		sel, err := models.NewSelection("u1", photo.ID, models.StatusSkip, 0)
		require.NoError(t, err)
		assert.NoError(t, db.selections.Record(ctx, sel))
	})

	t.Run("rejects writes after finalize", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)
		photo := db.addPhoto(t, "u1", "f1")

		sel, err := models.NewSelection("u1", photo.ID, models.StatusSelected, 0)
		require.NoError(t, err)
		require.NoError(t, db.selections.Record(ctx, sel))

		_, err = db.selections.FinalizeAll(ctx, "u1", time.Now().UTC())
		require.NoError(t, err)

		err = db.selections.Record(ctx, sel)
		assert.ErrorIs(t, err, models.ErrSelectionLocked)
	})

	t.Run("rejects writes for unknown users", func(t *testing.T) {
		db := setupTestDB(t)

		sel, err := models.NewSelection("ghost", "ghost_f1", models.StatusSelected, 0)
		require.NoError(t, err)
		err = db.selections.Record(ctx, sel)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestSelectionRepository_FinalizeAll(t *testing.T) {
	ctx := context.Background()

	t.Run("marks every entry and flips the user flags", func(t *testing.T) {
		db := setupTestDB(t)
		db.addUser(t, "u1", nil)
		p1 := db.addPhoto(t, "u1", "f1")
		p2 := db.addPhoto(t, "u1", "f2")

		for _, p := range []*models.Photo{p1, p2} {
			sel, err := models.NewSelection("u1", p.ID, models.StatusSelected, 0)
			require.NoError(t, err)
			require.NoError(t, db.selections.Record(ctx, sel))
		}

		count, err := db.selections.FinalizeAll(ctx, "u1", time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		user, err := db.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, user.SelectionFinal)
		assert.True(t, user.SelectionLocked)
		require.NotNil(t, user.FinalizedAt)

		all, err := db.selections.GetAllForUser(ctx, "u1")
		require.NoError(t, err)
		for _, sel := range all {
			assert.True(t, sel.Finalized)
		}
	})

	t.Run("fails for unknown users", func(t *testing.T) {
		db := setupTestDB(t)
		_, err := db.selections.FinalizeAll(ctx, "ghost", time.Now().UTC())
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestSelectionRepository_DeleteAllForUser(t *testing.T) {
	ctx := context.Background()

	db := setupTestDB(t)
	db.addUser(t, "u1", nil)
	photo := db.addPhoto(t, "u1", "f1")

	sel, err := models.NewSelection("u1", photo.ID, models.StatusSelected, 7)
	require.NoError(t, err)
	require.NoError(t, db.selections.Record(ctx, sel))

	count, err := db.selections.DeleteAllForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	all, err := db.selections.GetAllForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all)

	rp, err := db.selections.GetResume(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, rp)
}

func TestSelectionRepository_Resume(t *testing.T) {
	ctx := context.Background()

	db := setupTestDB(t)
	db.addUser(t, "u1", nil)

	rp, err := db.selections.GetResume(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, rp)

	require.NoError(t, db.selections.SetResume(ctx, "u1", 10))
	require.NoError(t, db.selections.SetResume(ctx, "u1", -5))

	rp, err = db.selections.GetResume(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, rp)
	assert.Equal(t, 0, rp.LastIndex)
}
