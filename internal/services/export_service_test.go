package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/repository"
)

type exportFixture struct {
	svc        *ExportService
	users      *repository.UserRepository
	photos     *repository.PhotoRepository
	selections *repository.SelectionRepository
}

func setupExport(t *testing.T) *exportFixture {
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepository(db)
	photos := repository.NewPhotoRepository(db)
	selections := repository.NewSelectionRepository(db)

	return &exportFixture{
		svc:        NewExportService(photos, selections, users),
		users:      users,
		photos:     photos,
		selections: selections,
	}
}

func (f *exportFixture) addUser(t *testing.T, id, email string) {
	user, err := models.NewUser(email, "User "+id, false)
	require.NoError(t, err)
	user.ID = id
	require.NoError(t, f.users.Add(context.Background(), user))
}

func (f *exportFixture) addPhoto(t *testing.T, userID, fileID, name string, status models.SelectionStatus) {
	ctx := context.Background()
	photo, err := models.NewPhoto(userID, fileID, name, "image/jpeg", "folder", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.photos.UpsertBatch(ctx, []*models.Photo{photo}))

	if status != "" {
		sel, err := models.NewSelection(userID, photo.ID, status, 0)
		require.NoError(t, err)
		require.NoError(t, f.selections.Record(ctx, sel))
	}
}

func TestExportService_CopyScript(t *testing.T) {
	ctx := context.Background()

	t.Run("includes only selected photos", func(t *testing.T) {
		f := setupExport(t)
		f.addUser(t, "u1", "client@example.com")
		f.addPhoto(t, "u1", "f1", "IMG_0001.jpg", models.StatusSelected)
		f.addPhoto(t, "u1", "f2", "IMG_0002.jpg", models.StatusSkip)
		f.addPhoto(t, "u1", "f3", "IMG_0003.jpg", models.StatusLater)

		filename, content, err := f.svc.CopyScript(ctx, "u1")
		require.NoError(t, err)

		script := string(content)
		assert.Contains(t, script, "set PREFIX[1]=IMG_0001")
		assert.NotContains(t, script, "IMG_0002")
		assert.NotContains(t, script, "IMG_0003")
		assert.Contains(t, script, "set PREFIX_COUNT=1")
		assert.Equal(t, "copy_selected_with_rsf_client_example.com.bat", filename)
	})

	t.Run("sanitizes awkward filenames and deduplicates prefixes", func(t *testing.T) {
		f := setupExport(t)
		f.addUser(t, "u1", "client@example.com")
		f.addPhoto(t, "u1", "f1", "wedding day (1).jpg", models.StatusSelected)
		f.addPhoto(t, "u1", "f2", "wedding day (1).png", models.StatusSelected)
		f.addPhoto(t, "u1", "f3", "solo.jpg", models.StatusSelected)

		_, content, err := f.svc.CopyScript(ctx, "u1")
		require.NoError(t, err)

		script := string(content)
		assert.Contains(t, script, "set PREFIX_COUNT=2")
		assert.Contains(t, script, "wedding_day__1_")
		assert.NotContains(t, script, "wedding day")
	})

	t.Run("uses CRLF line endings without a BOM", func(t *testing.T) {
		f := setupExport(t)
		f.addUser(t, "u1", "client@example.com")
		f.addPhoto(t, "u1", "f1", "a.jpg", models.StatusSelected)

		_, content, err := f.svc.CopyScript(ctx, "u1")
		require.NoError(t, err)

		script := string(content)
		assert.True(t, strings.HasPrefix(script, "@echo off"))
		assert.Contains(t, script, "\r\n")
		// Every newline is preceded by a carriage return
		assert.NotContains(t, strings.ReplaceAll(script, "\r\n", ""), "\n")
	})

	t.Run("script copies into the destination folder", func(t *testing.T) {
		f := setupExport(t)
		f.addUser(t, "u1", "client@example.com")
		f.addPhoto(t, "u1", "f1", "a.jpg", models.StatusSelected)

		_, content, err := f.svc.CopyScript(ctx, "u1")
		require.NoError(t, err)

		script := string(content)
		assert.Contains(t, script, `set "DEST=%SOURCE%\SELECTED_WITH_RSF"`)
		assert.Contains(t, script, `findstr /V /I "\SELECTED_WITH_RSF\"`)
	})

	t.Run("no selected photos is an error", func(t *testing.T) {
		f := setupExport(t)
		f.addUser(t, "u1", "client@example.com")
		f.addPhoto(t, "u1", "f1", "a.jpg", models.StatusSkip)

		_, _, err := f.svc.CopyScript(ctx, "u1")
		assert.ErrorIs(t, err, ErrNoSelectedPhotos)
	})

	t.Run("unknown user is an error", func(t *testing.T) {
		f := setupExport(t)

		_, _, err := f.svc.CopyScript(ctx, "ghost")
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}
