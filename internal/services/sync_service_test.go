package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/drive"
	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/repository"
)

// fakeDrive serves canned folder listings keyed by folder id
type fakeDrive struct {
	folders map[string][]drive.File
	calls   map[string]int
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		folders: make(map[string][]drive.File),
		calls:   make(map[string]int),
	}
}

func (f *fakeDrive) addImage(folderID, fileID, name string) {
	f.folders[folderID] = append(f.folders[folderID], drive.File{
		ID:           fileID,
		Name:         name,
		MimeType:     "image/jpeg",
		ModifiedTime: time.Now(),
	})
}

func (f *fakeDrive) addSubfolder(parentID, folderID string) {
	f.folders[parentID] = append(f.folders[parentID], drive.File{
		ID:       folderID,
		Name:     folderID,
		MimeType: drive.FolderMimeType,
	})
}

func (f *fakeDrive) ListFolder(ctx context.Context, folderID, pageToken string) (*drive.FileList, error) {
	f.calls[folderID]++
	return &drive.FileList{Files: f.folders[folderID]}, nil
}

// flakyPhotoRepo fails a fixed number of batch writes before recovering
type flakyPhotoRepo struct {
	*repository.PhotoRepository
	failures int
}

func (r *flakyPhotoRepo) UpsertBatch(ctx context.Context, photos []*models.Photo) error {
	if r.failures > 0 {
		r.failures--
		return assert.AnError
	}
	return r.PhotoRepository.UpsertBatch(ctx, photos)
}

type syncFixture struct {
	svc    *SyncService
	drive  *fakeDrive
	photos *repository.PhotoRepository
	jobs   *repository.SyncJobRepository
	users  *repository.UserRepository
}

func setupSync(t *testing.T) *syncFixture {
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fd := newFakeDrive()
	photos := repository.NewPhotoRepository(db)
	users := repository.NewUserRepository(db)
	jobs := repository.NewSyncJobRepository(db)
	activity := repository.NewActivityLogRepository(db)

	svc := NewSyncService(fd, photos, users, jobs, activity, 50, 10)

	return &syncFixture{svc: svc, drive: fd, photos: photos, jobs: jobs, users: users}
}

func (f *syncFixture) addUser(t *testing.T, id, folderID string) {
	user, err := models.NewUser(id+"@example.com", "User "+id, false)
	require.NoError(t, err)
	user.ID = id
	user.DriveFolderID = folderID
	require.NoError(t, f.users.Add(context.Background(), user))
}

func TestSyncService_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors a nested folder tree", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "root")
		f.drive.addImage("root", "f1", "a.jpg")
		f.drive.addImage("root", "f2", "b.jpg")
		f.drive.addSubfolder("root", "sub")
		f.drive.addImage("sub", "f3", "c.jpg")

		job, err := f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, models.SyncFinished, job.State)
		assert.Equal(t, 3, job.Processed)
		assert.Equal(t, 100, job.Percent)

		count, err := f.photos.CountForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("running twice leaves the catalog unchanged", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "root")
		f.drive.addImage("root", "f1", "a.jpg")
		f.drive.addImage("root", "f2", "b.jpg")

		_, err := f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)
		_, err = f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)

		count, err := f.photos.CountForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("a folder reachable twice is walked once", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "root")
		f.drive.addSubfolder("root", "shared")
		f.drive.addSubfolder("root", "other")
		f.drive.addSubfolder("other", "shared")
		f.drive.addImage("shared", "f1", "a.jpg")

		job, err := f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, models.SyncFinished, job.State)
		assert.Equal(t, 1, job.Processed)

		count, err := f.photos.CountForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		// One listing per pass: the pre-count walk and the sync walk
		assert.Equal(t, 2, f.drive.calls["shared"])
	})

	t.Run("a cycle in the folder graph terminates", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "root")
		f.drive.addSubfolder("root", "loop")
		f.drive.addSubfolder("loop", "root")
		f.drive.addImage("loop", "f1", "a.jpg")

		job, err := f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, models.SyncFinished, job.State)
		assert.Equal(t, 1, job.Processed)
	})

	t.Run("empty folder finishes at one hundred percent", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "root")

		job, err := f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, models.SyncFinished, job.State)
		assert.Equal(t, 0, job.Processed)
		assert.Equal(t, 100, job.Percent)
	})

	t.Run("renamed file merges into the existing row", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "root")
		f.drive.addImage("root", "f1", "old.jpg")

		_, err := f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)

		f.drive.folders["root"] = nil
		f.drive.addImage("root", "f1", "new.jpg")

		_, err = f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)

		photos, err := f.photos.GetAllForUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, photos, 1)
		assert.Equal(t, "new.jpg", photos[0].Name)
		assert.Equal(t, models.PhotoKey("u1", "f1"), photos[0].ID)
	})

	t.Run("explicit folder id overrides the stored one", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "stored")
		f.drive.addImage("stored", "f1", "a.jpg")
		f.drive.addImage("override", "f2", "b.jpg")

		job, err := f.svc.Sync(ctx, "u1", "override")
		require.NoError(t, err)
		assert.Equal(t, "override", job.FolderID)

		photos, err := f.photos.GetAllForUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, photos, 1)
		assert.Equal(t, "f2", photos[0].DriveFileID)
	})

	t.Run("missing folder id fails the run", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "")

		_, err := f.svc.Sync(ctx, "u1", "")
		assert.ErrorIs(t, err, models.ErrMissingFolderID)
	})

	t.Run("unknown user fails before creating a job", func(t *testing.T) {
		f := setupSync(t)

		_, err := f.svc.Sync(ctx, "ghost", "root")
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("a failed batch write does not abort the walk", func(t *testing.T) {
		db, err := repository.NewSQLiteDB(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		fd := newFakeDrive()
		photos := repository.NewPhotoRepository(db)
		flaky := &flakyPhotoRepo{PhotoRepository: photos, failures: 1}
		users := repository.NewUserRepository(db)
		jobs := repository.NewSyncJobRepository(db)
		activity := repository.NewActivityLogRepository(db)

		// Batch size of one so every file is its own write
		svc := NewSyncService(fd, flaky, users, jobs, activity, 1, 10)

		user, err := models.NewUser("u1@example.com", "User u1", false)
		require.NoError(t, err)
		user.ID = "u1"
		user.DriveFolderID = "root"
		require.NoError(t, users.Add(ctx, user))

		fd.addImage("root", "f1", "a.jpg")
		fd.addImage("root", "f2", "b.jpg")
		fd.addImage("root", "f3", "c.jpg")

		job, err := svc.Sync(ctx, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, models.SyncFinished, job.State)

		// The dropped batch is not counted as synced
		assert.Equal(t, 2, job.Processed)

		count, err := photos.CountForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("job record survives the run", func(t *testing.T) {
		f := setupSync(t)
		f.addUser(t, "u1", "root")
		f.drive.addImage("root", "f1", "a.jpg")

		job, err := f.svc.Sync(ctx, "u1", "")
		require.NoError(t, err)

		stored, err := f.svc.JobStatus(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, models.SyncFinished, stored.State)
		assert.NotNil(t, stored.FinishedAt)

		latest, err := f.svc.LatestJobForUser(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, job.ID, latest.ID)
	})
}
