package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/models"
)

func TestSyncJobRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *SyncJobRepository {
		db, err := NewSQLiteDB(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return NewSyncJobRepository(db)
	}

	t.Run("updates land on the job row, not elsewhere", func(t *testing.T) {
		jobs := setup(t)

		job := models.NewSyncJob("u1", "folder-1")
		require.NoError(t, jobs.Add(ctx, job))

		other := models.NewSyncJob("u2", "folder-2")
		require.NoError(t, jobs.Add(ctx, other))

		job.SetProgress(30, 120)
		require.NoError(t, jobs.Update(ctx, job))

		got, err := jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.SyncRunning, got.State)
		assert.Equal(t, 30, got.Processed)
		assert.Equal(t, 120, got.Total)
		assert.Equal(t, 25, got.Percent)

		untouched, err := jobs.GetByID(ctx, other.ID)
		require.NoError(t, err)
		require.NotNil(t, untouched)
		assert.Equal(t, 0, untouched.Processed)
	})

	t.Run("finished state persists after the run", func(t *testing.T) {
		jobs := setup(t)

		job := models.NewSyncJob("u1", "folder-1")
		require.NoError(t, jobs.Add(ctx, job))

		job.SetProgress(7, 7)
		job.Finish(7)
		require.NoError(t, jobs.Update(ctx, job))

		got, err := jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.SyncFinished, got.State)
		assert.Equal(t, 100, got.Percent)
		require.NotNil(t, got.FinishedAt)
	})

	t.Run("failed state carries the error detail", func(t *testing.T) {
		jobs := setup(t)

		job := models.NewSyncJob("u1", "folder-1")
		require.NoError(t, jobs.Add(ctx, job))

		job.Fail(assert.AnError)
		require.NoError(t, jobs.Update(ctx, job))

		got, err := jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.SyncError, got.State)
		assert.Equal(t, assert.AnError.Error(), got.LastError)
	})

	t.Run("latest job wins for a user", func(t *testing.T) {
		jobs := setup(t)

		first := models.NewSyncJob("u1", "folder-1")
		first.StartedAt = time.Now().Add(-time.Hour)
		require.NoError(t, jobs.Add(ctx, first))

		second := models.NewSyncJob("u1", "folder-1")
		require.NoError(t, jobs.Add(ctx, second))

		got, err := jobs.GetLatestForUser(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, second.ID, got.ID)
	})
}
