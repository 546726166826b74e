package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncJobLifecycle(t *testing.T) {
	t.Run("new job starts running", func(t *testing.T) {
		job := NewSyncJob("user-1", "folder-1")

		assert.NotEmpty(t, job.ID)
		assert.Equal(t, SyncRunning, job.State)
		assert.Nil(t, job.FinishedAt)
	})

	t.Run("finish sets full percent and timestamps", func(t *testing.T) {
		job := NewSyncJob("user-1", "folder-1")
		job.SetProgress(10, 40)
		assert.Equal(t, 25, job.Percent)

		job.Finish(40)

		assert.Equal(t, SyncFinished, job.State)
		assert.Equal(t, 100, job.Percent)
		assert.Equal(t, 40, job.Processed)
		require.NotNil(t, job.FinishedAt)
	})

	t.Run("finish raises total when pre-count undercounted", func(t *testing.T) {
		job := NewSyncJob("user-1", "folder-1")
		job.Total = 5

		job.Finish(9)

		assert.Equal(t, 9, job.Total)
	})

	t.Run("fail records the error detail", func(t *testing.T) {
		job := NewSyncJob("user-1", "folder-1")

		job.Fail(errors.New("drive api error: 403"))

		assert.Equal(t, SyncError, job.State)
		assert.Equal(t, "drive api error: 403", job.LastError)
		require.NotNil(t, job.FinishedAt)
	})
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 100, ProgressPercent(0, 0))
	assert.Equal(t, 0, ProgressPercent(0, 10))
	assert.Equal(t, 50, ProgressPercent(5, 10))
	assert.Equal(t, 100, ProgressPercent(15, 10))
}
