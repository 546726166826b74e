package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easygallery/server/internal/models"
)

func TestFeedbackRepository_GetAll(t *testing.T) {
	ctx := context.Background()

	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewFeedbackRepository(db)

	rating := 5
	for i, msg := range []string{"oldest", "middle", "newest"} {
		fb, err := models.NewFeedback("u1", msg, &rating)
		require.NoError(t, err)
		fb.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Add(ctx, fb))
	}

	t.Run("newest first", func(t *testing.T) {
		entries, err := repo.GetAll(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "newest", entries[0].Message)
		assert.Equal(t, "oldest", entries[2].Message)
	})

	t.Run("limit caps the listing", func(t *testing.T) {
		entries, err := repo.GetAll(ctx, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "newest", entries[0].Message)
	})
}
