package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoto(t *testing.T) {
	t.Run("creates photo with derived urls and deterministic id", func(t *testing.T) {
		modified := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		photo, err := NewPhoto("user-1", "file-abc", "IMG_0001.jpg", "image/jpeg", "folder-1", modified)

		require.NoError(t, err)
		assert.Equal(t, "user-1_file-abc", photo.ID)
		assert.Equal(t, "https://lh3.googleusercontent.com/d/file-abc=w800", photo.ThumbURL)
		assert.Equal(t, "https://lh3.googleusercontent.com/d/file-abc=w4000", photo.FullURL)
		assert.Equal(t, modified, photo.CreatedAt)
		assert.WithinDuration(t, time.Now().UTC(), photo.UpdatedAt, time.Second*5)
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		_, err := NewPhoto("", "file-abc", "a.jpg", "image/jpeg", "f", time.Now())
		assert.ErrorIs(t, err, ErrEmptyUserID)
	})

	t.Run("rejects empty file id", func(t *testing.T) {
		_, err := NewPhoto("user-1", "", "a.jpg", "image/jpeg", "f", time.Now())
		assert.ErrorIs(t, err, ErrEmptyFileID)
	})

	t.Run("same pair always yields the same id", func(t *testing.T) {
		p1, err := NewPhoto("u", "f", "a.jpg", "image/jpeg", "folder", time.Now())
		require.NoError(t, err)
		p2, err := NewPhoto("u", "f", "renamed.jpg", "image/jpeg", "folder", time.Now())
		require.NoError(t, err)

		assert.Equal(t, p1.ID, p2.ID)
	})

	t.Run("defaults zero modified time to now", func(t *testing.T) {
		photo, err := NewPhoto("u", "f", "a.jpg", "image/jpeg", "folder", time.Time{})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), photo.CreatedAt, time.Second*5)
	})
}

func TestPhotoBaseName(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		want     string
	}{
		{"strips extension", "DSC_0042.jpg", "DSC_0042"},
		{"keeps name without extension", "DSC_0042", "DSC_0042"},
		{"only strips the last extension", "wedding.day.CR2", "wedding.day"},
		{"dotfile is kept whole", ".hidden", ".hidden"},
		{"trims whitespace", "  IMG_1.jpg", "IMG_1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Photo{Name: tc.filename}
			assert.Equal(t, tc.want, p.BaseName())
		})
	}
}
