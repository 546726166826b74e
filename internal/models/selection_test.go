package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelection(t *testing.T) {
	t.Run("creates valid selection", func(t *testing.T) {
		sel, err := NewSelection("user-1", "photo-1", StatusSelected, 7)

		require.NoError(t, err)
		assert.Equal(t, StatusSelected, sel.Status)
		assert.Equal(t, 7, sel.LastViewedIndex)
		assert.False(t, sel.Finalized)
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		_, err := NewSelection("", "photo-1", StatusLater, 0)
		assert.ErrorIs(t, err, ErrSelectionEmptyUser)
	})

	t.Run("rejects empty photo id", func(t *testing.T) {
		_, err := NewSelection("user-1", "", StatusLater, 0)
		assert.ErrorIs(t, err, ErrSelectionEmptyPhoto)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewSelection("user-1", "photo-1", SelectionStatus("maybe"), 0)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("clamps negative index to zero", func(t *testing.T) {
		sel, err := NewSelection("user-1", "photo-1", StatusSkip, -3)
		require.NoError(t, err)
		assert.Equal(t, 0, sel.LastViewedIndex)
	})
}

func TestSelectionStatusValid(t *testing.T) {
	assert.True(t, StatusSelected.Valid())
	assert.True(t, StatusLater.Valid())
	assert.True(t, StatusSkip.Valid())
	assert.False(t, SelectionStatus("").Valid())
	assert.False(t, SelectionStatus("SELECTED").Valid())
}
