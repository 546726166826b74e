package models

import (
	"strings"
	"time"
)

// SelectionStatus is the per-photo intent a client records while browsing.
type SelectionStatus string

const (
	StatusSelected SelectionStatus = "selected"
	StatusLater    SelectionStatus = "later"
	StatusSkip     SelectionStatus = "skip"
)

// Valid reports whether s is one of the three known statuses.
func (s SelectionStatus) Valid() bool {
	switch s {
	case StatusSelected, StatusLater, StatusSkip:
		return true
	}
	return false
}

// Selection is one row of the per-user selection ledger. Exactly one record
// exists per (user id, photo id) pair; writes merge into it.
type Selection struct {
	UserID          string          `json:"userId"`
	PhotoID         string          `json:"photoId"`
	Status          SelectionStatus `json:"status"`
	LastViewedIndex int             `json:"lastViewedIndex"`
	Finalized       bool            `json:"finalized"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewSelection validates inputs and builds a ledger entry.
func NewSelection(userID, photoID string, status SelectionStatus, lastViewedIndex int) (*Selection, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrSelectionEmptyUser
	}
	if strings.TrimSpace(photoID) == "" {
		return nil, ErrSelectionEmptyPhoto
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if lastViewedIndex < 0 {
		lastViewedIndex = 0
	}

	now := time.Now().UTC()
	return &Selection{
		UserID:          userID,
		PhotoID:         photoID,
		Status:          status,
		LastViewedIndex: lastViewedIndex,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ResumePointer stores the last index a user was viewing so the gallery can
// reopen where they left off.
type ResumePointer struct {
	UserID    string    `json:"userId"`
	LastIndex int       `json:"lastIndex"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Selection errors
var (
	ErrSelectionEmptyUser  = SelectionError{"user id cannot be empty"}
	ErrSelectionEmptyPhoto = SelectionError{"photo id cannot be empty"}
	ErrInvalidStatus       = SelectionError{"status must be selected, later or skip"}
	ErrSelectionLocked     = SelectionError{"selection is finalized; contact the photographer to reopen"}
	ErrQuotaExceeded       = SelectionError{"selection limit reached"}
)

type SelectionError struct {
	Message string
}

func (e SelectionError) Error() string {
	return e.Message
}
