package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Feedback is a free-form note a client leaves, typically on finalize.
type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Rating    *int      `json:"rating,omitempty"` // 1-5, optional
	CreatedAt time.Time `json:"createdAt"`
}

// NewFeedback validates and builds a feedback entry.
func NewFeedback(userID, message string, rating *int) (*Feedback, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	if strings.TrimSpace(message) == "" && rating == nil {
		return nil, ErrEmptyFeedback
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, ErrInvalidRating
	}

	return &Feedback{
		ID:        uuid.New().String(),
		UserID:    userID,
		Message:   strings.TrimSpace(message),
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}, nil
}

var (
	ErrEmptyFeedback = FeedbackError{"feedback message cannot be empty"}
	ErrInvalidRating = FeedbackError{"rating must be between 1 and 5"}
)

type FeedbackError struct {
	Message string
}

func (e FeedbackError) Error() string {
	return e.Message
}
