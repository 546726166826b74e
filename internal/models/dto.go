package models

import "time"

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginRequest is the body for email/password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt string       `json:"expiresAt"`
}

// SyncRequest triggers a Drive sync for a user. FolderID is optional; when
// omitted it is resolved from the user's profile.
type SyncRequest struct {
	UserID   string `json:"userId"`
	FolderID string `json:"folderId,omitempty"`
}

// SyncResponse reports the outcome of a sync run.
type SyncResponse struct {
	OK           bool   `json:"ok"`
	JobID        string `json:"jobId,omitempty"`
	PhotosSynced int    `json:"photos_synced,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SetStatusRequest records a selection status for one photo.
type SetStatusRequest struct {
	PhotoID         string          `json:"photoId"`
	Status          SelectionStatus `json:"status"`
	LastViewedIndex int             `json:"lastViewedIndex"`
}

// FinalizeRequest optionally carries a rating and feedback message submitted
// together with the finalize action.
type FinalizeRequest struct {
	Rating   *int   `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// ResetSelectionsRequest requires the caller to re-prove their password
// since the reset is destructive and irreversible.
type ResetSelectionsRequest struct {
	Password string `json:"password"`
}

// ResumeRequest updates the last-viewed index.
type ResumeRequest struct {
	LastIndex int `json:"lastIndex"`
}

// CreateUserRequest is the admin body for creating a client profile.
type CreateUserRequest struct {
	Email           string `json:"email"`
	DisplayName     string `json:"displayName"`
	Password        string `json:"password"`
	IsAdmin         bool   `json:"isAdmin"`
	SelectionLimit  *int   `json:"selectionLimit,omitempty"`
	DriveFolderLink string `json:"driveFolderLink,omitempty"`
}

// UpdateUserRequest is the admin body for editing a client profile. Nil
// fields are left unchanged.
type UpdateUserRequest struct {
	DisplayName     *string `json:"displayName,omitempty"`
	Password        *string `json:"password,omitempty"`
	SelectionLimit  *int    `json:"selectionLimit,omitempty"`
	DriveFolderID   *string `json:"driveFolderId,omitempty"`
	DriveFolderLink *string `json:"driveFolderLink,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
}

// FeedbackRequest is the body for posting feedback outside of finalize.
type FeedbackRequest struct {
	Message string `json:"message"`
	Rating  *int   `json:"rating,omitempty"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
