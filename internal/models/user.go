package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents a client (or admin) profile. Selection quota and the
// finalize/lock flags live here because they gate every selection write.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"displayName"`
	PasswordHash    string     `json:"-"` // Never exposed
	IsAdmin         bool       `json:"isAdmin"`
	SelectionLimit  *int       `json:"selectionLimit,omitempty"`
	SelectionFinal  bool       `json:"selectionFinalized"`
	SelectionLocked bool       `json:"selectionLocked"`
	FinalizedAt     *time.Time `json:"finalizedAt,omitempty"`
	DriveFolderID   string     `json:"driveFolderId,omitempty"`
	DriveFolderLink string     `json:"driveFolderLink,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	IsActive        bool       `json:"isActive"`
}

// UserResponse is the safe response format for admin listings.
type UserResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"displayName"`
	IsAdmin         bool       `json:"isAdmin"`
	SelectionLimit  *int       `json:"selectionLimit,omitempty"`
	SelectionFinal  bool       `json:"selectionFinalized"`
	SelectionLocked bool       `json:"selectionLocked"`
	FinalizedAt     *time.Time `json:"finalizedAt,omitempty"`
	DriveFolderID   string     `json:"driveFolderId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	IsActive        bool       `json:"isActive"`
}

// NewUser creates a new user profile.
func NewUser(email, displayName string, isAdmin bool) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	displayName = strings.TrimSpace(displayName)

	if email == "" {
		return nil, ErrEmptyEmail
	}
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}

	now := time.Now().UTC()
	return &User{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: displayName,
		IsAdmin:     isAdmin,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    true,
	}, nil
}

// ToResponse converts User to UserResponse (safe for API).
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		IsAdmin:         u.IsAdmin,
		SelectionLimit:  u.SelectionLimit,
		SelectionFinal:  u.SelectionFinal,
		SelectionLocked: u.SelectionLocked,
		FinalizedAt:     u.FinalizedAt,
		DriveFolderID:   u.DriveFolderID,
		CreatedAt:       u.CreatedAt,
		IsActive:        u.IsActive,
	}
}

// Locked reports whether further selection mutation is blocked for this user.
func (u *User) Locked() bool {
	return u.SelectionFinal || u.SelectionLocked
}

// SetPassword hashes and sets the user's password using bcrypt (cost 12).
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword checks if the provided password matches the hash
// (constant-time via bcrypt).
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// ResolveFolderID returns the Drive folder id to sync for this user: the
// explicit id field if set, otherwise the id extracted from the stored
// shareable link.
func (u *User) ResolveFolderID() string {
	if u.DriveFolderID != "" {
		return u.DriveFolderID
	}
	return ParseFolderID(u.DriveFolderLink)
}

var (
	folderLinkRe  = regexp.MustCompile(`/folders/([A-Za-z0-9_-]+)`)
	folderQueryRe = regexp.MustCompile(`[?&]id=([A-Za-z0-9_-]+)`)
)

// ParseFolderID extracts a Drive folder id from a shareable folder link.
// Returns "" when no id can be found.
func ParseFolderID(link string) string {
	if link == "" {
		return ""
	}
	if m := folderLinkRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if m := folderQueryRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}

// User errors
var (
	ErrEmptyEmail       = UserError{"email cannot be empty"}
	ErrEmptyDisplayName = UserError{"display name cannot be empty"}
	ErrUserNotFound     = UserError{"user not found"}
	ErrEmailExists      = UserError{"email already registered"}
	ErrPasswordTooShort = UserError{"password must be at least 8 characters"}
	ErrInvalidPassword  = UserError{"invalid password"}
	ErrMissingFolderID  = UserError{"no drive folder id configured"}
)

type UserError struct {
	Message string
}

func (e UserError) Error() string {
	return e.Message
}
