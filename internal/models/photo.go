package models

import (
	"strings"
	"time"
)

// Photo represents one image from a client's Drive folder, mirrored into the
// local catalog. Records are keyed deterministically on (user id, drive file
// id) so re-syncing the same tree never produces duplicates.
type Photo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	DriveFileID string    `json:"driveFileId"`
	Name        string    `json:"name"`
	MimeType    string    `json:"mimeType"`
	FolderID    string    `json:"folderId"`
	ThumbURL    string    `json:"thumbUrl"`
	FullURL     string    `json:"fullUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	driveImageBase = "https://lh3.googleusercontent.com/d/"
	thumbWidth     = "=w800"
	fullWidth      = "=w4000"
)

// NewPhoto builds a catalog record for a Drive image file.
func NewPhoto(userID, driveFileID, name, mimeType, folderID string, modifiedTime time.Time) (*Photo, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	if strings.TrimSpace(driveFileID) == "" {
		return nil, ErrEmptyFileID
	}

	if modifiedTime.IsZero() {
		modifiedTime = time.Now().UTC()
	}

	thumb, full := DriveImageURLs(driveFileID)
	return &Photo{
		ID:          PhotoKey(userID, driveFileID),
		UserID:      userID,
		DriveFileID: driveFileID,
		Name:        name,
		MimeType:    mimeType,
		FolderID:    folderID,
		ThumbURL:    thumb,
		FullURL:     full,
		CreatedAt:   modifiedTime,
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

// PhotoKey derives the deterministic record id for a (user, drive file) pair.
func PhotoKey(userID, driveFileID string) string {
	return userID + "_" + driveFileID
}

// DriveImageURLs derives the thumbnail and full-resolution URLs for a Drive
// file id.
func DriveImageURLs(driveFileID string) (thumb, full string) {
	base := driveImageBase + driveFileID
	return base + thumbWidth, base + fullWidth
}

// BaseName returns the photo's filename without its extension, used for the
// copy-script prefix list.
func (p *Photo) BaseName() string {
	name := strings.TrimSpace(p.Name)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// Errors
type PhotoError struct {
	Message string
}

func (e PhotoError) Error() string {
	return e.Message
}

var (
	ErrEmptyUserID   = PhotoError{"user id cannot be empty"}
	ErrEmptyFileID   = PhotoError{"drive file id cannot be empty"}
	ErrPhotoNotFound = PhotoError{"photo not found"}
)
