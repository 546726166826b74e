package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Activity log actions written by the server.
const (
	ActionDriveSync       = "drive_sync"
	ActionDriveSyncError  = "drive_sync_error"
	ActionSelectionFinal  = "selection_finalized"
	ActionSelectionReopen = "selection_reopened"
	ActionSelectionReset  = "selection_reset"
	ActionUserCreated     = "user_created"
	ActionUserDeleted     = "user_deleted"
	ActionLogin           = "login"
)

// ActivityLog is one audit entry. Details is an arbitrary JSON object.
type ActivityLog struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	UserID    string                 `json:"userId,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// NewActivityLog creates an audit entry.
func NewActivityLog(action, userID string, details map[string]interface{}) *ActivityLog {
	return &ActivityLog{
		ID:        uuid.New().String(),
		Action:    action,
		UserID:    userID,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
}

// DetailsJSON serializes the details map for storage. Returns "{}" when
// there are no details.
func (a *ActivityLog) DetailsJSON() string {
	if len(a.Details) == 0 {
		return "{}"
	}
	data, err := json.Marshal(a.Details)
	if err != nil {
		return "{}"
	}
	return string(data)
}
