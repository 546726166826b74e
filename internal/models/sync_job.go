package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncJobState is the lifecycle state of one Drive sync run.
type SyncJobState string

const (
	SyncIdle     SyncJobState = "idle"
	SyncRunning  SyncJobState = "running"
	SyncFinished SyncJobState = "finished"
	SyncError    SyncJobState = "error"
)

// SyncJob tracks the progress of a single sync run. Each run gets its own
// row keyed by job id, so concurrent runs for different users never clobber
// each other's counters.
type SyncJob struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	FolderID   string       `json:"folderId"`
	State      SyncJobState `json:"status"`
	Processed  int          `json:"processed"`
	Total      int          `json:"total"`
	Percent    int          `json:"percent"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
	LastError  string       `json:"error,omitempty"`
}

// NewSyncJob creates a job in the running state.
func NewSyncJob(userID, folderID string) *SyncJob {
	return &SyncJob{
		ID:        uuid.New().String(),
		UserID:    userID,
		FolderID:  folderID,
		State:     SyncRunning,
		StartedAt: time.Now().UTC(),
	}
}

// SetProgress updates the counters and recomputes the percentage.
func (j *SyncJob) SetProgress(processed, total int) {
	j.Processed = processed
	j.Total = total
	j.Percent = ProgressPercent(processed, total)
}

// Finish marks the job finished with its final counts. An empty folder
// finishes at 100 percent.
func (j *SyncJob) Finish(synced int) {
	j.State = SyncFinished
	j.Processed = synced
	if j.Total < synced {
		j.Total = synced
	}
	j.Percent = 100
	now := time.Now().UTC()
	j.FinishedAt = &now
}

// Fail marks the job errored with the failure detail.
func (j *SyncJob) Fail(err error) {
	j.State = SyncError
	if err != nil {
		j.LastError = err.Error()
	}
	now := time.Now().UTC()
	j.FinishedAt = &now
}

// ProgressPercent computes a bounded integer percentage. A zero total maps
// to 100 so empty folders report a completed bar rather than dividing by
// zero.
func ProgressPercent(processed, total int) int {
	if total <= 0 {
		return 100
	}
	pct := processed * 100 / total
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}
