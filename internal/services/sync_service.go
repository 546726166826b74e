package services

import (
	"context"
	"fmt"

	"github.com/easygallery/server/internal/drive"
	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/observability"
	"github.com/easygallery/server/internal/repository"
)

// DriveLister is the slice of the Drive client the sync walker needs
type DriveLister interface {
	ListFolder(ctx context.Context, folderID, pageToken string) (*drive.FileList, error)
}

// SyncService walks a user's Drive folder tree and mirrors every image
// file into the photo catalog. Re-running a sync is idempotent: rows are
// upserted keyed on (user, drive file), never duplicated.
type SyncService struct {
	driveClient  DriveLister
	photoRepo    repository.PhotoRepo
	userRepo     repository.UserRepo
	jobRepo      repository.SyncJobRepo
	activityRepo repository.ActivityLogRepo
	wsHub        *WebSocketHub
	metrics      *observability.BusinessMetrics

	batchSize        int
	progressInterval int
}

// NewSyncService creates a new SyncService
func NewSyncService(
	driveClient DriveLister,
	photoRepo repository.PhotoRepo,
	userRepo repository.UserRepo,
	jobRepo repository.SyncJobRepo,
	activityRepo repository.ActivityLogRepo,
	batchSize int,
	progressInterval int,
) *SyncService {
	if batchSize <= 0 {
		batchSize = 50
	}
	if progressInterval <= 0 {
		progressInterval = 10
	}

	return &SyncService{
		driveClient:      driveClient,
		photoRepo:        photoRepo,
		userRepo:         userRepo,
		jobRepo:          jobRepo,
		activityRepo:     activityRepo,
		batchSize:        batchSize,
		progressInterval: progressInterval,
	}
}

// SetWebSocketHub sets the WebSocket hub for real-time progress updates
func (s *SyncService) SetWebSocketHub(hub *WebSocketHub) {
	s.wsHub = hub
}

// SetMetrics sets the business metrics instruments
func (s *SyncService) SetMetrics(metrics *observability.BusinessMetrics) {
	s.metrics = metrics
}

// walkState carries the mutable state of one sync run
type walkState struct {
	job       *models.SyncJob
	userID    string
	visited   map[string]bool
	batch     []*models.Photo
	processed int
	synced    int
}

// Sync runs a full sync for the user. The folder id argument overrides
// the folder stored on the user when non-empty. The returned job carries
// the final counters; a nil error means the walk completed, even if the
// folder turned out to be empty.
func (s *SyncService) Sync(ctx context.Context, userID, folderID string) (*models.SyncJob, error) {
	ctx, span := observability.StartServiceSpan(ctx, "sync", "Sync")
	defer span.End()
	span.SetAttributes(observability.UserID(userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	if folderID == "" {
		folderID = user.ResolveFolderID()
		if folderID == "" {
			return nil, models.ErrMissingFolderID
		}
	}
	span.SetAttributes(observability.FolderID(folderID))

	job := models.NewSyncJob(userID, folderID)
	if err := s.jobRepo.Add(ctx, job); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(observability.SyncJobID(job.ID))

	logger := observability.WithContext(ctx).WithFields(map[string]interface{}{
		"user_id":     userID,
		"folder_id":   folderID,
		"sync_job_id": job.ID,
	})
	logger.Info("Starting Drive sync")

	// First pass counts files so progress is a real percentage
	total, err := s.countFiles(ctx, folderID)
	if err != nil {
		s.failJob(ctx, job, err)
		observability.RecordError(span, err)
		return job, err
	}
	job.SetProgress(0, total)
	s.notifyProgress(job)

	state := &walkState{
		job:     job,
		userID:  userID,
		visited: map[string]bool{folderID: true},
	}

	if err := s.walkFolder(ctx, state, folderID); err != nil {
		s.failJob(ctx, job, err)
		observability.RecordError(span, err)
		return job, err
	}
	s.flushBatch(ctx, state)

	job.Finish(state.synced)
	if err := s.jobRepo.Update(ctx, job); err != nil {
		logger.Errorf("Failed to persist finished sync job: %v", err)
	}
	s.notifyProgress(job)

	if s.metrics != nil {
		s.metrics.RecordSyncRun(ctx, userID, state.synced, true)
	}
	s.logActivity(ctx, models.ActionDriveSync, userID, map[string]interface{}{
		"jobId":    job.ID,
		"folderId": folderID,
		"synced":   state.synced,
	})

	logger.Infof("Drive sync finished: %d photos", state.synced)
	observability.SetSuccess(span)
	return job, nil
}

// walkFolder processes one folder, recursing into subfolders. The
// visited set guards against shortcut loops in the folder tree: a
// folder reachable twice is walked once.
func (s *SyncService) walkFolder(ctx context.Context, state *walkState, folderID string) error {
	pageToken := ""
	for {
		list, err := s.listPage(ctx, folderID, pageToken)
		if err != nil {
			return err
		}

		for _, file := range list.Files {
			if file.IsFolder() {
				if state.visited[file.ID] {
					continue
				}
				state.visited[file.ID] = true
				if err := s.walkFolder(ctx, state, file.ID); err != nil {
					return err
				}
				continue
			}

			photo, err := models.NewPhoto(state.userID, file.ID, file.Name, file.MimeType, folderID, file.ModifiedTime)
			if err != nil {
				// A file without an id cannot be mirrored; skip it
				observability.Warnf("Skipping unsyncable Drive file in %s: %v", folderID, err)
				continue
			}

			state.batch = append(state.batch, photo)
			state.processed++

			if len(state.batch) >= s.batchSize {
				s.flushBatch(ctx, state)
			}

			if state.processed%s.progressInterval == 0 {
				state.job.SetProgress(state.processed, state.job.Total)
				if err := s.jobRepo.Update(ctx, state.job); err != nil {
					observability.Warnf("Failed to persist sync progress: %v", err)
				}
				s.notifyProgress(state.job)
			}
		}

		if list.NextPageToken == "" {
			return nil
		}
		pageToken = list.NextPageToken
	}
}

// countFiles walks the tree counting image files without writing anything
func (s *SyncService) countFiles(ctx context.Context, folderID string) (int, error) {
	visited := map[string]bool{folderID: true}
	return s.countFolder(ctx, visited, folderID)
}

func (s *SyncService) countFolder(ctx context.Context, visited map[string]bool, folderID string) (int, error) {
	total := 0
	pageToken := ""
	for {
		list, err := s.listPage(ctx, folderID, pageToken)
		if err != nil {
			return 0, err
		}

		for _, file := range list.Files {
			if file.IsFolder() {
				if visited[file.ID] {
					continue
				}
				visited[file.ID] = true
				sub, err := s.countFolder(ctx, visited, file.ID)
				if err != nil {
					return 0, err
				}
				total += sub
				continue
			}
			total++
		}

		if list.NextPageToken == "" {
			return total, nil
		}
		pageToken = list.NextPageToken
	}
}

func (s *SyncService) listPage(ctx context.Context, folderID, pageToken string) (*drive.FileList, error) {
	ctx, span := observability.StartDriveSpan(ctx, "list", folderID)
	defer span.End()

	list, err := s.driveClient.ListFolder(ctx, folderID, pageToken)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("listing folder %s: %w", folderID, err)
	}
	observability.SetSuccess(span)
	return list, nil
}

// flushBatch writes the pending batch. Catalog writes are best effort:
// a failed batch is logged and dropped so the walk keeps going, and the
// dropped photos are picked up by the next sync run.
func (s *SyncService) flushBatch(ctx context.Context, state *walkState) {
	if len(state.batch) == 0 {
		return
	}

	if err := s.photoRepo.UpsertBatch(ctx, state.batch); err != nil {
		observability.Warnf("Dropping photo batch of %d for user %s: %v", len(state.batch), state.userID, err)
	} else {
		state.synced += len(state.batch)
	}
	state.batch = state.batch[:0]
}

func (s *SyncService) failJob(ctx context.Context, job *models.SyncJob, cause error) {
	job.Fail(cause)
	if err := s.jobRepo.Update(ctx, job); err != nil {
		observability.Errorf("Failed to persist failed sync job: %v", err)
	}
	s.notifyProgress(job)

	if s.metrics != nil {
		s.metrics.RecordSyncRun(ctx, job.UserID, 0, false)
	}
	s.logActivity(ctx, models.ActionDriveSyncError, job.UserID, map[string]interface{}{
		"jobId": job.ID,
		"error": cause.Error(),
	})
}

func (s *SyncService) notifyProgress(job *models.SyncJob) {
	if s.wsHub == nil {
		return
	}

	msgType := WSTypeSyncProgress
	switch job.State {
	case models.SyncFinished:
		msgType = WSTypeSyncComplete
	case models.SyncError:
		msgType = WSTypeSyncError
	}

	payload := SyncProgressPayload{
		JobID:     job.ID,
		UserID:    job.UserID,
		Status:    string(job.State),
		Processed: job.Processed,
		Total:     job.Total,
		Percent:   job.Percent,
		Error:     job.LastError,
	}

	s.wsHub.BroadcastToTopic(TopicSync, WSMessage{Type: msgType, Payload: payload})
	s.wsHub.SendToUser(job.UserID, WSMessage{Type: msgType, Payload: payload})
}

func (s *SyncService) logActivity(ctx context.Context, action, userID string, details map[string]interface{}) {
	if s.activityRepo == nil {
		return
	}
	if err := s.activityRepo.Add(ctx, models.NewActivityLog(action, userID, details)); err != nil {
		observability.Warnf("Failed to write activity log: %v", err)
	}
}

// JobStatus returns the current state of a sync job
func (s *SyncService) JobStatus(ctx context.Context, jobID string) (*models.SyncJob, error) {
	return s.jobRepo.GetByID(ctx, jobID)
}

// LatestJobForUser returns the most recent sync job for a user
func (s *SyncService) LatestJobForUser(ctx context.Context, userID string) (*models.SyncJob, error) {
	return s.jobRepo.GetLatestForUser(ctx, userID)
}
