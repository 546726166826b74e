package services

import (
	"context"
	"time"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/observability"
	"github.com/easygallery/server/internal/repository"
)

// SelectionService owns the selection ledger workflow: marking photos,
// finalizing, reopening and resetting. Quota and lock enforcement live
// in the repository write so they hold under concurrent requests; this
// layer adds validation, audit and notifications on top.
type SelectionService struct {
	selectionRepo repository.SelectionRepo
	photoRepo     repository.PhotoRepo
	userRepo      repository.UserRepo
	feedbackRepo  repository.FeedbackRepo
	activityRepo  repository.ActivityLogRepo
	wsHub         *WebSocketHub
	metrics       *observability.BusinessMetrics
}

// NewSelectionService creates a new SelectionService
func NewSelectionService(
	selectionRepo repository.SelectionRepo,
	photoRepo repository.PhotoRepo,
	userRepo repository.UserRepo,
	feedbackRepo repository.FeedbackRepo,
	activityRepo repository.ActivityLogRepo,
) *SelectionService {
	return &SelectionService{
		selectionRepo: selectionRepo,
		photoRepo:     photoRepo,
		userRepo:      userRepo,
		feedbackRepo:  feedbackRepo,
		activityRepo:  activityRepo,
	}
}

// SetWebSocketHub sets the WebSocket hub for real-time notifications
func (s *SelectionService) SetWebSocketHub(hub *WebSocketHub) {
	s.wsHub = hub
}

// SetMetrics sets the business metrics instruments
func (s *SelectionService) SetMetrics(metrics *observability.BusinessMetrics) {
	s.metrics = metrics
}

// SetStatus records one selection decision. The photo must exist in the
// user's catalog; writes against a finalized selection or past the
// quota come back as models.ErrSelectionLocked or
// models.ErrQuotaExceeded.
func (s *SelectionService) SetStatus(ctx context.Context, userID, photoID string, status models.SelectionStatus, lastViewedIndex int) (*models.Selection, error) {
	ctx, span := observability.StartServiceSpan(ctx, "selection", "SetStatus")
	defer span.End()
	span.SetAttributes(
		observability.UserID(userID),
		observability.PhotoID(photoID),
		observability.SelectionStatus(string(status)),
	)

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if photo == nil || photo.UserID != userID {
		return nil, models.ErrPhotoNotFound
	}

	sel, err := models.NewSelection(userID, photoID, status, lastViewedIndex)
	if err != nil {
		return nil, err
	}

	err = s.selectionRepo.Record(ctx, sel)
	if s.metrics != nil {
		s.metrics.RecordSelectionWrite(ctx, userID, string(status), err == nil)
	}
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if s.wsHub != nil {
		s.wsHub.SendToUser(userID, WSMessage{Type: WSTypeSelectionSaved, Payload: sel})
	}

	observability.SetSuccess(span)
	return sel, nil
}

// Finalize locks the user's selection. Every ledger entry is marked
// finalized and the user's lock flags flip in the same transaction, so
// a finalized selection can never hold unlocked entries. Optional
// rating and feedback are stored alongside.
func (s *SelectionService) Finalize(ctx context.Context, userID string, rating *int, feedbackMsg string) error {
	ctx, span := observability.StartServiceSpan(ctx, "selection", "Finalize")
	defer span.End()
	span.SetAttributes(observability.UserID(userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	if user == nil {
		return models.ErrUserNotFound
	}
	if user.Locked() {
		return models.ErrSelectionLocked
	}

	count, err := s.selectionRepo.FinalizeAll(ctx, userID, time.Now().UTC())
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	if feedbackMsg != "" || rating != nil {
		if fb, fbErr := models.NewFeedback(userID, feedbackMsg, rating); fbErr == nil {
			if addErr := s.feedbackRepo.Add(ctx, fb); addErr != nil {
				observability.Warnf("Failed to store finalize feedback: %v", addErr)
			}
		}
	}

	selected, err := s.selectionRepo.CountByStatus(ctx, userID, models.StatusSelected)
	if err != nil {
		selected = count
	}

	if s.metrics != nil {
		s.metrics.RecordFinalize(ctx, userID, selected)
	}
	s.logActivity(ctx, models.ActionSelectionFinal, userID, map[string]interface{}{
		"entries":  count,
		"selected": selected,
	})

	if s.wsHub != nil {
		s.wsHub.BroadcastToTopic(TopicAdmin, WSMessage{
			Type: WSTypeSelectionSaved,
			Payload: map[string]interface{}{
				"userId":    userID,
				"finalized": true,
				"selected":  selected,
			},
		})
	}

	observability.SetSuccess(span)
	return nil
}

// Reopen clears the finalize and lock flags so the client can edit
// again. Ledger entries keep their statuses.
func (s *SelectionService) Reopen(ctx context.Context, userID string) error {
	ctx, span := observability.StartServiceSpan(ctx, "selection", "Reopen")
	defer span.End()
	span.SetAttributes(observability.UserID(userID))

	if err := s.userRepo.SetSelectionFlags(ctx, userID, false, false, nil); err != nil {
		observability.RecordError(span, err)
		return err
	}

	s.logActivity(ctx, models.ActionSelectionReopen, userID, nil)
	observability.SetSuccess(span)
	return nil
}

// Reset wipes the user's ledger and resume pointer and reopens the
// selection. The caller is responsible for re-proving the admin's
// password before invoking this.
func (s *SelectionService) Reset(ctx context.Context, userID string) (int, error) {
	ctx, span := observability.StartServiceSpan(ctx, "selection", "Reset")
	defer span.End()
	span.SetAttributes(observability.UserID(userID))

	deleted, err := s.selectionRepo.DeleteAllForUser(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return 0, err
	}

	if err := s.userRepo.SetSelectionFlags(ctx, userID, false, false, nil); err != nil {
		observability.RecordError(span, err)
		return deleted, err
	}

	s.logActivity(ctx, models.ActionSelectionReset, userID, map[string]interface{}{
		"deleted": deleted,
	})

	observability.SetSuccess(span)
	return deleted, nil
}

// ListForUser returns the user's full ledger
func (s *SelectionService) ListForUser(ctx context.Context, userID string) ([]*models.Selection, error) {
	return s.selectionRepo.GetAllForUser(ctx, userID)
}

// SelectedCount returns how many photos the user has marked selected
func (s *SelectionService) SelectedCount(ctx context.Context, userID string) (int, error) {
	return s.selectionRepo.CountByStatus(ctx, userID, models.StatusSelected)
}

// Resume returns the user's resume pointer, or index zero when the user
// has never saved one.
func (s *SelectionService) Resume(ctx context.Context, userID string) (*models.ResumePointer, error) {
	rp, err := s.selectionRepo.GetResume(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		rp = &models.ResumePointer{UserID: userID}
	}
	return rp, nil
}

// SaveResume stores the user's resume pointer
func (s *SelectionService) SaveResume(ctx context.Context, userID string, lastIndex int) error {
	return s.selectionRepo.SetResume(ctx, userID, lastIndex)
}

func (s *SelectionService) logActivity(ctx context.Context, action, userID string, details map[string]interface{}) {
	if s.activityRepo == nil {
		return
	}
	if err := s.activityRepo.Add(ctx, models.NewActivityLog(action, userID, details)); err != nil {
		observability.Warnf("Failed to write activity log: %v", err)
	}
}
