package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/easygallery/server/internal/middleware"
	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/repository"
	"github.com/easygallery/server/internal/services"
)

// GalleryHandler serves the client-facing gallery endpoints. All
// handlers operate on the session user; clients never address other
// users' data.
type GalleryHandler struct {
	photoRepo        repository.PhotoRepo
	selectionService *services.SelectionService
	feedbackRepo     repository.FeedbackRepo
	authService      *services.AuthService
}

// NewGalleryHandler creates a new GalleryHandler
func NewGalleryHandler(
	photoRepo repository.PhotoRepo,
	selectionService *services.SelectionService,
	feedbackRepo repository.FeedbackRepo,
	authService *services.AuthService,
) *GalleryHandler {
	return &GalleryHandler{
		photoRepo:        photoRepo,
		selectionService: selectionService,
		feedbackRepo:     feedbackRepo,
		authService:      authService,
	}
}

// galleryResponse is the single payload the gallery UI needs on load
type galleryResponse struct {
	Photos     []*models.Photo             `json:"photos"`
	Selections map[string]*models.Selection `json:"selections"`
	Resume     *models.ResumePointer       `json:"resume"`
	Locked     bool                        `json:"locked"`
	Limit      *int                        `json:"selectionLimit,omitempty"`
	Selected   int                         `json:"selectedCount"`
}

// Photos returns the user's catalog with their ledger and resume pointer
// @Summary Gallery payload
// @Tags gallery
// @Produce json
// @Success 200 {object} handlers.galleryResponse
// @Router /api/gallery/photos [get]
func (h *GalleryHandler) Photos(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Session required")
		return
	}

	photos, err := h.photoRepo.GetAllForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	selections, err := h.selectionService.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	byPhoto := make(map[string]*models.Selection, len(selections))
	selected := 0
	for _, sel := range selections {
		byPhoto[sel.PhotoID] = sel
		if sel.Status == models.StatusSelected {
			selected++
		}
	}

	resume, err := h.selectionService.Resume(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if photos == nil {
		photos = []*models.Photo{}
	}
	writeJSON(w, http.StatusOK, galleryResponse{
		Photos:     photos,
		Selections: byPhoto,
		Resume:     resume,
		Locked:     user.Locked(),
		Limit:      user.SelectionLimit,
		Selected:   selected,
	})
}

// SetSelection records one selection decision
// @Summary Mark a photo
// @Tags gallery
// @Accept json
// @Produce json
// @Param request body models.SetStatusRequest true "Photo and status"
// @Success 200 {object} models.Selection
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/gallery/selections [post]
func (h *GalleryHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req models.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sel, err := h.selectionService.SetStatus(r.Context(), user.ID, req.PhotoID, req.Status, req.LastViewedIndex)
	if err != nil {
		switch err {
		case models.ErrSelectionLocked:
			writeError(w, http.StatusForbidden, err.Error())
		case models.ErrQuotaExceeded:
			writeError(w, http.StatusConflict, err.Error())
		case models.ErrPhotoNotFound:
			writeError(w, http.StatusNotFound, err.Error())
		case models.ErrInvalidStatus, models.ErrSelectionEmptyPhoto:
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, sel)
}

// Finalize locks the user's selection
// @Summary Finalize the selection
// @Tags gallery
// @Accept json
// @Produce json
// @Param request body models.FinalizeRequest false "Optional rating and feedback"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} models.ErrorResponse
// @Router /api/gallery/finalize [post]
func (h *GalleryHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req models.FinalizeRequest
	if r.Body != nil {
		// Body is optional
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.selectionService.Finalize(r.Context(), user.ID, req.Rating, req.Feedback); err != nil {
		if err == models.ErrSelectionLocked {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// SaveResume stores the last-viewed index
// @Summary Save resume pointer
// @Tags gallery
// @Accept json
// @Produce json
// @Param request body models.ResumeRequest true "Last viewed index"
// @Success 200 {object} map[string]bool
// @Router /api/gallery/resume [post]
func (h *GalleryHandler) SaveResume(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req models.ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.selectionService.SaveResume(r.Context(), user.ID, req.LastIndex); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ResetOwn wipes the caller's own ledger. The user must re-prove their
// password since this cannot be undone.
// @Summary Reset own selections
// @Tags gallery
// @Accept json
// @Produce json
// @Param request body models.ResetSelectionsRequest true "Account password"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Router /api/gallery/reset [post]
func (h *GalleryHandler) ResetOwn(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req models.ResetSelectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ok, err := h.authService.VerifyPassword(r.Context(), user.ID, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusForbidden, "Password confirmation failed")
		return
	}

	removed, err := h.selectionService.Reset(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "removed": removed})
}

// PostFeedback stores a feedback message outside of finalize
// @Summary Leave feedback
// @Tags gallery
// @Accept json
// @Produce json
// @Param request body models.FeedbackRequest true "Message and optional rating"
// @Success 201 {object} models.Feedback
// @Failure 400 {object} models.ErrorResponse
// @Router /api/gallery/feedback [post]
func (h *GalleryHandler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fb, err := models.NewFeedback(user.ID, req.Message, req.Rating)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.feedbackRepo.Add(r.Context(), fb); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, fb)
}
