package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easygallery/server/internal/middleware"
	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/repository"
	"github.com/easygallery/server/internal/services"
)

const (
	activityLogLimit  = 100
	feedbackListLimit = 100
)

// AdminHandler serves the photographer-facing management endpoints.
// Every route it handles sits behind the AdminOnly middleware.
type AdminHandler struct {
	userService      *services.UserService
	selectionService *services.SelectionService
	exportService    *services.ExportService
	authService      *services.AuthService
	photoRepo        repository.PhotoRepo
	activityRepo     repository.ActivityLogRepo
	feedbackRepo     repository.FeedbackRepo
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	userService *services.UserService,
	selectionService *services.SelectionService,
	exportService *services.ExportService,
	authService *services.AuthService,
	photoRepo repository.PhotoRepo,
	activityRepo repository.ActivityLogRepo,
	feedbackRepo repository.FeedbackRepo,
) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		selectionService: selectionService,
		exportService:    exportService,
		authService:      authService,
		photoRepo:        photoRepo,
		activityRepo:     activityRepo,
		feedbackRepo:     feedbackRepo,
	}
}

// adminUserResponse augments the profile with catalog and ledger counts
// so the user table renders without extra round trips.
type adminUserResponse struct {
	models.UserResponse
	PhotoCount    int `json:"photoCount"`
	SelectedCount int `json:"selectedCount"`
}

// ListUsers returns all client profiles with counts
// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {array} handlers.adminUserResponse
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]adminUserResponse, 0, len(users))
	for _, user := range users {
		resp := adminUserResponse{UserResponse: user.ToResponse()}
		if n, err := h.photoRepo.CountForUser(r.Context(), user.ID); err == nil {
			resp.PhotoCount = n
		}
		if n, err := h.selectionService.SelectedCount(r.Context(), user.ID); err == nil {
			resp.SelectedCount = n
		}
		out = append(out, resp)
	}

	writeJSON(w, http.StatusOK, out)
}

// GetUser returns one client profile
// @Summary Get user
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user.ToResponse())
}

// CreateUser creates a client profile
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "Profile"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), req.Email, req.DisplayName, req.Password, req.IsAdmin, req.DriveFolderLink, req.SelectionLimit)
	if err != nil {
		switch err {
		case models.ErrEmailExists:
			writeError(w, http.StatusConflict, err.Error())
		case models.ErrEmptyEmail, models.ErrEmptyDisplayName, models.ErrPasswordTooShort:
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user.ToResponse())
}

// UpdateUser edits a client profile
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := services.UpdateFields{
		DisplayName:     req.DisplayName,
		Password:        req.Password,
		DriveFolderLink: req.DriveFolderLink,
		IsActive:        req.IsActive,
	}
	if req.SelectionLimit != nil {
		if *req.SelectionLimit <= 0 {
			// Zero or negative means unlimited
			fields.ClearLimit = true
		} else {
			fields.SelectionLimit = req.SelectionLimit
		}
	}

	user, err := h.userService.Update(r.Context(), id, fields)
	if err != nil {
		switch err {
		case models.ErrUserNotFound:
			writeError(w, http.StatusNotFound, err.Error())
		case models.ErrPasswordTooShort:
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, user.ToResponse())
}

// DeleteUser removes a client profile and all dependent rows
// @Summary Delete user
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.userService.Delete(r.Context(), id); err != nil {
		if err == models.ErrUserNotFound {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ReopenSelection unlocks a finalized selection for further editing
// @Summary Reopen a finalized selection
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/users/{id}/reopen [post]
func (h *AdminHandler) ReopenSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.selectionService.Reopen(r.Context(), id); err != nil {
		if err == models.ErrUserNotFound {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ResetSelections wipes a user's ledger. The admin must re-prove their
// own password since this cannot be undone.
// @Summary Reset a user's selections
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.ResetSelectionsRequest true "Admin password"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Router /api/admin/users/{id}/reset-selections [post]
func (h *AdminHandler) ResetSelections(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUserFromContext(r.Context())
	if admin == nil {
		writeError(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req models.ResetSelectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ok, err := h.authService.VerifyPassword(r.Context(), admin.ID, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusForbidden, "Password confirmation failed")
		return
	}

	id := chi.URLParam(r, "id")
	removed, err := h.selectionService.Reset(r.Context(), id)
	if err != nil {
		if err == models.ErrUserNotFound {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "removed": removed})
}

// CopyScript downloads the Windows batch script that copies the user's
// selected originals out of the photographer's local archive.
// @Summary Download copy script
// @Tags admin
// @Produce application/octet-stream
// @Param id path string true "User ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/users/{id}/copy-script [get]
func (h *AdminHandler) CopyScript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filename, script, err := h.exportService.CopyScript(r.Context(), id)
	if err != nil {
		switch err {
		case models.ErrUserNotFound:
			writeError(w, http.StatusNotFound, err.Error())
		case services.ErrNoSelectedPhotos:
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(script)
}

// ActivityLogs returns recent activity, optionally for one user
// @Summary Recent activity log
// @Tags admin
// @Produce json
// @Param user query string false "Filter by user ID"
// @Success 200 {array} models.ActivityLog
// @Router /api/admin/activity [get]
func (h *AdminHandler) ActivityLogs(w http.ResponseWriter, r *http.Request) {
	var (
		logs []*models.ActivityLog
		err  error
	)
	if userID := r.URL.Query().Get("user"); userID != "" {
		logs, err = h.activityRepo.GetForUser(r.Context(), userID, activityLogLimit)
	} else {
		logs, err = h.activityRepo.GetRecent(r.Context(), activityLogLimit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if logs == nil {
		logs = []*models.ActivityLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// Feedback returns all submitted feedback
// @Summary List feedback
// @Tags admin
// @Produce json
// @Success 200 {array} models.Feedback
// @Router /api/admin/feedback [get]
func (h *AdminHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	items, err := h.feedbackRepo.GetAll(r.Context(), feedbackListLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if items == nil {
		items = []*models.Feedback{}
	}
	writeJSON(w, http.StatusOK, items)
}
