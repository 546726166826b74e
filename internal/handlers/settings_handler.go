package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/services"
)

// SettingsHandler serves gallery appearance and app settings plus
// branding asset uploads.
type SettingsHandler struct {
	settingsService *services.SettingsService
	brandingService *services.BrandingService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *services.SettingsService, brandingService *services.BrandingService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		brandingService: brandingService,
	}
}

// GetDesign returns the gallery appearance settings. Public so the
// login page can brand itself before any session exists.
// @Summary Design settings
// @Tags settings
// @Produce json
// @Success 200 {object} models.DesignSettings
// @Router /api/settings/design [get]
func (h *SettingsHandler) GetDesign(w http.ResponseWriter, r *http.Request) {
	design, err := h.settingsService.Design(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, design)
}

// SaveDesign replaces the gallery appearance settings
// @Summary Update design settings
// @Tags settings
// @Accept json
// @Produce json
// @Param request body models.DesignSettings true "Settings"
// @Success 200 {object} models.DesignSettings
// @Router /api/admin/settings/design [put]
func (h *SettingsHandler) SaveDesign(w http.ResponseWriter, r *http.Request) {
	var design models.DesignSettings
	if err := json.NewDecoder(r.Body).Decode(&design); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.settingsService.SaveDesign(r.Context(), design); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, design)
}

// GetApp returns the app settings
// @Summary App settings
// @Tags settings
// @Produce json
// @Success 200 {object} models.AppSettings
// @Router /api/settings/app [get]
func (h *SettingsHandler) GetApp(w http.ResponseWriter, r *http.Request) {
	app, err := h.settingsService.App(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// SaveApp replaces the app settings
// @Summary Update app settings
// @Tags settings
// @Accept json
// @Produce json
// @Param request body models.AppSettings true "Settings"
// @Success 200 {object} models.AppSettings
// @Router /api/admin/settings/app [put]
func (h *SettingsHandler) SaveApp(w http.ResponseWriter, r *http.Request) {
	var app models.AppSettings
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.settingsService.SaveApp(r.Context(), app); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// UploadBranding receives a logo or hero image as multipart form data,
// normalizes it and stores it under the asset directory.
// @Summary Upload a branding asset
// @Tags settings
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Asset kind" Enums(logo, hero)
// @Param file formData file true "Image file"
// @Success 201 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /api/admin/branding/{kind} [post]
func (h *SettingsHandler) UploadBranding(w http.ResponseWriter, r *http.Request) {
	var kind services.AssetKind
	switch chi.URLParam(r, "kind") {
	case "logo":
		kind = services.AssetLogo
	case "hero":
		kind = services.AssetHero
	default:
		writeError(w, http.StatusBadRequest, "Unknown asset kind")
		return
	}

	maxSize := h.brandingService.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	urlPath, err := h.brandingService.Upload(r.Context(), kind, header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAssetTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, services.ErrUnsupportedImage):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": urlPath})
}

// ServeAsset streams a stored branding asset
// @Summary Serve a branding asset
// @Tags settings
// @Produce image/jpeg
// @Param name path string true "Asset file name"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /assets/{name} [get]
func (h *SettingsHandler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	path, err := h.brandingService.AssetFilePath(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Asset not found")
		return
	}
	http.ServeFile(w, r, path)
}
