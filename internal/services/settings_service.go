package services

import (
	"context"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/repository"
)

// SettingsService reads and writes the design and app settings
// documents, falling back to defaults when nothing has been saved yet.
type SettingsService struct {
	settingsRepo repository.SettingsRepo
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo repository.SettingsRepo) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// Design returns the design settings document
func (s *SettingsService) Design(ctx context.Context) (models.DesignSettings, error) {
	design := models.DefaultDesignSettings()
	_, err := s.settingsRepo.Get(ctx, models.SettingsKeyDesign, &design)
	return design, err
}

// SaveDesign stores the design settings document
func (s *SettingsService) SaveDesign(ctx context.Context, design models.DesignSettings) error {
	return s.settingsRepo.Set(ctx, models.SettingsKeyDesign, design)
}

// App returns the app settings document
func (s *SettingsService) App(ctx context.Context) (models.AppSettings, error) {
	app := models.DefaultAppSettings()
	_, err := s.settingsRepo.Get(ctx, models.SettingsKeyApp, &app)
	return app, err
}

// SaveApp stores the app settings document
func (s *SettingsService) SaveApp(ctx context.Context, app models.AppSettings) error {
	return s.settingsRepo.Set(ctx, models.SettingsKeyApp, app)
}
