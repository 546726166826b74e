package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/easygallery/server/internal/config"
	"github.com/easygallery/server/internal/drive"
	"github.com/easygallery/server/internal/handlers"
	custommw "github.com/easygallery/server/internal/middleware"
	"github.com/easygallery/server/internal/observability"
	"github.com/easygallery/server/internal/repository"
	"github.com/easygallery/server/internal/services"
)

const (
	serviceName    = "easygallery-server"
	serviceVersion = "1.0.0"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		observability.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Initialize telemetry
	telemetry, err := observability.Initialize(ctx, observability.NewConfig(serviceName, serviceVersion))
	if err != nil {
		observability.Errorf("Failed to initialize telemetry: %v", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			observability.Warnf("Telemetry shutdown: %v", err)
		}
	}()

	// Initialize database
	db, err := openDatabase(cfg)
	if err != nil {
		observability.Errorf("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	syncJobRepo := repository.NewSyncJobRepository(db)
	sessionRepo := repository.NewWebSessionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// Drive client
	driveClient, err := newDriveClient(cfg)
	if err != nil {
		observability.Errorf("Failed to initialize Drive client: %v", err)
		os.Exit(1)
	}

	// Metrics instruments
	businessMetrics, err := observability.NewBusinessMetrics()
	if err != nil {
		observability.Warnf("Business metrics unavailable: %v", err)
	}
	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		observability.Warnf("HTTP metrics unavailable: %v", err)
	}

	// WebSocket hub
	hub := services.NewWebSocketHub()
	go hub.Run()

	// Services
	authService := services.NewAuthService(userRepo, sessionRepo, activityRepo, cfg.Session.TTL())
	authService.SetMetrics(businessMetrics)

	userService := services.NewUserService(userRepo, activityRepo)

	syncService := services.NewSyncService(driveClient, photoRepo, userRepo, syncJobRepo, activityRepo, cfg.Drive.BatchSize, cfg.Drive.ProgressInterval)
	syncService.SetWebSocketHub(hub)
	syncService.SetMetrics(businessMetrics)

	selectionService := services.NewSelectionService(selectionRepo, photoRepo, userRepo, feedbackRepo, activityRepo)
	selectionService.SetWebSocketHub(hub)
	selectionService.SetMetrics(businessMetrics)

	exportService := services.NewExportService(photoRepo, selectionRepo, userRepo)
	exportService.SetMetrics(businessMetrics)

	settingsService := services.NewSettingsService(settingsRepo)

	brandingService, err := services.NewBrandingService(settingsRepo, cfg.Branding.AssetPath, cfg.Branding.MaxFileSizeMB)
	if err != nil {
		observability.Errorf("Failed to initialize branding service: %v", err)
		os.Exit(1)
	}

	// Expired sessions pile up otherwise
	go sessionJanitor(ctx, authService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Session.CookieName)
	galleryHandler := handlers.NewGalleryHandler(photoRepo, selectionService, feedbackRepo, authService)
	syncHandler := handlers.NewSyncHandler(syncService)
	adminHandler := handlers.NewAdminHandler(userService, selectionService, exportService, authService, photoRepo, activityRepo, feedbackRepo)
	settingsHandler := handlers.NewSettingsHandler(settingsService, brandingService)
	wsHandler := handlers.NewWebSocketHandler(hub)
	healthHandler := handlers.NewHealthHandler()

	// Setup router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(observability.TracingMiddleware(serviceName))
	if httpMetrics != nil {
		r.Use(observability.MetricsMiddleware(httpMetrics))
	}

	sessionAuth := custommw.SessionAuth(authService, cfg.Session.CookieName)

	// Public routes
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)
	r.Post("/api/auth/login", authHandler.Login)
	r.Get("/api/settings/design", settingsHandler.GetDesign)
	r.Get("/api/settings/app", settingsHandler.GetApp)
	r.Get("/assets/{name}", settingsHandler.ServeAsset)

	// Session routes
	r.Group(func(r chi.Router) {
		r.Use(sessionAuth)

		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/auth/me", authHandler.Me)
		r.Get("/ws", wsHandler.HandleConnection)

		r.Route("/api/gallery", func(r chi.Router) {
			r.Get("/photos", galleryHandler.Photos)
			r.Post("/selections", galleryHandler.SetSelection)
			r.Post("/finalize", galleryHandler.Finalize)
			r.Post("/resume", galleryHandler.SaveResume)
			r.Post("/reset", galleryHandler.ResetOwn)
			r.Post("/feedback", galleryHandler.PostFeedback)
		})
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(sessionAuth)
		r.Use(custommw.AdminOnly)

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users", adminHandler.CreateUser)
			r.Get("/users/{id}", adminHandler.GetUser)
			r.Put("/users/{id}", adminHandler.UpdateUser)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
			r.Post("/users/{id}/reopen", adminHandler.ReopenSelection)
			r.Post("/users/{id}/reset-selections", adminHandler.ResetSelections)
			r.Get("/users/{id}/copy-script", adminHandler.CopyScript)
			r.Get("/users/{id}/sync", syncHandler.LatestForUser)

			r.Post("/sync", syncHandler.Trigger)
			r.Get("/sync/jobs/{id}", syncHandler.JobStatus)

			r.Get("/activity", adminHandler.ActivityLogs)
			r.Get("/feedback", adminHandler.Feedback)

			r.Put("/settings/design", settingsHandler.SaveDesign)
			r.Put("/settings/app", settingsHandler.SaveApp)
			r.Post("/branding/{kind}", settingsHandler.UploadBranding)
		})
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Sync runs can take a while
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		observability.Infof("EasyGallery server starting on %s", cfg.ServerAddress)
		observability.Infof("Branding asset path: %s", cfg.Branding.AssetPath)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Errorf("Server error: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		observability.Errorf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	observability.Info("Server stopped")
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if cfg.UsePostgres() {
		observability.Info("Using PostgreSQL database")
		return repository.NewPostgresDB(cfg.DatabaseURL)
	}
	observability.Info("Using SQLite database")
	return repository.NewSQLiteDB(cfg.DatabasePath)
}

// sessionJanitor deletes expired web sessions once an hour
func sessionJanitor(ctx context.Context, authService *services.AuthService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := authService.CleanupExpiredSessions(ctx); err != nil {
				observability.Warnf("Session cleanup failed: %v", err)
			} else if n > 0 {
				observability.Debugf("Removed %d expired sessions", n)
			}
		}
	}
}

func newDriveClient(cfg *config.Config) (services.DriveLister, error) {
	if cfg.Drive.CredentialsFile != "" {
		creds, err := os.ReadFile(cfg.Drive.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return drive.NewServiceAccountClient("", creds, cfg.Drive.PageSize)
	}
	if cfg.Drive.APIKey == "" {
		return nil, errors.New("no Drive credential configured (set DRIVE_API_KEY or DRIVE_CREDENTIALS_FILE)")
	}
	return drive.NewClient("", cfg.Drive.APIKey, cfg.Drive.PageSize), nil
}
