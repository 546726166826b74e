package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/observability"
	"github.com/easygallery/server/internal/repository"
)

// ErrNoSelectedPhotos is returned when an export has nothing to copy
var ErrNoSelectedPhotos = errors.New("no selected photos for this user")

// Batch variables break on spaces and shell metacharacters, so prefixes
// and filenames are squeezed to this set.
var unsafeBatChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// ExportService builds the Windows batch script a photographer runs
// inside the original shoot folder to copy the client's selected photos
// into a SELECTED_WITH_RSF subfolder. The script matches files by name
// prefix, so edited variants (same basename, different extension) come
// along with the originals.
type ExportService struct {
	photoRepo     repository.PhotoRepo
	selectionRepo repository.SelectionRepo
	userRepo      repository.UserRepo
	metrics       *observability.BusinessMetrics
}

// NewExportService creates a new ExportService
func NewExportService(
	photoRepo repository.PhotoRepo,
	selectionRepo repository.SelectionRepo,
	userRepo repository.UserRepo,
) *ExportService {
	return &ExportService{
		photoRepo:     photoRepo,
		selectionRepo: selectionRepo,
		userRepo:      userRepo,
	}
}

// SetMetrics sets the business metrics instruments
func (s *ExportService) SetMetrics(metrics *observability.BusinessMetrics) {
	s.metrics = metrics
}

// CopyScript builds the batch script for a user's selected photos.
// Returns the download filename and the script body with CRLF line
// endings and no BOM, which cmd.exe requires for @echo off to work.
func (s *ExportService) CopyScript(ctx context.Context, userID string) (string, []byte, error) {
	ctx, span := observability.StartServiceSpan(ctx, "export", "CopyScript")
	defer span.End()
	span.SetAttributes(observability.UserID(userID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return "", nil, err
	}
	if user == nil {
		return "", nil, models.ErrUserNotFound
	}

	selections, err := s.selectionRepo.GetAllForUser(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return "", nil, err
	}

	selected := make(map[string]bool)
	for _, sel := range selections {
		if sel.Status == models.StatusSelected {
			selected[sel.PhotoID] = true
		}
	}
	if len(selected) == 0 {
		return "", nil, ErrNoSelectedPhotos
	}

	photos, err := s.photoRepo.GetAllForUser(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return "", nil, err
	}

	prefixes := collectPrefixes(photos, selected)
	if len(prefixes) == 0 {
		return "", nil, ErrNoSelectedPhotos
	}

	script := buildCopyScript(prefixes)

	nameSource := user.Email
	if nameSource == "" {
		nameSource = user.ID
	}
	filename := fmt.Sprintf("copy_selected_with_rsf_%s.bat", sanitizeBat(nameSource))

	if s.metrics != nil {
		s.metrics.RecordExport(ctx, userID, len(prefixes))
	}

	observability.SetSuccess(span)
	return filename, []byte(script), nil
}

// collectPrefixes derives the deduplicated, sanitized filename prefixes
// for the selected photos, keeping catalog order.
func collectPrefixes(photos []*models.Photo, selected map[string]bool) []string {
	seen := make(map[string]bool)
	var prefixes []string
	for _, photo := range photos {
		if !selected[photo.ID] {
			continue
		}
		base := photo.BaseName()
		if base == "" {
			continue
		}
		prefix := sanitizeBat(base)
		if prefix == "" || seen[prefix] {
			continue
		}
		seen[prefix] = true
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}

func sanitizeBat(s string) string {
	return unsafeBatChars.ReplaceAllString(s, "_")
}

func buildCopyScript(prefixes []string) string {
	var lines []string

	lines = append(lines,
		"@echo off",
		"chcp 65001 >nul",
		"setlocal EnableDelayedExpansion",
		"",
		"REM =============================================================",
		"REM    Copies selected photos into the SELECTED_WITH_RSF folder",
		"REM    Run this script inside the original shoot folder.",
		"REM =============================================================",
		"",
		`set "SOURCE=%cd%"`,
		`set "DEST=%SOURCE%\SELECTED_WITH_RSF"`,
		`if not exist "%DEST%" mkdir "%DEST%"`,
		"",
		"REM --- Prefix list ---",
		fmt.Sprintf("set PREFIX_COUNT=%d", len(prefixes)),
	)

	for i, prefix := range prefixes {
		lines = append(lines, fmt.Sprintf("set PREFIX[%d]=%s", i+1, prefix))
	}

	lines = append(lines,
		"",
		"set /a TOTAL=%PREFIX_COUNT%",
		"set /a COPIED=0",
		"",
		"echo Copying %TOTAL% selected photo groups...",
		"echo.",
		"",
		"for /L %%I in (1,1,%PREFIX_COUNT%) do (",
		`    set "CURRENT_PREFIX=!PREFIX[%%I]!"`,
		`    call :COPY_PREFIX "%%I" "!CURRENT_PREFIX!"`,
		")",
		"",
		"echo.",
		"echo All %TOTAL% prefix groups processed.",
		"echo Files saved inside: SELECTED_WITH_RSF",
		"pause",
		"exit /b",
		"",
		":COPY_PREFIX",
		"setlocal",
		`set "INDEX=%~1"`,
		`set "PREFIX=%~2"`,
		"set /a COPIED+=1",
		"echo [%COPIED%/%TOTAL%] Searching for prefix: %PREFIX%*",
		"",
		"REM --- Exclude the destination folder from the search ---",
		`for /F "delims=" %%F in ('dir /B /S "%PREFIX%*" ^| findstr /V /I "\SELECTED_WITH_RSF\"') do (`,
		`    echo Copying "%%~nxF" ...`,
		`    set "FULLDIR=%%~dpF"`,
		`    set "RELPATH=!FULLDIR:%SOURCE%=!"`,
		`    if "!RELPATH:~0,1!"=="\" set "RELPATH=!RELPATH:~1!"`,
		"    if defined RELPATH (",
		`        set "TARGETDIR=%DEST%\!RELPATH!"`,
		`        if not exist "!TARGETDIR!" mkdir "!TARGETDIR!"`,
		`        copy /-Y "%%F" "!TARGETDIR!" >nul`,
		"    ) else (",
		`        copy /-Y "%%F" "%DEST%" >nul`,
		"    )",
		")",
		"endlocal",
		"exit /b",
	)

	return strings.Join(lines, "\r\n")
}
