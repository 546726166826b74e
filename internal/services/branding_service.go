package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/jdeng/goheif"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/observability"
	"github.com/easygallery/server/internal/repository"
)

// AssetKind distinguishes the branding slots an upload can fill
type AssetKind string

const (
	AssetLogo AssetKind = "logo"
	AssetHero AssetKind = "hero"
)

var (
	ErrAssetTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedImage = errors.New("file is not a supported image format")
)

const (
	// Hero renditions are sized for a full-bleed header
	heroMaxDim  = 1920
	logoMaxDim  = 512
	jpegQuality = 85
)

// BrandingService stores uploaded gallery branding assets. The original
// upload is kept alongside a web-ready JPEG rendition with EXIF
// orientation applied, so portrait phone shots display upright.
type BrandingService struct {
	settingsRepo repository.SettingsRepo
	assetPath    string
	maxFileSize  int64
}

// NewBrandingService creates a new BrandingService
func NewBrandingService(settingsRepo repository.SettingsRepo, assetPath string, maxFileSizeMB int64) (*BrandingService, error) {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 20
	}
	if err := os.MkdirAll(assetPath, 0755); err != nil {
		return nil, fmt.Errorf("creating asset directory: %w", err)
	}

	return &BrandingService{
		settingsRepo: settingsRepo,
		assetPath:    assetPath,
		maxFileSize:  maxFileSizeMB * 1024 * 1024,
	}, nil
}

// MaxFileSize returns the upload size cap in bytes
func (s *BrandingService) MaxFileSize() int64 {
	return s.maxFileSize
}

// Upload stores an asset and returns the public URL path of the JPEG
// rendition. Hero uploads append to the design settings' hero list;
// logo uploads replace the logo URL.
func (s *BrandingService) Upload(ctx context.Context, kind AssetKind, filename string, data []byte) (string, error) {
	ctx, span := observability.StartServiceSpan(ctx, "branding", "Upload")
	defer span.End()

	if int64(len(data)) > s.maxFileSize {
		return "", ErrAssetTooLarge
	}

	img, err := decodeUpload(filename, data)
	if err != nil {
		observability.RecordError(span, err)
		return "", err
	}

	img = applyOrientation(img, readOrientation(data))

	maxDim := heroMaxDim
	if kind == AssetLogo {
		maxDim = logoMaxDim
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	assetID := uuid.New().String()

	// Keep the original next to the rendition for reprocessing
	originalName := fmt.Sprintf("%s_original%s", assetID, strings.ToLower(filepath.Ext(filename)))
	if err := os.WriteFile(filepath.Join(s.assetPath, originalName), data, 0644); err != nil {
		observability.RecordError(span, err)
		return "", fmt.Errorf("storing original: %w", err)
	}

	renditionName := fmt.Sprintf("%s.jpg", assetID)
	out, err := os.Create(filepath.Join(s.assetPath, renditionName))
	if err != nil {
		observability.RecordError(span, err)
		return "", fmt.Errorf("creating rendition: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		os.Remove(filepath.Join(s.assetPath, renditionName))
		observability.RecordError(span, err)
		return "", fmt.Errorf("encoding rendition: %w", err)
	}

	url := "/assets/" + renditionName
	if err := s.updateDesignSettings(ctx, kind, url); err != nil {
		observability.RecordError(span, err)
		return "", err
	}

	observability.SetSuccess(span)
	return url, nil
}

func (s *BrandingService) updateDesignSettings(ctx context.Context, kind AssetKind, url string) error {
	design := models.DefaultDesignSettings()
	if _, err := s.settingsRepo.Get(ctx, models.SettingsKeyDesign, &design); err != nil {
		return err
	}

	switch kind {
	case AssetLogo:
		design.LogoURL = url
	case AssetHero:
		design.HeroImageURLs = append(design.HeroImageURLs, url)
	}

	return s.settingsRepo.Set(ctx, models.SettingsKeyDesign, design)
}

// AssetFilePath resolves an asset filename inside the asset directory,
// rejecting path traversal.
func (s *BrandingService) AssetFilePath(name string) (string, error) {
	clean := filepath.Base(name)
	if clean != name || clean == "." || clean == "" {
		return "", fmt.Errorf("invalid asset name")
	}
	return filepath.Join(s.assetPath, clean), nil
}

func decodeUpload(filename string, data []byte) (image.Image, error) {
	if isHEIC(filename) {
		img, err := goheif.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

func isHEIC(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".heic" || ext == ".heif"
}

// readOrientation pulls the EXIF orientation tag, defaulting to 1
// (upright) when missing or unreadable.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Rotate270(imaging.FlipH(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Rotate90(imaging.FlipH(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
