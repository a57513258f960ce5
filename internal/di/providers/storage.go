package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/daleelapp/daleel-server/internal/config"
	"github.com/daleelapp/daleel-server/internal/logger"
	"github.com/daleelapp/daleel-server/internal/media/images"
)

// ImageStorages groups all upload storage services.
type ImageStorages struct {
	CategoryImages *images.Storage
	Logos          *images.Storage
	Files          *images.Storage
}

// ProvideImageStorages provides all upload storage services.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	categories, err := images.NewStorage(cfg.Media.BasePath, "categories", cfg.Media.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("category image storage: %w", err)
	}

	logos, err := images.NewStorage(cfg.Media.BasePath, "logos", cfg.Media.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("logo storage: %w", err)
	}

	files, err := images.NewStorage(cfg.Media.BasePath, "files", cfg.Media.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}

	log.Info("Media storages initialized", "path", cfg.Media.BasePath)

	return &ImageStorages{
		CategoryImages: categories,
		Logos:          logos,
		Files:          files,
	}, nil
}

// ProvideImageProcessor provides the upload image processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return images.NewProcessor(log.Logger), nil
}
