package api

import (
	"github.com/daleelapp/daleel-server/internal/media/images"
	"github.com/daleelapp/daleel-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Taxonomy *service.TaxonomyService
	Registry *service.RegistryService
	Sync     *service.SyncService
}

// StorageServices groups file storage handlers used by the API server.
type StorageServices struct {
	CategoryImages *images.Storage // Root and subcategory tile images
	Logos          *images.Storage // Business logos
	Files          *images.Storage // Business attachment files
}
