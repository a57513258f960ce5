package providers

import (
	"github.com/samber/do/v2"

	"github.com/daleelapp/daleel-server/internal/logger"
	"github.com/daleelapp/daleel-server/internal/service"
)

// ProvideSyncService provides the tree/registry synchronization engine.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSyncService(storeHandle.Store, log.Logger), nil
}

// ProvideTaxonomyService provides the category tree service.
func ProvideTaxonomyService(i do.Injector) (*service.TaxonomyService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	syncService := do.MustInvoke[*service.SyncService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTaxonomyService(storeHandle.Store, syncService, log.Logger), nil
}

// ProvideRegistryService provides the business registry service.
func ProvideRegistryService(i do.Injector) (*service.RegistryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	syncService := do.MustInvoke[*service.SyncService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRegistryService(storeHandle.Store, syncService, log.Logger), nil
}
