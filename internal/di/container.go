// Package di provides dependency injection configuration for the Daleel server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/daleelapp/daleel-server/internal/config"
	"github.com/daleelapp/daleel-server/internal/di/providers"
	"github.com/daleelapp/daleel-server/internal/logger"
	"github.com/daleelapp/daleel-server/internal/media/images"
	"github.com/daleelapp/daleel-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideImageStorages)
	do.Provide(injector, providers.ProvideImageProcessor)

	// Business services
	do.Provide(injector, providers.ProvideSyncService)
	do.Provide(injector, providers.ProvideTaxonomyService)
	do.Provide(injector, providers.ProvideRegistryService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is
// listening. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ImageStorages](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*images.Processor](injector); err != nil {
		return err
	}

	if _, err := do.Invoke[*service.SyncService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.TaxonomyService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.RegistryService](injector); err != nil {
		return err
	}

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
