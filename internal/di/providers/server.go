package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/daleelapp/daleel-server/internal/api"
	"github.com/daleelapp/daleel-server/internal/config"
	"github.com/daleelapp/daleel-server/internal/logger"
	"github.com/daleelapp/daleel-server/internal/media/images"
	"github.com/daleelapp/daleel-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storages := do.MustInvoke[*ImageStorages](i)
	processor := do.MustInvoke[*images.Processor](i)

	services := &api.Services{
		Taxonomy: do.MustInvoke[*service.TaxonomyService](i),
		Registry: do.MustInvoke[*service.RegistryService](i),
		Sync:     do.MustInvoke[*service.SyncService](i),
	}

	storage := &api.StorageServices{
		CategoryImages: storages.CategoryImages,
		Logos:          storages.Logos,
		Files:          storages.Files,
	}

	handler := api.NewServer(cfg, storeHandle.Store, services, storage, processor, log.Logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: server}, nil
}
