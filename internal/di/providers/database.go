package providers

import (
	"github.com/samber/do/v2"

	"github.com/daleelapp/daleel-server/internal/config"
	"github.com/daleelapp/daleel-server/internal/logger"
	"github.com/daleelapp/daleel-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Store.DataPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Store.DataPath)

	return &StoreHandle{Store: db}, nil
}
