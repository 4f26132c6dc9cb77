package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bluestormapp/bluestorm-server/internal/config"
	"github.com/bluestormapp/bluestorm-server/internal/logger"
	"github.com/bluestormapp/bluestorm-server/internal/snapshot"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)
	return &StoreHandle{Store: db}, nil
}

// ProvideSnapshotEngine provides the snapshot merge engine with its
// file-backed preference store and export cache.
func ProvideSnapshotEngine(i do.Injector) (*snapshot.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	prefs := snapshot.NewFilePreferences(filepath.Join(cfg.Data.BasePath, "preferences.json"))
	cache := snapshot.NewDirCache(filepath.Join(cfg.Data.BasePath, "cache"))

	return snapshot.NewEngine(storeHandle.Store, prefs, cache, log.Logger), nil
}
