package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bluestormapp/bluestorm-server/internal/config"
	"github.com/bluestormapp/bluestorm-server/internal/logger"
	"github.com/bluestormapp/bluestorm-server/internal/snapshot"
	"github.com/bluestormapp/bluestorm-server/internal/watcher"
)

// InboxWatcherHandle wraps the inbox watcher with its lifecycle context.
type InboxWatcherHandle struct {
	Watcher *watcher.InboxWatcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *InboxWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideInboxWatcher provides the snapshot inbox watcher, started in
// the background. Disabled by configuration it provides an empty handle.
func ProvideInboxWatcher(i do.Injector) (*InboxWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	engine := do.MustInvoke[*snapshot.Engine](i)

	if !cfg.Snapshot.WatchInbox || cfg.Snapshot.InboxPath == "" {
		log.Info("Snapshot inbox watcher disabled")
		return &InboxWatcherHandle{}, nil
	}

	w, err := watcher.New(engine, log.Logger, watcher.Options{
		Path:             cfg.Snapshot.InboxPath,
		ArchiveProcessed: true,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Inbox watcher stopped", "error", err)
		}
	}()

	log.Info("Snapshot inbox watcher started", "path", cfg.Snapshot.InboxPath)
	return &InboxWatcherHandle{Watcher: w, cancel: cancel}, nil
}
