package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bluestormapp/bluestorm-server/internal/api"
	"github.com/bluestormapp/bluestorm-server/internal/config"
	"github.com/bluestormapp/bluestorm-server/internal/logger"
	"github.com/bluestormapp/bluestorm-server/internal/review"
	"github.com/bluestormapp/bluestorm-server/internal/service"
	"github.com/bluestormapp/bluestorm-server/internal/snapshot"
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

// ProvideHTTPServer provides the HTTP server, started in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	services := &api.Services{
		Flashcards: do.MustInvoke[*service.Flashcards](i),
		Journal:    do.MustInvoke[*service.Journal](i),
		Settings:   do.MustInvoke[*service.Settings](i),
		Scheduler:  do.MustInvoke[*review.Scheduler](i),
		Snapshot:   do.MustInvoke[*snapshot.Engine](i),
	}

	handler := api.NewServer(storeHandle.Store, services, cfg.Review, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
