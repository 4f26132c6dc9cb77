// Package di provides dependency injection configuration for the
// BlueStorm server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bluestormapp/bluestorm-server/internal/config"
	"github.com/bluestormapp/bluestorm-server/internal/di/providers"
	"github.com/bluestormapp/bluestorm-server/internal/logger"
	"github.com/bluestormapp/bluestorm-server/internal/review"
	"github.com/bluestormapp/bluestorm-server/internal/service"
	"github.com/bluestormapp/bluestorm-server/internal/snapshot"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSnapshotEngine)

	// Business services
	do.Provide(injector, providers.ProvideFlashcardsService)
	do.Provide(injector, providers.ProvideJournalService)
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideScheduler)

	// Workers
	do.Provide(injector, providers.ProvideInboxWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap triggers lazy initialization of every service so startup
// failures surface immediately instead of on first request.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*snapshot.Engine](injector)

	_ = do.MustInvoke[*service.Flashcards](injector)
	_ = do.MustInvoke[*service.Journal](injector)
	_ = do.MustInvoke[*service.Settings](injector)
	_ = do.MustInvoke[*review.Scheduler](injector)

	_ = do.MustInvoke[*providers.InboxWatcherHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
