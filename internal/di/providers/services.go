package providers

import (
	"github.com/samber/do/v2"

	"github.com/bluestormapp/bluestorm-server/internal/logger"
	"github.com/bluestormapp/bluestorm-server/internal/review"
	"github.com/bluestormapp/bluestorm-server/internal/service"
)

// ProvideFlashcardsService provides the flashcard authoring service.
func ProvideFlashcardsService(i do.Injector) (*service.Flashcards, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewFlashcards(storeHandle.Store, log.Logger), nil
}

// ProvideJournalService provides the journal service.
func ProvideJournalService(i do.Injector) (*service.Journal, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewJournal(storeHandle.Store, log.Logger), nil
}

// ProvideSettingsService provides the settings service.
func ProvideSettingsService(i do.Injector) (*service.Settings, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewSettings(storeHandle.Store), nil
}

// ProvideScheduler provides the review scheduler.
func ProvideScheduler(i do.Injector) (*review.Scheduler, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return review.NewScheduler(storeHandle.Store, log.Logger), nil
}
