package domain

// Collection names of the BlueStorm document store. These are the keys
// of the snapshot exchange format, so they never change casually.
const (
	CollectionProgramWeeks    = "program_weeks"
	CollectionProgramProgress = "program_progress"
	CollectionJournalEntries  = "journal_entries"
	CollectionFlashcards      = "flashcards"
	CollectionSkills          = "skills"
	CollectionIssues          = "issues"
	CollectionProjects        = "projects"
	CollectionSettings        = "settings"
	CollectionBooks           = "books"
	CollectionBookProgress    = "book_progress"
	CollectionReadingSessions = "reading_sessions"
	CollectionBookQuotes      = "book_quotes"
	CollectionTombstones      = "tombstones"
)

// Collections is the canonical registry, in merge order. Tombstones come
// first so deletion markers are reconciled before any other collection.
// Snapshot export emits every name listed here even when the collection
// is empty.
var Collections = []string{
	CollectionTombstones,
	CollectionProgramWeeks,
	CollectionProgramProgress,
	CollectionJournalEntries,
	CollectionFlashcards,
	CollectionSkills,
	CollectionIssues,
	CollectionProjects,
	CollectionSettings,
	CollectionBooks,
	CollectionBookProgress,
	CollectionReadingSessions,
	CollectionBookQuotes,
}

// KnownCollection reports whether name is part of the registry.
func KnownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}
