// Package store is the local document store: one Badger database holding
// every collection, with typed CRUD per collection and raw record access
// for snapshot export and merge.
//
// Keys are "{collection}:{id}". Typed entities and raw access share the
// same key space, so a record merged raw is immediately visible through
// its typed accessor. There are no persisted secondary indexes; filtered
// queries scan the collection, which stays cheap at the thousands of
// records this system holds.
package store

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Flashcards      *Entity[domain.Flashcard]
	JournalEntries  *Entity[domain.JournalEntry]
	Tombstones      *Entity[domain.Tombstone]
	Settings        *Entity[domain.Setting]
	ProgramWeeks    *Entity[domain.ProgramWeek]
	ProgramProgress *Entity[domain.ProgramProgress]
	Skills          *Entity[domain.Skill]
	Issues          *Entity[domain.Issue]
	Projects        *Entity[domain.Project]
	Books           *Entity[domain.Book]
	BookProgress    *Entity[domain.BookProgress]
	ReadingSessions *Entity[domain.ReadingSession]
	BookQuotes      *Entity[domain.BookQuote]
}

// New opens the database at path and wires the typed collections.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's own logging is too chatty
	opts.SyncWrites = true       // each write durable before it resolves
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{db: db, logger: logger}

	s.Flashcards = NewEntity[domain.Flashcard](s, domain.CollectionFlashcards)
	s.JournalEntries = NewEntity[domain.JournalEntry](s, domain.CollectionJournalEntries)
	s.Tombstones = NewEntity[domain.Tombstone](s, domain.CollectionTombstones)
	s.Settings = NewEntity[domain.Setting](s, domain.CollectionSettings)
	s.ProgramWeeks = NewEntity[domain.ProgramWeek](s, domain.CollectionProgramWeeks)
	s.ProgramProgress = NewEntity[domain.ProgramProgress](s, domain.CollectionProgramProgress)
	s.Skills = NewEntity[domain.Skill](s, domain.CollectionSkills)
	s.Issues = NewEntity[domain.Issue](s, domain.CollectionIssues)
	s.Projects = NewEntity[domain.Project](s, domain.CollectionProjects)
	s.Books = NewEntity[domain.Book](s, domain.CollectionBooks)
	s.BookProgress = NewEntity[domain.BookProgress](s, domain.CollectionBookProgress)
	s.ReadingSessions = NewEntity[domain.ReadingSession](s, domain.CollectionReadingSessions)
	s.BookQuotes = NewEntity[domain.BookQuote](s, domain.CollectionBookQuotes)

	if logger != nil {
		logger.Info("document store opened", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing document store")
	}
	return s.db.Close()
}
