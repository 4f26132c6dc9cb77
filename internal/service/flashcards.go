// Package service holds the CRUD-over-store operations that surround
// the two engines: flashcard authoring, journal entries, and settings.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/id"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

// journalTag marks cards authored from a journal entry.
const journalTag = "journal"

// Flashcards manages the card collection outside of review sessions.
type Flashcards struct {
	store  *store.Store
	logger *slog.Logger
}

// NewFlashcards wires the flashcard service.
func NewFlashcards(s *store.Store, logger *slog.Logger) *Flashcards {
	return &Flashcards{store: s, logger: logger}
}

// Create normalizes and stores a card; a missing ID is generated.
func (f *Flashcards) Create(ctx context.Context, card *domain.Flashcard, now time.Time) (*domain.Flashcard, error) {
	if card.ID == "" {
		generated, err := id.Generate(id.PrefixFlashcard)
		if err != nil {
			return nil, err
		}
		card.ID = generated
	}
	card.Normalize(now)

	if err := f.store.Flashcards.Put(ctx, card.ID, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Get fetches one card.
func (f *Flashcards) Get(ctx context.Context, cardID string) (*domain.Flashcard, error) {
	return f.store.Flashcards.Get(ctx, cardID)
}

// Upsert normalizes and stores a card that already has an ID.
func (f *Flashcards) Upsert(ctx context.Context, card *domain.Flashcard, now time.Time) (*domain.Flashcard, error) {
	if card.ID == "" {
		return f.Create(ctx, card, now)
	}
	card.Normalize(now)
	if err := f.store.Flashcards.Put(ctx, card.ID, card); err != nil {
		return nil, err
	}
	return card, nil
}

// BulkUpsert stores a batch of cards. Cards without an ID get one.
func (f *Flashcards) BulkUpsert(ctx context.Context, cards []*domain.Flashcard, now time.Time) ([]*domain.Flashcard, error) {
	for _, card := range cards {
		if _, err := f.Upsert(ctx, card, now); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// Delete removes a card. With tombstone set, the deletion is recorded
// so it propagates through snapshot merges; without it the card can be
// resurrected by an older replica.
func (f *Flashcards) Delete(ctx context.Context, cardID string, tombstone bool, now time.Time) error {
	if tombstone {
		ts := domain.NewTombstone(domain.CollectionFlashcards, cardID, now)
		if err := f.store.Tombstones.Put(ctx, ts.ID, &ts); err != nil {
			return err
		}
	}
	return f.store.Flashcards.Delete(ctx, cardID)
}

// Suspend takes a card out of scheduling.
func (f *Flashcards) Suspend(ctx context.Context, cardID string, now time.Time) (*domain.Flashcard, error) {
	card, err := f.store.Flashcards.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}
	card.Suspend(now)
	if err := f.store.Flashcards.Put(ctx, card.ID, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Unsuspend returns a card to scheduling.
func (f *Flashcards) Unsuspend(ctx context.Context, cardID string, now time.Time) (*domain.Flashcard, error) {
	card, err := f.store.Flashcards.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}
	card.Unsuspend(now)
	if err := f.store.Flashcards.Put(ctx, card.ID, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Stats summarizes the card set at one instant.
type Stats struct {
	Total     int `json:"total"`
	Due       int `json:"due"`
	New       int `json:"new"`
	Learning  int `json:"learning"`
	Review    int `json:"review"`
	Suspended int `json:"suspended"`
}

// Stats counts cards per state, classifying dueness against now.
func (f *Flashcards) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}
	for card, err := range f.store.Flashcards.List(ctx) {
		if err != nil {
			return nil, err
		}
		stats.Total++
		if card.IsDue(now) {
			stats.Due++
		}
		switch card.Status {
		case domain.CardStatusNew:
			stats.New++
		case domain.CardStatusLearning:
			stats.Learning++
		case domain.CardStatusReview:
			stats.Review++
		case domain.CardStatusSuspended:
			stats.Suspended++
		}
	}
	return stats, nil
}

// CardDraft is an unsaved card proposal, either user-written or
// auto-suggested from a journal entry's notes.
type CardDraft struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Hint     string   `json:"hint,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	ThemeID  string   `json:"themeId,omitempty"`
}

// CreateForEntry saves drafts as cards linked to a journal entry: the
// card inherits the entry's theme unless the draft sets one, carries
// the entry ID as its source, and is tagged as journal-authored.
// Drafts with neither question nor answer are dropped.
func (f *Flashcards) CreateForEntry(ctx context.Context, entryID string, drafts []CardDraft, now time.Time) ([]*domain.Flashcard, error) {
	entry, err := f.store.JournalEntries.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}

	var cards []*domain.Flashcard
	for _, d := range drafts {
		if d.Question == "" && d.Answer == "" {
			continue
		}
		themeID := d.ThemeID
		if themeID == "" {
			themeID = entry.ThemeID
		}
		card := &domain.Flashcard{
			Question: d.Question,
			Answer:   d.Answer,
			Hint:     d.Hint,
			ThemeID:  themeID,
			SourceID: entry.ID,
			Tags:     dedupeTags(append(append([]string{}, d.Tags...), journalTag)),
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return nil, nil
	}
	if _, err := f.BulkUpsert(ctx, cards, now); err != nil {
		return nil, err
	}

	if f.logger != nil {
		f.logger.Info("cards created from journal entry", "entry", entryID, "count", len(cards))
	}
	return cards, nil
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
