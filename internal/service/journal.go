package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/id"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

// Journal manages logged work sessions.
type Journal struct {
	store  *store.Store
	logger *slog.Logger
}

// NewJournal wires the journal service.
func NewJournal(s *store.Store, logger *slog.Logger) *Journal {
	return &Journal{store: s, logger: logger}
}

// Upsert normalizes and stores an entry; a missing ID is generated.
func (j *Journal) Upsert(ctx context.Context, entry *domain.JournalEntry, now time.Time) (*domain.JournalEntry, error) {
	if entry.ID == "" {
		generated, err := id.Generate(id.PrefixJournal)
		if err != nil {
			return nil, err
		}
		entry.ID = generated
	}
	entry.Normalize(now)

	if err := j.store.JournalEntries.Put(ctx, entry.ID, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Get fetches one entry.
func (j *Journal) Get(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return j.store.JournalEntries.Get(ctx, entryID)
}

// Delete removes an entry, recording a tombstone when requested.
func (j *Journal) Delete(ctx context.Context, entryID string, tombstone bool, now time.Time) error {
	if tombstone {
		ts := domain.NewTombstone(domain.CollectionJournalEntries, entryID, now)
		if err := j.store.Tombstones.Put(ctx, ts.ID, &ts); err != nil {
			return err
		}
	}
	return j.store.JournalEntries.Delete(ctx, entryID)
}

// Recent returns entries whose session started within the last days,
// newest first, capped at limit.
func (j *Journal) Recent(ctx context.Context, now time.Time, days, limit int) ([]*domain.JournalEntry, error) {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 100
	}
	cutoff := now.AddDate(0, 0, -days)

	var out []*domain.JournalEntry
	for entry, err := range j.store.JournalEntries.List(ctx) {
		if err != nil {
			return nil, err
		}
		if entry.DateStart.Before(cutoff) {
			continue
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, k int) bool {
		return out[i].DateStart.After(out[k].DateStart)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// JournalStats aggregates recent journal activity.
type JournalStats struct {
	Entries       int                      `json:"entries"`
	TotalMinutes  int                      `json:"totalMinutes"`
	MinutesByType map[domain.EntryType]int `json:"minutesByType"`
}

// Stats sums entry counts and durations over the last days.
func (j *Journal) Stats(ctx context.Context, now time.Time, days int) (*JournalStats, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := now.AddDate(0, 0, -days)

	stats := &JournalStats{MinutesByType: make(map[domain.EntryType]int)}
	for entry, err := range j.store.JournalEntries.List(ctx) {
		if err != nil {
			return nil, err
		}
		if entry.DateStart.Before(cutoff) {
			continue
		}
		stats.Entries++
		stats.TotalMinutes += entry.DurationMinutes
		stats.MinutesByType[entry.Type] += entry.DurationMinutes
	}
	return stats, nil
}
