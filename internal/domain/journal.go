package domain

import (
	"strings"
	"time"
)

// EntryType classifies what a journal entry's time was spent on.
type EntryType string

const (
	EntryTypeStudy  EntryType = "study"
	EntryTypeCode   EntryType = "code"
	EntryTypeDesign EntryType = "design"
	EntryTypeDoc    EntryType = "doc"
	EntryTypeReview EntryType = "review"
	EntryTypeOther  EntryType = "other"
)

// JournalEntry is one logged work session: what was done, for how long,
// optionally linked to a program week or task.
type JournalEntry struct {
	Syncable

	Title   string    `json:"title"`
	Notes   string    `json:"notes"`
	Type    EntryType `json:"type"`
	ThemeID string    `json:"themeId"`
	WeekID  string    `json:"weekId,omitempty"`
	TodoID  string    `json:"todoId,omitempty"`

	DateStart       time.Time `json:"dateStart"`
	DurationMinutes int       `json:"durationMinutes"`
}

// Normalize enforces entry defaults in place: type defaults to study,
// title and notes are trimmed, a zero DateStart becomes now, negative
// durations clamp to zero. Call it on every write path.
func (e *JournalEntry) Normalize(now time.Time) {
	e.Title = strings.TrimSpace(e.Title)
	e.Notes = strings.TrimSpace(e.Notes)
	if e.Type == "" {
		e.Type = EntryTypeStudy
	}
	if e.DateStart.IsZero() {
		e.DateStart = now
	}
	if e.DurationMinutes < 0 {
		e.DurationMinutes = 0
	}
	e.InitTimestamps(now)
}
