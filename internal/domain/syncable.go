// Package domain defines the entities of the BlueStorm learning tracker.
//
// Every persisted record carries camelCase JSON field names so that the
// snapshot exchange format stays compatible across replicas. Timestamps
// are always passed in explicitly by the caller rather than read from an
// ambient clock, so a single operation classifies every record against
// the same instant.
package domain

import "time"

// Syncable provides the common fields for entities that participate in
// snapshot synchronization. Embed it in any record that gets merged
// across replicas.
type Syncable struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
}

// Touch sets UpdatedAt to the given instant. Call it whenever the
// embedding entity changes.
func (s *Syncable) Touch(now time.Time) {
	s.UpdatedAt = now
}

// InitTimestamps sets CreatedAt and UpdatedAt to the given instant.
// Call it when creating a new entity. An already-set CreatedAt is kept,
// so re-normalizing an existing record is safe.
func (s *Syncable) InitTimestamps(now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
}

// MergeStamp returns the timestamp used for last-write-wins comparison:
// UpdatedAt, falling back to CreatedAt, falling back to the zero time.
func (s *Syncable) MergeStamp() time.Time {
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.CreatedAt
}
