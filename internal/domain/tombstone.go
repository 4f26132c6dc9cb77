package domain

import "time"

// Tombstone records a logical deletion so it propagates across snapshot
// merges. The ID is derived from collection and entity, which guarantees
// at most one tombstone per (collection, entity) pair; a newer deletion
// of the same entity supersedes the old marker under last-write-wins.
type Tombstone struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	EntityID   string    `json:"entityId"`
	DeletedAt  time.Time `json:"deletedAt"`
}

// TombstoneID derives the deterministic marker ID for an entity.
func TombstoneID(collection, entityID string) string {
	return collection + ":" + entityID
}

// NewTombstone builds a deletion marker for the given entity.
func NewTombstone(collection, entityID string, deletedAt time.Time) Tombstone {
	return Tombstone{
		ID:         TombstoneID(collection, entityID),
		Collection: collection,
		EntityID:   entityID,
		DeletedAt:  deletedAt,
	}
}
