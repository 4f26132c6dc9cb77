// Package snapshot produces and consumes whole-store snapshots,
// reconciling two independently evolved replicas without a central
// authority. Merging is last-write-wins per record, with tombstones
// making deletions terminal: a delete in either replica always beats a
// concurrent update.
package snapshot

import (
	"time"
)

// Version is the snapshot schema version.
const Version = 1

// Meta describes a snapshot document.
type Meta struct {
	Version     int       `json:"version"`
	App         string    `json:"app"`
	ExportedAt  time.Time `json:"exportedAt"`
	Collections []string  `json:"collections"`
}

// Snapshot is a portable, self-contained serialization of the entire
// store. Every registered collection appears as a key in Data even when
// empty. It is an I/O artifact, never persisted as its own entity.
type Snapshot struct {
	Meta             Meta                        `json:"meta"`
	LocalPreferences map[string]any              `json:"localPreferences,omitempty"`
	// Data is schema-optional so a missing map reaches Import's own
	// validation instead of being rejected at the HTTP layer.
	Data map[string][]map[string]any `json:"data" required:"false"`
}

// tombKey identifies a logical deletion in the tombstone index.
type tombKey struct {
	collection string
	entityID   string
}

// recordID extracts a usable string ID from a raw record. Records
// without one are skipped by the merge, never an error.
func recordID(record map[string]any) (string, bool) {
	v, ok := record["id"]
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// parseTime decodes a timestamp field from a raw record. Unparseable or
// absent values collapse to the zero time, the epoch fallback of the
// LWW rule.
func parseTime(v any) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// mergeStamp returns the LWW comparison time of a raw record:
// updatedAt, falling back to createdAt, falling back to zero.
func mergeStamp(record map[string]any) time.Time {
	if t := parseTime(record["updatedAt"]); !t.IsZero() {
		return t
	}
	return parseTime(record["createdAt"])
}

// deletionStamp returns when a raw tombstone record took effect:
// deletedAt, falling back to updatedAt, then createdAt.
func deletionStamp(record map[string]any) time.Time {
	if t := parseTime(record["deletedAt"]); !t.IsZero() {
		return t
	}
	return mergeStamp(record)
}

// tombstoneTarget reads which entity a raw tombstone record deletes.
// Foreign snapshots may carry the legacy "storeName" field name; both
// spellings are accepted at this boundary.
func tombstoneTarget(record map[string]any) (tombKey, bool) {
	collection, _ := record["collection"].(string)
	if collection == "" {
		collection, _ = record["storeName"].(string)
	}
	entityID, _ := record["entityId"].(string)
	if collection == "" || entityID == "" {
		return tombKey{}, false
	}
	return tombKey{collection: collection, entityID: entityID}, true
}
