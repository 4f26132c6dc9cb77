package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	apperr "github.com/bluestormapp/bluestorm-server/internal/errors"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

const appName = "BlueStorm"

// PreferenceStore persists the device-local preference blob that rides
// along with snapshots but is not a merged collection.
type PreferenceStore interface {
	Load(ctx context.Context) (map[string]any, error)
	Save(ctx context.Context, prefs map[string]any) error
	Clear(ctx context.Context) error
}

// CacheClearer empties an opaque cache collaborator during a full
// reset. The engine never reads the cache; it only clears it.
type CacheClearer interface {
	ClearCache(ctx context.Context) error
}

// Engine exports, imports, and wipes the whole store. Whole-store
// operations are serialized behind a mutex so two merges can never
// interleave; individual record writes inside a merge are each
// independently durable, so a crash mid-import leaves a partial merge
// that a re-import self-heals.
type Engine struct {
	mu     sync.Mutex
	store  *store.Store
	prefs  PreferenceStore
	cache  CacheClearer
	logger *slog.Logger
}

// NewEngine wires the merge engine. prefs and cache may be nil when the
// deployment has no local preference blob or cache to manage.
func NewEngine(s *store.Store, prefs PreferenceStore, cache CacheClearer, logger *slog.Logger) *Engine {
	return &Engine{store: s, prefs: prefs, cache: cache, logger: logger}
}

// Export reads every record of every registered collection and returns
// a self-contained snapshot. Read-only; empty collections appear as
// empty lists, never omitted keys.
func (e *Engine) Export(ctx context.Context) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := &Snapshot{
		Meta: Meta{
			Version:     Version,
			App:         appName,
			ExportedAt:  time.Now().UTC(),
			Collections: domain.Collections,
		},
		Data: make(map[string][]map[string]any, len(domain.Collections)),
	}

	for _, collection := range domain.Collections {
		records, err := e.store.RawAll(ctx, collection)
		if err != nil {
			return nil, err
		}
		snap.Data[collection] = records
	}

	if e.prefs != nil {
		prefs, err := e.prefs.Load(ctx)
		if err != nil {
			return nil, err
		}
		snap.LocalPreferences = prefs
	}

	return snap, nil
}

// Import merges a foreign snapshot into the local store. The merge is
// idempotent and never loses a deletion: a tombstone present in either
// replica results in absence of the entity everywhere after the merge.
func (e *Engine) Import(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.Data == nil {
		return apperr.Validation("snapshot is missing its data map")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.prefs != nil && snap.LocalPreferences != nil {
		if err := e.prefs.Save(ctx, snap.LocalPreferences); err != nil {
			return err
		}
	}

	// Tombstone index: union of local and incoming markers, keeping the
	// latest deletion per (collection, entity). Built before any record
	// moves, because both the skip rule and the final sweep consult it.
	localTombs, err := e.store.RawAll(ctx, domain.CollectionTombstones)
	if err != nil {
		return err
	}
	incomingTombs := snap.Data[domain.CollectionTombstones]
	tombIndex := buildTombstoneIndex(localTombs, incomingTombs)

	// Tombstones are themselves LWW-mergeable records; merge that
	// collection first so the union survives the import.
	if err := e.mergeCollection(ctx, domain.CollectionTombstones, incomingTombs, nil); err != nil {
		return err
	}

	for _, collection := range domain.Collections {
		if collection == domain.CollectionTombstones {
			continue
		}
		if err := e.mergeCollection(ctx, collection, snap.Data[collection], tombIndex); err != nil {
			return err
		}
		if err := e.sweepTombstoned(ctx, collection, tombIndex); err != nil {
			return err
		}
	}

	if e.logger != nil {
		e.logger.Info("snapshot imported",
			"exportedAt", snap.Meta.ExportedAt, "tombstones", len(tombIndex))
	}
	return nil
}

// ClearAll wipes every collection, the local preference blob, and the
// cache collaborator. Irreversible; an explicit user-triggered reset,
// not part of normal sync flow.
func (e *Engine) ClearAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, collection := range domain.Collections {
		if err := e.store.ClearCollection(ctx, collection); err != nil {
			return err
		}
	}
	if e.prefs != nil {
		if err := e.prefs.Clear(ctx); err != nil {
			return err
		}
	}
	if e.cache != nil {
		if err := e.cache.ClearCache(ctx); err != nil {
			return err
		}
	}

	if e.logger != nil {
		e.logger.Warn("all data cleared")
	}
	return nil
}

// mergeCollection applies the generic LWW rule for one collection.
// Incoming records under a tombstone are skipped entirely; otherwise a
// record is inserted when absent and overwrites the local copy only
// when strictly newer. The rule is commutative, so per-record order
// never affects the outcome.
func (e *Engine) mergeCollection(ctx context.Context, collection string, incoming []map[string]any, tombIndex map[tombKey]time.Time) error {
	if len(incoming) == 0 {
		return nil
	}

	localRecords, err := e.store.RawAll(ctx, collection)
	if err != nil {
		return err
	}
	local := make(map[string]map[string]any, len(localRecords))
	for _, r := range localRecords {
		if id, ok := recordID(r); ok {
			local[id] = r
		}
	}

	for _, record := range incoming {
		id, ok := recordID(record)
		if !ok {
			continue // partial malformed records never abort the import
		}
		if tombIndex != nil {
			if _, deleted := tombIndex[tombKey{collection: collection, entityID: id}]; deleted {
				continue
			}
		}

		existing, found := local[id]
		if !found {
			if err := e.store.RawPut(ctx, collection, id, record); err != nil {
				return err
			}
			local[id] = record
			continue
		}

		if mergeStamp(record).After(mergeStamp(existing)) {
			if err := e.store.RawPut(ctx, collection, id, record); err != nil {
				return err
			}
			local[id] = record
		}
	}
	return nil
}

// sweepTombstoned removes every local record whose id appears in the
// tombstone index. This retroactively deletes entities removed on the
// other replica even when this replica never saw them as incoming.
func (e *Engine) sweepTombstoned(ctx context.Context, collection string, tombIndex map[tombKey]time.Time) error {
	if len(tombIndex) == 0 {
		return nil
	}

	localRecords, err := e.store.RawAll(ctx, collection)
	if err != nil {
		return err
	}
	for _, record := range localRecords {
		id, ok := recordID(record)
		if !ok {
			continue
		}
		if _, deleted := tombIndex[tombKey{collection: collection, entityID: id}]; deleted {
			if err := e.store.RawDelete(ctx, collection, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildTombstoneIndex unions local and incoming markers, keyed by
// (collection, entity), keeping the latest deletedAt. Ties keep the
// first-seen marker, local before incoming, which is deterministic.
func buildTombstoneIndex(local, incoming []map[string]any) map[tombKey]time.Time {
	index := make(map[tombKey]time.Time)
	for _, record := range local {
		addTombstone(index, record)
	}
	for _, record := range incoming {
		addTombstone(index, record)
	}
	return index
}

func addTombstone(index map[tombKey]time.Time, record map[string]any) {
	key, ok := tombstoneTarget(record)
	if !ok {
		return
	}
	at := deletionStamp(record)
	if prev, seen := index[key]; !seen || at.After(prev) {
		index[key] = at
	}
}
