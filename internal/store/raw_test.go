package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
)

func TestRawAll_EmptyCollection(t *testing.T) {
	s := newTestStore(t)

	records, err := s.RawAll(context.Background(), domain.CollectionSkills)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRawPut_VisibleToTypedAccessor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := map[string]any{
		"id":        "fc-raw",
		"question":  "raw question",
		"answer":    "raw answer",
		"status":    "review",
		"ease":      2.5,
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	}
	require.NoError(t, s.RawPut(ctx, domain.CollectionFlashcards, "fc-raw", record))

	card, err := s.Flashcards.Get(ctx, "fc-raw")
	require.NoError(t, err)
	assert.Equal(t, "raw question", card.Question)
	assert.Equal(t, domain.CardStatusReview, card.Status)
}

func TestRawAll_SeesTypedWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	card := testCard("fc-1")
	require.NoError(t, s.Flashcards.Put(ctx, card.ID, card))

	records, err := s.RawAll(ctx, domain.CollectionFlashcards)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fc-1", records[0]["id"])
}

func TestRawDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RawPut(ctx, domain.CollectionProjects, "p-1", map[string]any{"id": "p-1"}))
	require.NoError(t, s.RawDelete(ctx, domain.CollectionProjects, "p-1"))
	require.NoError(t, s.RawDelete(ctx, domain.CollectionProjects, "p-1")) // idempotent

	records, err := s.RawAll(ctx, domain.CollectionProjects)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClearCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"fc-1", "fc-2"} {
		require.NoError(t, s.Flashcards.Put(ctx, id, testCard(id)))
	}
	require.NoError(t, s.RawPut(ctx, domain.CollectionSkills, "sk-1", map[string]any{"id": "sk-1"}))

	require.NoError(t, s.ClearCollection(ctx, domain.CollectionFlashcards))

	cards, err := s.RawAll(ctx, domain.CollectionFlashcards)
	require.NoError(t, err)
	assert.Empty(t, cards)

	// Other collections untouched.
	skills, err := s.RawAll(ctx, domain.CollectionSkills)
	require.NoError(t, err)
	assert.Len(t, skills, 1)
}

func TestClearCollection_TombstoneKeysWithColons(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ts := domain.NewTombstone(domain.CollectionFlashcards, "fc-1", time.Now())
	require.NoError(t, s.Tombstones.Put(ctx, ts.ID, &ts))

	require.NoError(t, s.ClearCollection(ctx, domain.CollectionTombstones))

	n, err := s.Tombstones.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
