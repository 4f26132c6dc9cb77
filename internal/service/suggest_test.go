package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
)

func TestSuggestCardsExplicitPairs(t *testing.T) {
	entry := &domain.JournalEntry{
		Title: "Interfaces",
		Notes: "Q: What is an interface?\nA: A method set contract\nQ: Who implements it?\nAnything with the methods",
	}

	drafts := SuggestCards(entry, 6)
	require.GreaterOrEqual(t, len(drafts), 2)

	assert.Equal(t, "What is an interface?", drafts[0].Question)
	assert.Equal(t, "A method set contract", drafts[0].Answer)
	assert.Equal(t, "Who implements it?", drafts[1].Question)
	assert.Equal(t, "Anything with the methods", drafts[1].Answer)
}

func TestSuggestCardsQuestionMarkLines(t *testing.T) {
	entry := &domain.JournalEntry{
		Notes: "Why do slices share backing arrays?\nBecause a slice is a view over an array\nWhen does append reallocate?\nWhen capacity is exceeded",
	}

	drafts := SuggestCards(entry, 6)
	require.GreaterOrEqual(t, len(drafts), 2)
	assert.Equal(t, "Why do slices share backing arrays?", drafts[0].Question)
	assert.Equal(t, "Because a slice is a view over an array", drafts[0].Answer)
}

func TestSuggestCardsFallbackFromTitle(t *testing.T) {
	entry := &domain.JournalEntry{
		Title: "Context cancellation",
		Type:  domain.EntryTypeStudy,
		Notes: "Read the context package docs.",
	}

	drafts := SuggestCards(entry, 6)
	require.NotEmpty(t, drafts)
	assert.Equal(t, "Explain: Context cancellation", drafts[0].Question)
	assert.Equal(t, "Read the context package docs.", drafts[0].Answer)
	assert.Equal(t, "Type: study", drafts[0].Hint)
}

func TestSuggestCardsBullets(t *testing.T) {
	entry := &domain.JournalEntry{
		Title: "Sync primitives",
		Notes: "- sync.Mutex guards shared state\n- sync.WaitGroup joins goroutines\n- ok",
	}

	drafts := SuggestCards(entry, 6)

	var bullets []CardDraft
	for _, d := range drafts {
		if d.Answer == placeholderAnswer && d.Hint == "Use your own words" {
			bullets = append(bullets, d)
		}
	}
	// The two-character "ok" bullet is too short to become a card.
	require.Len(t, bullets, 2)
	assert.Equal(t, "Define or summarize: sync.Mutex guards shared state", bullets[0].Question)
}

func TestSuggestCardsRespectsMax(t *testing.T) {
	entry := &domain.JournalEntry{
		Notes: "Q: one?\nA: 1\nQ: two?\nA: 2\nQ: three?\nA: 3",
	}

	drafts := SuggestCards(entry, 2)
	require.Len(t, drafts, 2)
	assert.Equal(t, "one?", drafts[0].Question)
	assert.Equal(t, "two?", drafts[1].Question)
}

func TestSuggestCardsDedupes(t *testing.T) {
	entry := &domain.JournalEntry{
		Notes: "Q: same?\nA: yes\nQ: same?\nA: yes",
	}

	drafts := SuggestCards(entry, 6)
	seen := make(map[string]bool)
	for _, d := range drafts {
		key := d.Question + "::" + d.Answer
		assert.False(t, seen[key], "duplicate draft %q", key)
		seen[key] = true
	}
}

func TestSuggestCardsEmptyEntry(t *testing.T) {
	drafts := SuggestCards(&domain.JournalEntry{}, 6)
	assert.Empty(t, drafts)
}

func TestSuggestCardsUnansweredQuestionGetsPlaceholder(t *testing.T) {
	entry := &domain.JournalEntry{Notes: "Q: What is escape analysis?"}

	drafts := SuggestCards(entry, 6)
	require.NotEmpty(t, drafts)
	assert.Equal(t, "What is escape analysis?", drafts[0].Question)
	assert.Equal(t, placeholderAnswer, drafts[0].Answer)
}
