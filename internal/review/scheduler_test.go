package review

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

func newTestScheduler(t *testing.T) (*Scheduler, *store.Store) {
	t.Helper()
	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return NewScheduler(s, nil), s
}

func putCard(t *testing.T, s *store.Store, c *domain.Flashcard) {
	t.Helper()
	require.NoError(t, s.Flashcards.Put(context.Background(), c.ID, c))
}

func card(id string, status domain.CardStatus, mutate func(*domain.Flashcard)) *domain.Flashcard {
	c := &domain.Flashcard{
		Syncable: domain.Syncable{
			ID:        id,
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Question: "q " + id,
		Answer:   "a " + id,
		Status:   status,
		Ease:     domain.EaseStart,
		Tags:     []string{},
	}
	if status == domain.CardStatusSuspended {
		c.Suspended = true
	}
	if mutate != nil {
		mutate(c)
	}
	return c
}

func TestSelectDueCards_OrderedByDueAt(t *testing.T) {
	// Earlier-due cards come first.
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t1 := now.Add(-2 * time.Hour)
	t2 := now.Add(-1 * time.Hour)
	putCard(t, st, card("fc-b", domain.CardStatusReview, func(c *domain.Flashcard) { c.DueAt = &t2 }))
	putCard(t, st, card("fc-a", domain.CardStatusReview, func(c *domain.Flashcard) { c.DueAt = &t1 }))

	due, err := sched.SelectDueCards(ctx, now, "", 50)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "fc-a", due[0].ID)
	assert.Equal(t, "fc-b", due[1].ID)
}

func TestSelectDueCards_ExcludesNewSuspendedFuture(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	putCard(t, st, card("fc-due", domain.CardStatusReview, func(c *domain.Flashcard) { c.DueAt = &past }))
	putCard(t, st, card("fc-new", domain.CardStatusNew, func(c *domain.Flashcard) { c.DueAt = &past }))
	putCard(t, st, card("fc-susp", domain.CardStatusSuspended, func(c *domain.Flashcard) { c.DueAt = &past }))
	putCard(t, st, card("fc-later", domain.CardStatusReview, func(c *domain.Flashcard) { c.DueAt = &future }))

	due, err := sched.SelectDueCards(ctx, now, "", 50)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "fc-due", due[0].ID)
}

func TestSelectDueCards_ThemeFilterAndCap(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 5 {
		due := now.Add(-time.Duration(i+1) * time.Minute)
		putCard(t, st, card(fmt.Sprintf("fc-%d", i), domain.CardStatusReview, func(c *domain.Flashcard) {
			c.DueAt = &due
			c.ThemeID = "go"
		}))
	}
	otherDue := now.Add(-time.Hour)
	putCard(t, st, card("fc-other", domain.CardStatusReview, func(c *domain.Flashcard) {
		c.DueAt = &otherDue
		c.ThemeID = "rust"
	}))

	due, err := sched.SelectDueCards(ctx, now, "go", 3)
	require.NoError(t, err)
	assert.Len(t, due, 3)
	for _, c := range due {
		assert.Equal(t, "go", c.ThemeID)
	}
}

func TestSelectNewCards_FIFO(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	putCard(t, st, card("fc-newer", domain.CardStatusNew, func(c *domain.Flashcard) { c.CreatedAt = newer }))
	putCard(t, st, card("fc-older", domain.CardStatusNew, func(c *domain.Flashcard) { c.CreatedAt = older }))

	fresh, err := sched.SelectNewCards(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "fc-older", fresh[0].ID)
	assert.Equal(t, "fc-newer", fresh[1].ID)
}

func TestBuildReviewQueue_PromotesNewCards(t *testing.T) {
	// A new card entering the queue becomes learning with
	// a due date one day out.
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	putCard(t, st, card("fc-c1", domain.CardStatusNew, nil))

	q, err := sched.BuildReviewQueue(ctx, QueueOptions{ReviewLimit: 50, NewLimit: 10, Now: now})
	require.NoError(t, err)

	require.Len(t, q.Cards, 1)
	assert.Equal(t, QueueCounts{Due: 0, New: 1, Total: 1}, q.Counts)
	assert.Equal(t, domain.CardStatusLearning, q.Cards[0].Status)
	assert.Equal(t, now.Add(24*time.Hour), *q.Cards[0].DueAt)

	// The promotion is persisted, not just in the returned queue.
	stored, err := st.Flashcards.Get(ctx, "fc-c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CardStatusLearning, stored.Status)
	assert.Equal(t, now, stored.UpdatedAt)
}

func TestBuildReviewQueue_DueTakePriority(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 4 {
		due := now.Add(-time.Duration(i+1) * time.Minute)
		putCard(t, st, card(fmt.Sprintf("fc-due-%d", i), domain.CardStatusReview, func(c *domain.Flashcard) {
			c.DueAt = &due
		}))
	}
	for i := range 4 {
		putCard(t, st, card(fmt.Sprintf("fc-new-%d", i), domain.CardStatusNew, nil))
	}

	q, err := sched.BuildReviewQueue(ctx, QueueOptions{ReviewLimit: 5, NewLimit: 10, Now: now})
	require.NoError(t, err)

	// Four due cards, one slot left for new even though the new limit
	// allows ten.
	assert.Equal(t, QueueCounts{Due: 4, New: 1, Total: 5}, q.Counts)
	for _, c := range q.Cards[:4] {
		assert.NotEqual(t, domain.CardStatusNew, c.Status)
	}
}

func TestBuildReviewQueue_NewLimitRespected(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 8 {
		putCard(t, st, card(fmt.Sprintf("fc-new-%d", i), domain.CardStatusNew, nil))
	}

	q, err := sched.BuildReviewQueue(ctx, QueueOptions{ReviewLimit: 50, NewLimit: 3, Now: now})
	require.NoError(t, err)
	assert.Equal(t, QueueCounts{Due: 0, New: 3, Total: 3}, q.Counts)
}

func TestGradeCard_GoodAdvancesInterval(t *testing.T) {
	// Mature card graded Good.
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	putCard(t, st, card("fc-c2", domain.CardStatusReview, func(c *domain.Flashcard) {
		c.Ease = 2.5
		c.IntervalDays = 10
		c.Reps = 3
	}))

	updated, err := sched.GradeCard(ctx, "fc-c2", GradeGood, now)
	require.NoError(t, err)
	assert.Equal(t, float64(25), updated.IntervalDays)
	assert.Equal(t, now.Add(25*24*time.Hour), *updated.DueAt)
	assert.Equal(t, domain.CardStatusReview, updated.Status)
	assert.Equal(t, 4, updated.Reps)

	stored, err := st.Flashcards.Get(ctx, "fc-c2")
	require.NoError(t, err)
	assert.Equal(t, float64(25), stored.IntervalDays)
}

func TestGradeCard_AgainResetsInterval(t *testing.T) {
	// Again resets the interval and requeues in ten minutes.
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	putCard(t, st, card("fc-c3", domain.CardStatusReview, func(c *domain.Flashcard) {
		c.Ease = 2.5
		c.IntervalDays = 10
		c.Reps = 3
	}))

	updated, err := sched.GradeCard(ctx, "fc-c3", GradeAgain, now)
	require.NoError(t, err)
	assert.Zero(t, updated.IntervalDays)
	assert.Equal(t, now.Add(10*time.Minute), *updated.DueAt)
	assert.Equal(t, domain.CardStatusLearning, updated.Status)
	assert.Equal(t, 1, updated.Lapses)
	assert.Equal(t, 3, updated.Reps)
}

func TestGradeCard_SuspendedIsNoOp(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()

	putCard(t, st, card("fc-susp", domain.CardStatusSuspended, func(c *domain.Flashcard) {
		c.Reps = 2
	}))

	updated, err := sched.GradeCard(ctx, "fc-susp", GradeGood, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Reps)
	assert.Equal(t, domain.CardStatusSuspended, updated.Status)
}

func TestGradeCard_NotFound(t *testing.T) {
	sched, _ := newTestScheduler(t)

	_, err := sched.GradeCard(context.Background(), "fc-missing", GradeGood, time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearchCards_TextFilter(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()

	putCard(t, st, card("fc-1", domain.CardStatusReview, func(c *domain.Flashcard) {
		c.Question = "What is a Goroutine?"
	}))
	putCard(t, st, card("fc-2", domain.CardStatusReview, func(c *domain.Flashcard) {
		c.Answer = "Channels synchronize goroutines"
	}))
	putCard(t, st, card("fc-3", domain.CardStatusReview, func(c *domain.Flashcard) {
		c.Question = "What is LWW?"
	}))

	got, err := sched.SearchCards(ctx, SearchOptions{Query: "goroutine"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchCards_PriorityOrdering(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(72 * time.Hour)

	putCard(t, st, card("fc-review", domain.CardStatusReview, func(c *domain.Flashcard) { c.DueAt = &future }))
	putCard(t, st, card("fc-new", domain.CardStatusNew, nil))
	putCard(t, st, card("fc-learning", domain.CardStatusLearning, func(c *domain.Flashcard) { c.DueAt = &future }))
	putCard(t, st, card("fc-duenow", domain.CardStatusReview, func(c *domain.Flashcard) { c.DueAt = &past }))

	got, err := sched.SearchCards(ctx, SearchOptions{Now: now})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "fc-duenow", got[0].ID)
	assert.Equal(t, "fc-new", got[1].ID)
	assert.Equal(t, "fc-learning", got[2].ID)
	assert.Equal(t, "fc-review", got[3].ID)
}

func TestSearchCards_SuspendedOnlyWhenRequested(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()

	putCard(t, st, card("fc-live", domain.CardStatusReview, nil))
	putCard(t, st, card("fc-susp", domain.CardStatusSuspended, nil))

	got, err := sched.SearchCards(ctx, SearchOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fc-live", got[0].ID)

	got, err = sched.SearchCards(ctx, SearchOptions{Status: domain.CardStatusSuspended})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fc-susp", got[0].ID)
}

func TestSearchCards_RecentlyUpdatedFirstWithinPriority(t *testing.T) {
	sched, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	putCard(t, st, card("fc-old", domain.CardStatusLearning, func(c *domain.Flashcard) {
		c.UpdatedAt = now.Add(-48 * time.Hour)
		future := now.Add(72 * time.Hour)
		c.DueAt = &future
	}))
	putCard(t, st, card("fc-recent", domain.CardStatusLearning, func(c *domain.Flashcard) {
		c.UpdatedAt = now.Add(-time.Hour)
		future := now.Add(72 * time.Hour)
		c.DueAt = &future
	}))

	got, err := sched.SearchCards(ctx, SearchOptions{Now: now})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "fc-recent", got[0].ID)
	assert.Equal(t, "fc-old", got[1].ID)
}
