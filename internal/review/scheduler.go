package review

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

// Scheduler selects cards for review sessions and applies grades.
// The reference time for an operation is captured once by the caller
// and threaded through every comparison, so a long scan never mixes
// due/not-due classifications against a moving clock.
type Scheduler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewScheduler wires the scheduler to the document store.
func NewScheduler(s *store.Store, logger *slog.Logger) *Scheduler {
	return &Scheduler{store: s, logger: logger}
}

// QueueOptions bounds one review session.
type QueueOptions struct {
	ThemeID     string // empty means all themes
	ReviewLimit int    // total session cap
	NewLimit    int    // cap on new cards entering the session
	Now         time.Time
}

// QueueCounts summarizes a built queue.
type QueueCounts struct {
	Due   int `json:"due"`
	New   int `json:"new"`
	Total int `json:"total"`
}

// Queue is an ephemeral ordered review session. It is built fresh per
// request and never persisted.
type Queue struct {
	CreatedAt time.Time           `json:"createdAt"`
	ThemeID   string              `json:"themeId"`
	Counts    QueueCounts         `json:"counts"`
	Cards     []*domain.Flashcard `json:"cards"`
}

// SelectDueCards returns cards reviewable at now, earliest due first
// (ties broken by ID for determinism), capped at maxCount.
func (s *Scheduler) SelectDueCards(ctx context.Context, now time.Time, themeID string, maxCount int) ([]*domain.Flashcard, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	var due []*domain.Flashcard
	for card, err := range s.store.Flashcards.List(ctx) {
		if err != nil {
			return nil, err
		}
		if themeID != "" && card.ThemeID != themeID {
			continue
		}
		if card.IsDue(now) {
			due = append(due, card)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(*due[j].DueAt) {
			return due[i].DueAt.Before(*due[j].DueAt)
		}
		return due[i].ID < due[j].ID
	})

	if len(due) > maxCount {
		due = due[:maxCount]
	}
	return due, nil
}

// SelectNewCards returns cards still in new status, oldest created
// first for FIFO fairness, capped at maxCount.
func (s *Scheduler) SelectNewCards(ctx context.Context, themeID string, maxCount int) ([]*domain.Flashcard, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	var fresh []*domain.Flashcard
	for card, err := range s.store.Flashcards.List(ctx) {
		if err != nil {
			return nil, err
		}
		if card.Status != domain.CardStatusNew || card.Suspended {
			continue
		}
		if themeID != "" && card.ThemeID != themeID {
			continue
		}
		fresh = append(fresh, card)
	}

	sort.Slice(fresh, func(i, j int) bool {
		if !fresh[i].CreatedAt.Equal(fresh[j].CreatedAt) {
			return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
		}
		return fresh[i].ID < fresh[j].ID
	})

	if len(fresh) > maxCount {
		fresh = fresh[:maxCount]
	}
	return fresh, nil
}

// BuildReviewQueue assembles a session: due cards first up to the
// review limit, then new cards filling leftover room up to the new
// limit. Every new card entering the queue is promoted to learning and
// given a near due date, so a card touched by a session is never
// silently new forever even if the user walks away without grading.
func (s *Scheduler) BuildReviewQueue(ctx context.Context, opts QueueOptions) (*Queue, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	reviewLimit := clampLimit(opts.ReviewLimit, maxReviewLimit)
	newLimit := clampLimit(opts.NewLimit, maxNewLimit)

	due, err := s.SelectDueCards(ctx, now, opts.ThemeID, reviewLimit)
	if err != nil {
		return nil, err
	}

	remaining := reviewLimit - len(due)
	if newLimit < remaining {
		remaining = newLimit
	}

	fresh, err := s.SelectNewCards(ctx, opts.ThemeID, remaining)
	if err != nil {
		return nil, err
	}

	for _, card := range fresh {
		if err := s.promoteToLearning(ctx, card, now); err != nil {
			return nil, err
		}
	}

	queue := &Queue{
		CreatedAt: now,
		ThemeID:   opts.ThemeID,
		Counts: QueueCounts{
			Due:   len(due),
			New:   len(fresh),
			Total: len(due) + len(fresh),
		},
		Cards: append(due, fresh...),
	}

	if s.logger != nil {
		s.logger.Debug("review queue built",
			"theme", opts.ThemeID, "due", queue.Counts.Due, "new", queue.Counts.New)
	}
	return queue, nil
}

// promoteToLearning transitions a new card drawn into a session:
// learning status, scheduling fields initialized, due tomorrow unless
// already set.
func (s *Scheduler) promoteToLearning(ctx context.Context, c *domain.Flashcard, now time.Time) error {
	if c.Status != domain.CardStatusNew {
		return nil
	}

	c.Status = domain.CardStatusLearning
	if c.Ease == 0 {
		c.Ease = domain.EaseStart
	}
	if c.DueAt == nil {
		due := now.Add(firstIntervalDays * 24 * time.Hour)
		c.DueAt = &due
	}
	c.Touch(now)

	return s.store.Flashcards.Put(ctx, c.ID, c)
}

// GradeCard applies a recall grade to a card and persists the result
// with a single upsert. Grading a suspended card is a silent no-op, not
// an error. Unknown IDs fail with the not-found sentinel.
func (s *Scheduler) GradeCard(ctx context.Context, cardID string, grade Grade, now time.Time) (*domain.Flashcard, error) {
	card, err := s.store.Flashcards.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.Suspended || card.Status == domain.CardStatusSuspended {
		return card, nil
	}

	if now.IsZero() {
		now = time.Now()
	}
	applyGrade(card, grade, now)

	if err := s.store.Flashcards.Put(ctx, card.ID, card); err != nil {
		return nil, err
	}
	return card, nil
}

// SearchOptions filters a non-session browse of the card set.
type SearchOptions struct {
	ThemeID string
	Status  domain.CardStatus // empty means any
	Query   string            // case-insensitive substring
	Limit   int               // defaults to 200
	Now     time.Time
}

// SearchCards filters and orders cards for browsing. Results are
// ordered by priority (due now, then new, learning, review, suspended
// last), then most recently updated first. Read-only.
func (s *Scheduler) SearchCards(ctx context.Context, opts SearchOptions) ([]*domain.Flashcard, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 200
	}

	query := strings.ToLower(strings.TrimSpace(opts.Query))
	includeSuspended := opts.Status == domain.CardStatusSuspended

	var matched []*domain.Flashcard
	for card, err := range s.store.Flashcards.List(ctx) {
		if err != nil {
			return nil, err
		}
		if opts.ThemeID != "" && card.ThemeID != opts.ThemeID {
			continue
		}
		if opts.Status != "" && card.Status != opts.Status {
			continue
		}
		if !includeSuspended && (card.Suspended || card.Status == domain.CardStatusSuspended) {
			continue
		}
		if query != "" && !strings.Contains(card.SearchText(), query) {
			continue
		}
		matched = append(matched, card)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		pi, pj := browsePriority(matched[i], now), browsePriority(matched[j], now)
		if pi != pj {
			return pi < pj
		}
		return matched[i].MergeStamp().After(matched[j].MergeStamp())
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// browsePriority orders browse results: due now first, suspended last.
func browsePriority(c *domain.Flashcard, now time.Time) int {
	if c.Suspended || c.Status == domain.CardStatusSuspended {
		return 9
	}
	if c.IsDue(now) {
		return 0
	}
	switch c.Status {
	case domain.CardStatusNew:
		return 1
	case domain.CardStatusLearning:
		return 2
	case domain.CardStatusReview:
		return 3
	default:
		return 4
	}
}
