package domain

import (
	"strings"
	"time"
)

// CardStatus is a flashcard's position in the scheduling lifecycle.
type CardStatus string

const (
	CardStatusNew       CardStatus = "new"
	CardStatusLearning  CardStatus = "learning"
	CardStatusReview    CardStatus = "review"
	CardStatusSuspended CardStatus = "suspended"
)

// Scheduling constants for the simplified SM-2 policy.
const (
	// EaseStart is the ease factor assigned to a card entering scheduling.
	EaseStart = 2.5
	// EaseFloor is the lower bound on ease; no grade sequence drops below it.
	EaseFloor = 1.3
)

// Flashcard is a fact to be memorized. It is the one canonical shape:
// any field aliasing from foreign records is resolved by Normalize at
// the write boundary, never at read time.
type Flashcard struct {
	Syncable

	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Hint     string   `json:"hint,omitempty"`
	ThemeID  string   `json:"themeId,omitempty"`
	Tags     []string `json:"tags"`
	// SourceID is a weak back-reference to the journal entry the card
	// was authored from. No ownership: deleting the entry leaves the
	// card intact.
	SourceID string `json:"sourceId,omitempty"`

	Status    CardStatus `json:"status"`
	Suspended bool       `json:"suspended"`

	DueAt          *time.Time `json:"dueAt,omitempty"`
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`

	Reps         int     `json:"reps"`
	Lapses       int     `json:"lapses"`
	Ease         float64 `json:"ease"`
	IntervalDays float64 `json:"intervalDays"`
}

// Normalize enforces the card invariants in place:
//   - empty status defaults to new
//   - suspended flag and suspended status imply each other
//   - nil tags become an empty slice, empty tag strings are dropped
//   - ease defaults to EaseStart and never sits below EaseFloor
//   - negative counters and intervals clamp to zero
//   - timestamps are initialized against now
//
// Call it on every write path.
func (c *Flashcard) Normalize(now time.Time) {
	if c.Status == "" {
		c.Status = CardStatusNew
	}
	if c.Status == CardStatusSuspended {
		c.Suspended = true
	} else if c.Suspended {
		c.Status = CardStatusSuspended
	}

	if c.Tags == nil {
		c.Tags = []string{}
	} else {
		kept := c.Tags[:0]
		for _, t := range c.Tags {
			if strings.TrimSpace(t) != "" {
				kept = append(kept, t)
			}
		}
		c.Tags = kept
	}

	if c.Ease == 0 {
		c.Ease = EaseStart
	}
	if c.Ease < EaseFloor {
		c.Ease = EaseFloor
	}
	if c.Reps < 0 {
		c.Reps = 0
	}
	if c.Lapses < 0 {
		c.Lapses = 0
	}
	if c.IntervalDays < 0 {
		c.IntervalDays = 0
	}

	c.InitTimestamps(now)
}

// IsDue reports whether the card is reviewable at the given instant.
// New and suspended cards are never due, regardless of DueAt.
func (c *Flashcard) IsDue(at time.Time) bool {
	if c.Suspended || c.Status == CardStatusSuspended || c.Status == CardStatusNew {
		return false
	}
	return c.DueAt != nil && !c.DueAt.After(at)
}

// Suspend takes the card out of scheduling.
func (c *Flashcard) Suspend(now time.Time) {
	c.Suspended = true
	c.Status = CardStatusSuspended
	c.Touch(now)
}

// Unsuspend returns the card to scheduling. A card that was suspended
// rejoins as review; the scheduler will re-space it on the next grade.
func (c *Flashcard) Unsuspend(now time.Time) {
	c.Suspended = false
	if c.Status == CardStatusSuspended {
		c.Status = CardStatusReview
	}
	c.Touch(now)
}

// SearchText returns the lowercased concatenation of the card's
// user-visible fields, used for substring search.
func (c *Flashcard) SearchText() string {
	parts := []string{c.Question, c.Answer, c.Hint, c.ThemeID, c.SourceID}
	parts = append(parts, c.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}
