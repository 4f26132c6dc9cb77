// Package review owns the spaced-repetition engine: selecting due and
// new cards into a bounded session queue, and evolving a card's
// scheduling state in response to a recall grade using a simplified
// SM-2 policy.
package review

import (
	"math"
	"time"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
)

// Grade is the recall quality reported after reviewing a card.
type Grade int

const (
	GradeAgain Grade = 0
	GradeHard  Grade = 1
	GradeGood  Grade = 2
	GradeEasy  Grade = 3
)

// Simplified SM-2 tuning.
const (
	easyBonus    = 0.15
	hardPenalty  = 0.15
	againPenalty = 0.2

	firstIntervalDays  = 1
	secondIntervalDays = 3

	// Again puts the card back in front of the user within the session.
	againRequeue = 10 * time.Minute

	maxReviewLimit = 500
	maxNewLimit    = 200
)

// NormalizeGrade coerces any out-of-range value to Good. Favoring
// availability of the learning flow over strictness is a deliberate
// choice, not an oversight.
func NormalizeGrade(g Grade) Grade {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return g
	default:
		return GradeGood
	}
}

// applyGrade mutates the card's scheduling state for one graded review.
// All timestamps derive from the single now instant.
func applyGrade(c *domain.Flashcard, grade Grade, now time.Time) {
	g := NormalizeGrade(grade)

	if c.Ease == 0 {
		c.Ease = domain.EaseStart
	}
	if c.IntervalDays < 0 {
		c.IntervalDays = 0
	}

	isFirst := c.Reps == 0 && (c.Status == domain.CardStatusNew || c.Status == "")

	if c.Status == "" || c.Status == domain.CardStatusNew {
		c.Status = domain.CardStatusLearning
	}

	switch g {
	case GradeAgain:
		// A lapse, not a successful rep.
		c.Lapses++
		c.Ease = math.Max(domain.EaseFloor, round2(c.Ease-againPenalty))
		c.IntervalDays = 0
		c.Status = domain.CardStatusLearning
		due := now.Add(againRequeue)
		c.DueAt = &due

	case GradeHard:
		c.Ease = math.Max(domain.EaseFloor, round2(c.Ease-hardPenalty))
		c.IntervalDays = nextIntervalDays(c.IntervalDays, c.Ease, g, isFirst)
		c.Status = statusForInterval(c.IntervalDays)
		due := now.Add(daysToDuration(c.IntervalDays))
		c.DueAt = &due
		c.Reps++

	case GradeGood:
		c.IntervalDays = nextIntervalDays(c.IntervalDays, c.Ease, g, isFirst)
		c.Status = statusForInterval(c.IntervalDays)
		due := now.Add(daysToDuration(c.IntervalDays))
		c.DueAt = &due
		c.Reps++

	case GradeEasy:
		c.Ease = round2(c.Ease + easyBonus)
		c.IntervalDays = nextIntervalDays(c.IntervalDays, c.Ease, g, isFirst)
		c.Status = domain.CardStatusReview
		due := now.Add(daysToDuration(c.IntervalDays))
		c.DueAt = &due
		c.Reps++
	}

	c.LastReviewedAt = &now
	c.Touch(now)
}

// nextIntervalDays computes the next spacing in days. First pass uses a
// fixed table, the second step a slightly larger one, then intervals
// grow multiplicatively with ease.
func nextIntervalDays(prev, ease float64, grade Grade, isFirst bool) float64 {
	if prev < 0 {
		prev = 0
	}
	if ease < domain.EaseFloor {
		ease = domain.EaseFloor
	}

	if isFirst || prev == 0 {
		if grade == GradeEasy {
			return 4
		}
		return firstIntervalDays
	}

	if prev <= firstIntervalDays {
		switch grade {
		case GradeHard:
			return 2
		case GradeEasy:
			return 5
		default:
			return secondIntervalDays
		}
	}

	switch grade {
	case GradeHard:
		return math.Max(1, math.Round(prev*1.2))
	case GradeEasy:
		return math.Max(2, math.Round(prev*ease*1.3))
	default:
		return math.Max(1, math.Round(prev*ease))
	}
}

// statusForInterval keeps short-spaced cards in learning; three days or
// more graduates to review.
func statusForInterval(intervalDays float64) domain.CardStatus {
	if intervalDays < 3 {
		return domain.CardStatusLearning
	}
	return domain.CardStatusReview
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(math.Round(days * 24 * float64(time.Hour)))
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}

func clampLimit(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
