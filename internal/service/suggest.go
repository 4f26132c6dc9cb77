package service

import (
	"regexp"
	"strings"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
)

var (
	questionLine = regexp.MustCompile(`(?i)^q[:\-]\s*`)
	answerLine   = regexp.MustCompile(`(?i)^a[:\-]\s*`)
	bulletLine   = regexp.MustCompile(`^[-•*]\s*`)
)

const placeholderAnswer = "(to be completed)"

// SuggestCards proposes editable card drafts from a journal entry's
// notes without saving anything. Heuristics, in order: explicit Q:/A:
// line pairs, a line ending in "?" answered by the next line, a single
// title/notes card, and definition cards from bullet points.
func SuggestCards(entry *domain.JournalEntry, max int) []CardDraft {
	if max <= 0 {
		max = 6
	}
	title := strings.TrimSpace(entry.Title)
	lines := cleanLines(entry.Notes)

	var out []CardDraft

	// Explicit Q:/A: pairs.
	for i := 0; i < len(lines) && len(out) < max; i++ {
		if !questionLine.MatchString(lines[i]) {
			continue
		}
		q := strings.TrimSpace(questionLine.ReplaceAllString(lines[i], ""))
		var a string
		if i+1 < len(lines) {
			next := lines[i+1]
			if answerLine.MatchString(next) {
				a = strings.TrimSpace(answerLine.ReplaceAllString(next, ""))
				i++
			} else {
				a = next
			}
		}
		if q != "" {
			if a == "" {
				a = placeholderAnswer
			}
			out = append(out, CardDraft{Question: q, Answer: a})
		}
	}
	if len(out) >= max {
		return dedupeDrafts(out, max)
	}

	// A question line answered by whatever follows it.
	for i := 0; i+1 < len(lines) && len(out) < max; i++ {
		if strings.HasSuffix(lines[i], "?") && len(lines[i+1]) >= 3 {
			out = append(out, CardDraft{Question: lines[i], Answer: lines[i+1]})
		}
	}
	if len(out) >= 2 {
		return dedupeDrafts(out, max)
	}

	// Fallback: one card from the whole entry.
	if title != "" || entry.Notes != "" {
		question := "Explain what you learned today"
		if title != "" {
			question = "Explain: " + title
		}
		answer := strings.TrimSpace(entry.Notes)
		if answer == "" {
			answer = placeholderAnswer
		}
		hint := ""
		if entry.Type != "" {
			hint = "Type: " + string(entry.Type)
		}
		out = append(out, CardDraft{Question: question, Answer: answer, Hint: hint})
	}

	// Definition cards from bullet points.
	for _, line := range lines {
		if len(out) >= max {
			break
		}
		if !bulletLine.MatchString(line) {
			continue
		}
		text := bulletLine.ReplaceAllString(line, "")
		if len(text) < 6 {
			continue
		}
		out = append(out, CardDraft{
			Question: "Define or summarize: " + text,
			Answer:   placeholderAnswer,
			Hint:     "Use your own words",
		})
	}

	return dedupeDrafts(out, max)
}

func cleanLines(text string) []string {
	var out []string
	for line := range strings.SplitSeq(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func dedupeDrafts(drafts []CardDraft, max int) []CardDraft {
	seen := make(map[string]bool, len(drafts))
	var out []CardDraft
	for _, d := range drafts {
		key := strings.ToLower(d.Question) + "::" + strings.ToLower(d.Answer)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
		if len(out) == max {
			break
		}
	}
	return out
}
