// Package main seeds the database with demo learning data.
//
// It creates a few program weeks, flashcards in mixed scheduling
// states, journal entries, and one tracked book, so the review queue
// and stats endpoints have something to show.
//
// Usage:
//
//	DATA_PATH=~/BlueStorm/data go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/id"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/BlueStorm/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	now := time.Now()

	seedWeeks(ctx, s, now)
	seedCards(ctx, s, now)
	seedJournal(ctx, s, now)
	seedBook(ctx, s, now)

	fmt.Println("Done.")
}

func seedWeeks(ctx context.Context, s *store.Store, now time.Time) {
	weeks := []struct {
		title string
		tasks []string
	}{
		{"Go fundamentals", []string{"Read the tour", "Write a CLI", "Learn slices and maps"}},
		{"Concurrency", []string{"Goroutines and channels", "select statement", "Worker pool exercise"}},
		{"HTTP services", []string{"net/http basics", "Middleware", "Build a small API"}},
	}

	for n, w := range weeks {
		week := &domain.ProgramWeek{
			Title:  w.title,
			Number: n + 1,
		}
		week.ID = id.MustGenerate(id.PrefixWeek)
		for _, label := range w.tasks {
			week.Tasks = append(week.Tasks, domain.ProgramTask{
				ID:    id.MustGenerate(id.PrefixTask),
				Label: label,
			})
		}
		week.InitTimestamps(now)

		if err := s.ProgramWeeks.Put(ctx, week.ID, week); err != nil {
			log.Fatalf("Failed to seed week %q: %v", w.title, err)
		}
		fmt.Printf("  week %d: %s\n", week.Number, week.Title)
	}
}

func seedCards(ctx context.Context, s *store.Store, now time.Time) {
	type seedCard struct {
		question string
		answer   string
		status   domain.CardStatus
		dueIn    time.Duration // applied for non-new cards
	}

	cards := []seedCard{
		{"What is a goroutine?", "A lightweight thread managed by the Go runtime", domain.CardStatusNew, 0},
		{"What does the select statement do?", "Waits on multiple channel operations", domain.CardStatusNew, 0},
		{"What is a nil map read?", "Safe; it returns the zero value", domain.CardStatusLearning, -time.Hour},
		{"When does append copy?", "When the backing array's capacity is exceeded", domain.CardStatusReview, -24 * time.Hour},
		{"What does defer evaluate eagerly?", "The function value and its arguments", domain.CardStatusReview, 72 * time.Hour},
	}

	for _, c := range cards {
		card := &domain.Flashcard{
			Question: c.question,
			Answer:   c.answer,
			ThemeID:  "go-basics",
			Status:   c.status,
		}
		card.ID = id.MustGenerate(id.PrefixFlashcard)
		if c.status != domain.CardStatusNew {
			due := now.Add(c.dueIn)
			card.DueAt = &due
			card.Reps = 2
			card.IntervalDays = 3
		}
		card.Normalize(now)

		if err := s.Flashcards.Put(ctx, card.ID, card); err != nil {
			log.Fatalf("Failed to seed card %q: %v", c.question, err)
		}
	}
	fmt.Printf("  %d flashcards\n", len(cards))
}

func seedJournal(ctx context.Context, s *store.Store, now time.Time) {
	entries := []struct {
		title   string
		notes   string
		daysAgo int
		minutes int
	}{
		{"Read about goroutines", "Q: What starts a goroutine?\nA: The go statement", 2, 45},
		{"Built a tiny worker pool", "- buffered channels as queues\n- sync.WaitGroup to join", 1, 90},
		{"Reviewed error handling", "errors.Is and errors.As finally clicked", 0, 30},
	}

	for _, e := range entries {
		entry := &domain.JournalEntry{
			Title:           e.title,
			Notes:           e.notes,
			Type:            domain.EntryTypeStudy,
			ThemeID:         "go-basics",
			DateStart:       now.AddDate(0, 0, -e.daysAgo),
			DurationMinutes: e.minutes,
		}
		entry.ID = id.MustGenerate(id.PrefixJournal)
		entry.Normalize(now)

		if err := s.JournalEntries.Put(ctx, entry.ID, entry); err != nil {
			log.Fatalf("Failed to seed journal entry %q: %v", e.title, err)
		}
	}
	fmt.Printf("  %d journal entries\n", len(entries))
}

func seedBook(ctx context.Context, s *store.Store, now time.Time) {
	book := &domain.Book{
		Title:      "The Go Programming Language",
		Author:     "Donovan and Kernighan",
		ThemeID:    "go-basics",
		TotalPages: 380,
		Status:     "reading",
	}
	book.ID = id.MustGenerate(id.PrefixBook)
	book.InitTimestamps(now)

	if err := s.Books.Put(ctx, book.ID, book); err != nil {
		log.Fatalf("Failed to seed book: %v", err)
	}

	progress := &domain.BookProgress{BookID: book.ID}
	progress.ID = book.ID
	progress.SetPage(42, now)
	progress.InitTimestamps(now)

	if err := s.BookProgress.Put(ctx, progress.ID, progress); err != nil {
		log.Fatalf("Failed to seed book progress: %v", err)
	}

	session := &domain.ReadingSession{
		BookID:    book.ID,
		StartedAt: now.Add(-2 * time.Hour),
		Minutes:   40,
		FromPage:  20,
		ToPage:    42,
	}
	session.ID = id.MustGenerate(id.PrefixSession)
	session.InitTimestamps(now)

	if err := s.ReadingSessions.Put(ctx, session.ID, session); err != nil {
		log.Fatalf("Failed to seed reading session: %v", err)
	}

	fmt.Printf("  1 book with progress and a reading session\n")
}
