package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/service"
)

func (s *Server) registerJournalRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createJournalEntry",
		Method:      http.MethodPost,
		Path:        "/api/v1/journal",
		Summary:     "Create journal entry",
		Description: "Logs a work session",
		Tags:        []string{"Journal"},
	}, s.handleCreateJournalEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "getJournalEntry",
		Method:      http.MethodGet,
		Path:        "/api/v1/journal/{id}",
		Summary:     "Get journal entry",
		Description: "Returns a journal entry by ID",
		Tags:        []string{"Journal"},
	}, s.handleGetJournalEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteJournalEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/journal/{id}",
		Summary:     "Delete journal entry",
		Description: "Deletes a journal entry, recording a tombstone",
		Tags:        []string{"Journal"},
	}, s.handleDeleteJournalEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecentJournal",
		Method:      http.MethodGet,
		Path:        "/api/v1/journal",
		Summary:     "List recent entries",
		Description: "Returns entries from the last days, newest first",
		Tags:        []string{"Journal"},
	}, s.handleListRecentJournal)

	huma.Register(s.api, huma.Operation{
		OperationID: "journalStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/journal/stats",
		Summary:     "Journal statistics",
		Description: "Aggregates entry counts and minutes over a recent window",
		Tags:        []string{"Journal"},
	}, s.handleJournalStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggestCards",
		Method:      http.MethodGet,
		Path:        "/api/v1/journal/{id}/suggested-cards",
		Summary:     "Suggest cards",
		Description: "Proposes flashcard drafts from an entry's notes without saving anything",
		Tags:        []string{"Journal"},
	}, s.handleSuggestCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCardsFromEntry",
		Method:      http.MethodPost,
		Path:        "/api/v1/journal/{id}/cards",
		Summary:     "Create cards from entry",
		Description: "Saves card drafts linked to a journal entry",
		Tags:        []string{"Journal"},
	}, s.handleCreateCardsFromEntry)
}

// === DTOs ===

// JournalEntryRequest is the writable portion of a journal entry.
type JournalEntryRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=300" doc:"What the session was about"`
	Notes           string `json:"notes,omitempty" validate:"omitempty,max=20000" doc:"Free-form notes"`
	Type            string `json:"type,omitempty" validate:"omitempty,oneof=study code design doc review other" doc:"Session type"`
	ThemeID         string `json:"themeId,omitempty" doc:"Theme the session belongs to"`
	WeekID          string `json:"weekId,omitempty" doc:"Program week this session advances"`
	TodoID          string `json:"todoId,omitempty" doc:"Program task this session advances"`
	DateStart       string `json:"dateStart,omitempty" doc:"Session start, RFC 3339 (defaults to now)"`
	DurationMinutes int    `json:"durationMinutes,omitempty" validate:"omitempty,min=0,max=1440" doc:"Session length in minutes"`
}

// CreateJournalEntryInput wraps the create request for Huma.
type CreateJournalEntryInput struct {
	Body JournalEntryRequest
}

// JournalEntryOutput wraps a single entry for Huma.
type JournalEntryOutput struct {
	Body domain.JournalEntry
}

// GetJournalEntryInput contains parameters for fetching an entry.
type GetJournalEntryInput struct {
	ID string `path:"id" doc:"Entry ID"`
}

// ListRecentJournalInput contains parameters for recent entries.
type ListRecentJournalInput struct {
	Days  int `query:"days" doc:"Window in days (defaults to 7)"`
	Limit int `query:"limit" doc:"Maximum entries (defaults to 100)"`
}

// JournalListResponse contains recent journal entries.
type JournalListResponse struct {
	Entries []*domain.JournalEntry `json:"entries" doc:"Entries, newest first"`
	Count   int                    `json:"count" doc:"Number of entries returned"`
}

// JournalListOutput wraps the journal list response for Huma.
type JournalListOutput struct {
	Body JournalListResponse
}

// JournalStatsInput contains parameters for journal statistics.
type JournalStatsInput struct {
	Days int `query:"days" doc:"Window in days (defaults to 7)"`
}

// JournalStatsOutput wraps journal statistics for Huma.
type JournalStatsOutput struct {
	Body service.JournalStats
}

// SuggestCardsInput contains parameters for card suggestions.
type SuggestCardsInput struct {
	ID  string `path:"id" doc:"Entry ID"`
	Max int    `query:"max" doc:"Maximum suggestions (defaults to 6)"`
}

// SuggestedCardsResponse contains proposed card drafts.
type SuggestedCardsResponse struct {
	Drafts []service.CardDraft `json:"drafts" doc:"Editable card proposals"`
}

// SuggestedCardsOutput wraps the suggestions for Huma.
type SuggestedCardsOutput struct {
	Body SuggestedCardsResponse
}

// CreateCardsFromEntryRequest carries the drafts to save.
type CreateCardsFromEntryRequest struct {
	Drafts []service.CardDraft `json:"drafts" validate:"required,min=1,max=50" doc:"Drafts to turn into cards"`
}

// CreateCardsFromEntryInput wraps the request for Huma.
type CreateCardsFromEntryInput struct {
	ID   string `path:"id" doc:"Entry ID"`
	Body CreateCardsFromEntryRequest
}

// === Handlers ===

func (s *Server) handleCreateJournalEntry(ctx context.Context, input *CreateJournalEntryInput) (*JournalEntryOutput, error) {
	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &domain.JournalEntry{
		Title:           input.Body.Title,
		Notes:           input.Body.Notes,
		Type:            domain.EntryType(input.Body.Type),
		ThemeID:         input.Body.ThemeID,
		WeekID:          input.Body.WeekID,
		TodoID:          input.Body.TodoID,
		DurationMinutes: input.Body.DurationMinutes,
	}
	if input.Body.DateStart != "" {
		start, err := time.Parse(time.RFC3339, input.Body.DateStart)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("dateStart must be RFC 3339")
		}
		entry.DateStart = start
	}

	saved, err := s.services.Journal.Upsert(ctx, entry, now)
	if err != nil {
		return nil, err
	}
	return &JournalEntryOutput{Body: *saved}, nil
}

func (s *Server) handleGetJournalEntry(ctx context.Context, input *GetJournalEntryInput) (*JournalEntryOutput, error) {
	entry, err := s.services.Journal.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &JournalEntryOutput{Body: *entry}, nil
}

func (s *Server) handleDeleteJournalEntry(ctx context.Context, input *GetJournalEntryInput) (*MessageOutput, error) {
	if _, err := s.services.Journal.Get(ctx, input.ID); err != nil {
		return nil, err
	}
	if err := s.services.Journal.Delete(ctx, input.ID, true, time.Now()); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Entry deleted"}}, nil
}

func (s *Server) handleListRecentJournal(ctx context.Context, input *ListRecentJournalInput) (*JournalListOutput, error) {
	entries, err := s.services.Journal.Recent(ctx, time.Now(), input.Days, input.Limit)
	if err != nil {
		return nil, err
	}
	return &JournalListOutput{Body: JournalListResponse{Entries: entries, Count: len(entries)}}, nil
}

func (s *Server) handleJournalStats(ctx context.Context, input *JournalStatsInput) (*JournalStatsOutput, error) {
	stats, err := s.services.Journal.Stats(ctx, time.Now(), input.Days)
	if err != nil {
		return nil, err
	}
	return &JournalStatsOutput{Body: *stats}, nil
}

func (s *Server) handleSuggestCards(ctx context.Context, input *SuggestCardsInput) (*SuggestedCardsOutput, error) {
	entry, err := s.services.Journal.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	drafts := service.SuggestCards(entry, input.Max)
	if drafts == nil {
		drafts = []service.CardDraft{}
	}
	return &SuggestedCardsOutput{Body: SuggestedCardsResponse{Drafts: drafts}}, nil
}

func (s *Server) handleCreateCardsFromEntry(ctx context.Context, input *CreateCardsFromEntryInput) (*CardListOutput, error) {
	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	cards, err := s.services.Flashcards.CreateForEntry(ctx, input.ID, input.Body.Drafts, time.Now())
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []*domain.Flashcard{}
	}
	return &CardListOutput{Body: CardListResponse{Cards: cards, Count: len(cards)}}, nil
}
