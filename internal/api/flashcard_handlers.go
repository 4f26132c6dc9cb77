package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/service"
)

func (s *Server) registerFlashcardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/cards",
		Summary:     "Create card",
		Description: "Creates a flashcard",
		Tags:        []string{"Cards"},
	}, s.handleCreateCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCard",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Get card",
		Description: "Returns a flashcard by ID",
		Tags:        []string{"Cards"},
	}, s.handleGetCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCard",
		Method:      http.MethodPut,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Update card",
		Description: "Replaces a flashcard's content fields",
		Tags:        []string{"Cards"},
	}, s.handleUpdateCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCard",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Delete card",
		Description: "Deletes a flashcard, recording a tombstone so the deletion propagates",
		Tags:        []string{"Cards"},
	}, s.handleDeleteCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "suspendCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/cards/{id}/suspend",
		Summary:     "Suspend card",
		Description: "Takes a card out of scheduling",
		Tags:        []string{"Cards"},
	}, s.handleSuspendCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "unsuspendCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/cards/{id}/unsuspend",
		Summary:     "Unsuspend card",
		Description: "Returns a card to scheduling",
		Tags:        []string{"Cards"},
	}, s.handleUnsuspendCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "cardStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards/stats",
		Summary:     "Card statistics",
		Description: "Counts cards per scheduling state",
		Tags:        []string{"Cards"},
	}, s.handleCardStats)
}

// === DTOs ===

// CardRequest is the writable portion of a flashcard.
type CardRequest struct {
	Question string   `json:"question" validate:"required,min=1,max=2000" doc:"Front of the card"`
	Answer   string   `json:"answer" validate:"required,min=1,max=5000" doc:"Back of the card"`
	Hint     string   `json:"hint,omitempty" validate:"omitempty,max=500" doc:"Optional hint"`
	ThemeID  string   `json:"themeId,omitempty" doc:"Theme the card belongs to"`
	Tags     []string `json:"tags,omitempty" doc:"Free-form tags"`
}

// CreateCardInput wraps the create request for Huma.
type CreateCardInput struct {
	Body CardRequest
}

// GetCardInput contains parameters for fetching a card.
type GetCardInput struct {
	ID string `path:"id" doc:"Card ID"`
}

// UpdateCardInput wraps the update request for Huma.
type UpdateCardInput struct {
	ID   string `path:"id" doc:"Card ID"`
	Body CardRequest
}

// MessageResponse is a simple acknowledgment body.
type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable result"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// CardStatsOutput wraps card statistics for Huma.
type CardStatsOutput struct {
	Body service.Stats
}

// === Handlers ===

func (s *Server) handleCreateCard(ctx context.Context, input *CreateCardInput) (*CardOutput, error) {
	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	card, err := s.services.Flashcards.Create(ctx, &domain.Flashcard{
		Question: input.Body.Question,
		Answer:   input.Body.Answer,
		Hint:     input.Body.Hint,
		ThemeID:  input.Body.ThemeID,
		Tags:     input.Body.Tags,
	}, time.Now())
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleGetCard(ctx context.Context, input *GetCardInput) (*CardOutput, error) {
	card, err := s.services.Flashcards.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleUpdateCard(ctx context.Context, input *UpdateCardInput) (*CardOutput, error) {
	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	card, err := s.services.Flashcards.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	card.Question = input.Body.Question
	card.Answer = input.Body.Answer
	card.Hint = input.Body.Hint
	card.ThemeID = input.Body.ThemeID
	card.Tags = input.Body.Tags
	card.Touch(time.Now())

	updated, err := s.services.Flashcards.Upsert(ctx, card, time.Now())
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *updated}, nil
}

func (s *Server) handleDeleteCard(ctx context.Context, input *GetCardInput) (*MessageOutput, error) {
	if _, err := s.services.Flashcards.Get(ctx, input.ID); err != nil {
		return nil, err
	}
	if err := s.services.Flashcards.Delete(ctx, input.ID, true, time.Now()); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Card deleted"}}, nil
}

func (s *Server) handleSuspendCard(ctx context.Context, input *GetCardInput) (*CardOutput, error) {
	card, err := s.services.Flashcards.Suspend(ctx, input.ID, time.Now())
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleUnsuspendCard(ctx context.Context, input *GetCardInput) (*CardOutput, error) {
	card, err := s.services.Flashcards.Unsuspend(ctx, input.ID, time.Now())
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleCardStats(ctx context.Context, _ *struct{}) (*CardStatsOutput, error) {
	stats, err := s.services.Flashcards.Stats(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return &CardStatsOutput{Body: *stats}, nil
}
