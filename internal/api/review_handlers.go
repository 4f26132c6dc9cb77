package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/review"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "buildReviewQueue",
		Method:      http.MethodGet,
		Path:        "/api/v1/review/queue",
		Summary:     "Build review queue",
		Description: "Assembles a review session of due cards plus new cards up to the daily limits",
		Tags:        []string{"Review"},
	}, s.handleBuildReviewQueue)

	huma.Register(s.api, huma.Operation{
		OperationID: "gradeCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/review/cards/{id}/grade",
		Summary:     "Grade card",
		Description: "Applies a recall grade to a card and reschedules it",
		Tags:        []string{"Review"},
	}, s.handleGradeCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCards",
		Method:      http.MethodGet,
		Path:        "/api/v1/review/search",
		Summary:     "Search cards",
		Description: "Filters and orders cards for browsing outside a session",
		Tags:        []string{"Review"},
	}, s.handleSearchCards)
}

// === DTOs ===

// BuildQueueInput contains parameters for building a review queue.
type BuildQueueInput struct {
	ThemeID     string `query:"themeId" doc:"Restrict the session to one theme"`
	ReviewLimit int    `query:"reviewLimit" doc:"Total session cap (0 uses the configured default)"`
	NewLimit    int    `query:"newLimit" doc:"Cap on new cards entering the session (0 uses the configured default)"`
}

// QueueOutput wraps the review queue for Huma.
type QueueOutput struct {
	Body review.Queue
}

// GradeCardRequest is the request body for grading a card.
type GradeCardRequest struct {
	Grade int `json:"grade" doc:"Recall grade: 0 again, 1 hard, 2 good, 3 easy; anything else counts as good"`
}

// GradeCardInput wraps the grade request for Huma.
type GradeCardInput struct {
	ID   string `path:"id" doc:"Card ID"`
	Body GradeCardRequest
}

// CardOutput wraps a single card for Huma.
type CardOutput struct {
	Body domain.Flashcard
}

// SearchCardsInput contains parameters for browsing cards.
type SearchCardsInput struct {
	ThemeID string `query:"themeId" doc:"Restrict to one theme"`
	Status  string `query:"status" doc:"Filter by status: new, learning, review, or suspended"`
	Query   string `query:"q" doc:"Case-insensitive substring over question, answer, hint, tags"`
	Limit   int    `query:"limit" doc:"Maximum results (defaults to 200)"`
}

// CardListResponse contains a list of cards.
type CardListResponse struct {
	Cards []*domain.Flashcard `json:"cards" doc:"Matching cards"`
	Count int                 `json:"count" doc:"Number of matches returned"`
}

// CardListOutput wraps the card list response for Huma.
type CardListOutput struct {
	Body CardListResponse
}

// === Handlers ===

func (s *Server) handleBuildReviewQueue(ctx context.Context, input *BuildQueueInput) (*QueueOutput, error) {
	reviewLimit := input.ReviewLimit
	if reviewLimit <= 0 {
		reviewLimit = s.review.DailyReviewLimit
	}
	newLimit := input.NewLimit
	if newLimit <= 0 {
		newLimit = s.review.DailyNewLimit
	}

	queue, err := s.services.Scheduler.BuildReviewQueue(ctx, review.QueueOptions{
		ThemeID:     input.ThemeID,
		ReviewLimit: reviewLimit,
		NewLimit:    newLimit,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &QueueOutput{Body: *queue}, nil
}

func (s *Server) handleGradeCard(ctx context.Context, input *GradeCardInput) (*CardOutput, error) {
	card, err := s.services.Scheduler.GradeCard(ctx, input.ID, review.Grade(input.Body.Grade), time.Now())
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleSearchCards(ctx context.Context, input *SearchCardsInput) (*CardListOutput, error) {
	cards, err := s.services.Scheduler.SearchCards(ctx, review.SearchOptions{
		ThemeID: input.ThemeID,
		Status:  domain.CardStatus(input.Status),
		Query:   input.Query,
		Limit:   input.Limit,
		Now:     time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return &CardListOutput{Body: CardListResponse{Cards: cards, Count: len(cards)}}, nil
}
