package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bluestormapp/bluestorm-server/internal/snapshot"
)

func (s *Server) registerSnapshotRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshot/export",
		Summary:     "Export snapshot",
		Description: "Serializes every collection into one portable snapshot document",
		Tags:        []string{"Snapshot"},
	}, s.handleExportSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "importSnapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshot/import",
		Summary:     "Import snapshot",
		Description: "Merges a snapshot from another device: newest write wins, deletions propagate",
		Tags:        []string{"Snapshot"},
	}, s.handleImportSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearAllData",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshot/clear",
		Summary:     "Clear all data",
		Description: "Deletes every record in every collection. Irreversible.",
		Tags:        []string{"Snapshot"},
	}, s.handleClearAllData)
}

// === DTOs ===

// SnapshotOutput wraps an exported snapshot for Huma.
type SnapshotOutput struct {
	Body snapshot.Snapshot
}

// ImportSnapshotInput wraps an incoming snapshot for Huma.
type ImportSnapshotInput struct {
	Body snapshot.Snapshot
}

// ImportResultResponse acknowledges a completed merge.
type ImportResultResponse struct {
	Message    string `json:"message" doc:"Human-readable result"`
	ImportedAt string `json:"importedAt" doc:"When the merge completed, RFC 3339"`
}

// ImportResultOutput wraps the import acknowledgment for Huma.
type ImportResultOutput struct {
	Body ImportResultResponse
}

// === Handlers ===

func (s *Server) handleExportSnapshot(ctx context.Context, _ *struct{}) (*SnapshotOutput, error) {
	snap, err := s.services.Snapshot.Export(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Settings.MarkSynced(ctx, time.Now()); err != nil {
		s.logger.Warn("failed to record sync time after export", "error", err)
	}
	return &SnapshotOutput{Body: *snap}, nil
}

func (s *Server) handleImportSnapshot(ctx context.Context, input *ImportSnapshotInput) (*ImportResultOutput, error) {
	if err := s.services.Snapshot.Import(ctx, &input.Body); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.services.Settings.MarkSynced(ctx, now); err != nil {
		s.logger.Warn("failed to record sync time after import", "error", err)
	}

	return &ImportResultOutput{Body: ImportResultResponse{
		Message:    "Snapshot merged",
		ImportedAt: now.Format(time.RFC3339),
	}}, nil
}

func (s *Server) handleClearAllData(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	if err := s.services.Snapshot.ClearAll(ctx); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "All data cleared"}}, nil
}
