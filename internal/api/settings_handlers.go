package api

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "syncStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/status",
		Summary:     "Sync status",
		Description: "Returns this replica's device identity and last snapshot exchange",
		Tags:        []string{"Settings"},
	}, s.handleSyncStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSetting",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/{key}",
		Summary:     "Get setting",
		Description: "Returns one setting value",
		Tags:        []string{"Settings"},
	}, s.handleGetSetting)

	huma.Register(s.api, huma.Operation{
		OperationID: "putSetting",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/{key}",
		Summary:     "Set setting",
		Description: "Stores one setting value",
		Tags:        []string{"Settings"},
	}, s.handlePutSetting)
}

// === DTOs ===

// SyncStatusResponse describes this replica's sync state.
type SyncStatusResponse struct {
	DeviceID   string `json:"deviceId" doc:"Stable identity of this replica"`
	LastSyncAt string `json:"lastSyncAt,omitempty" doc:"Last snapshot exchange, RFC 3339; absent if never synced"`
}

// SyncStatusOutput wraps the sync status for Huma.
type SyncStatusOutput struct {
	Body SyncStatusResponse
}

// SettingInput contains parameters for fetching a setting.
type SettingInput struct {
	Key string `path:"key" doc:"Setting key"`
}

// SettingResponse contains one setting value.
type SettingResponse struct {
	Key   string         `json:"key" doc:"Setting key"`
	Value jsontext.Value `json:"value" doc:"Setting value, arbitrary JSON"`
}

// SettingOutput wraps the setting response for Huma.
type SettingOutput struct {
	Body SettingResponse
}

// PutSettingRequest carries a new setting value.
type PutSettingRequest struct {
	Value jsontext.Value `json:"value" doc:"Setting value, arbitrary JSON"`
}

// PutSettingInput wraps the put request for Huma.
type PutSettingInput struct {
	Key  string `path:"key" doc:"Setting key"`
	Body PutSettingRequest
}

// === Handlers ===

func (s *Server) handleSyncStatus(ctx context.Context, _ *struct{}) (*SyncStatusOutput, error) {
	deviceID, err := s.services.Settings.EnsureDeviceID(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	resp := SyncStatusResponse{DeviceID: deviceID}
	if at, err := s.services.Settings.LastSyncAt(ctx); err == nil && at != nil {
		resp.LastSyncAt = at.Format(time.RFC3339)
	}
	return &SyncStatusOutput{Body: resp}, nil
}

func (s *Server) handleGetSetting(ctx context.Context, input *SettingInput) (*SettingOutput, error) {
	value, err := s.services.Settings.Get(ctx, input.Key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, huma.Error404NotFound("setting not found")
	}
	return &SettingOutput{Body: SettingResponse{Key: input.Key, Value: value}}, nil
}

func (s *Server) handlePutSetting(ctx context.Context, input *PutSettingInput) (*SettingOutput, error) {
	var value any
	if err := json.Unmarshal(input.Body.Value, &value); err != nil {
		return nil, huma.Error422UnprocessableEntity("value must be valid JSON")
	}

	if err := s.services.Settings.Set(ctx, input.Key, value, time.Now()); err != nil {
		return nil, err
	}
	return &SettingOutput{Body: SettingResponse{Key: input.Key, Value: input.Body.Value}}, nil
}
