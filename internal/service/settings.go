package service

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"time"

	"github.com/bluestormapp/bluestorm-server/internal/domain"
	"github.com/bluestormapp/bluestorm-server/internal/id"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

// Settings manages the key/value preference records, including the
// device identity and sync bookkeeping.
type Settings struct {
	store *store.Store
}

// NewSettings wires the settings service.
func NewSettings(s *store.Store) *Settings {
	return &Settings{store: s}
}

// Get returns the raw value for key, or nil when unset.
func (s *Settings) Get(ctx context.Context, key string) (jsontext.Value, error) {
	setting, err := s.store.Settings.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return setting.Value, nil
}

// Set stores a value under key.
func (s *Settings) Set(ctx context.Context, key string, value any, now time.Time) error {
	setting, err := domain.NewSetting(key, value, now)
	if err != nil {
		return err
	}
	if existing, gerr := s.store.Settings.Get(ctx, key); gerr == nil {
		setting.CreatedAt = existing.CreatedAt
	}
	return s.store.Settings.Put(ctx, setting.ID, &setting)
}

// EnsureDeviceID returns this replica's stable device identity,
// generating and persisting one on first call.
func (s *Settings) EnsureDeviceID(ctx context.Context, now time.Time) (string, error) {
	raw, err := s.Get(ctx, domain.SettingDeviceID)
	if err != nil {
		return "", err
	}
	if raw != nil {
		var existing string
		if err := json.Unmarshal(raw, &existing); err == nil && existing != "" {
			return existing, nil
		}
	}

	deviceID, err := id.Generate(id.PrefixDevice)
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, domain.SettingDeviceID, deviceID, now); err != nil {
		return "", err
	}
	return deviceID, nil
}

// LastSyncAt returns when this replica last exchanged a snapshot, or
// nil if it never has.
func (s *Settings) LastSyncAt(ctx context.Context) (*time.Time, error) {
	raw, err := s.Get(ctx, domain.SettingLastSyncAt)
	if err != nil || raw == nil {
		return nil, err
	}
	var at time.Time
	if err := json.Unmarshal(raw, &at); err != nil {
		return nil, nil
	}
	return &at, nil
}

// MarkSynced records a completed snapshot exchange.
func (s *Settings) MarkSynced(ctx context.Context, now time.Time) error {
	return s.Set(ctx, domain.SettingLastSyncAt, now, now)
}
