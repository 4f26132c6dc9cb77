package domain

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"time"
)

// Well-known setting keys.
const (
	SettingDeviceID   = "deviceId"
	SettingLastSyncAt = "lastSyncAt"
	SettingAppearance = "appearance"
)

// Setting is one key/value preference record. ID equals Key so settings
// merge across replicas like any other record.
type Setting struct {
	ID        string         `json:"id"`
	Key       string         `json:"key"`
	Value     jsontext.Value `json:"value"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewSetting builds a setting record with the value marshaled to JSON.
func NewSetting(key string, value any, now time.Time) (Setting, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Setting{}, err
	}
	return Setting{
		ID:        key,
		Key:       key,
		Value:     raw,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// StringValue unmarshals the value as a string, returning "" when the
// value is absent or not a string.
func (s *Setting) StringValue() string {
	var out string
	if err := json.Unmarshal(s.Value, &out); err != nil {
		return ""
	}
	return out
}
