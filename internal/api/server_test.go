package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluestormapp/bluestorm-server/internal/config"
	"github.com/bluestormapp/bluestorm-server/internal/review"
	"github.com/bluestormapp/bluestorm-server/internal/service"
	"github.com/bluestormapp/bluestorm-server/internal/snapshot"
	"github.com/bluestormapp/bluestorm-server/internal/store"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store *store.Store
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	prefs := snapshot.NewFilePreferences(t.TempDir() + "/prefs.json")
	engine := snapshot.NewEngine(st, prefs, nil, logger)

	services := &Services{
		Flashcards: service.NewFlashcards(st, logger),
		Journal:    service.NewJournal(st, logger),
		Settings:   service.NewSettings(st),
		Scheduler:  review.NewScheduler(st, logger),
		Snapshot:   engine,
	}

	reviewCfg := config.ReviewConfig{DailyNewLimit: 10, DailyReviewLimit: 50}
	s := NewServer(st, services, reviewCfg, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		store:  st,
	}
}

func decodeBody[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeBody[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestCardCRUD(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/cards", map[string]any{
		"question": "What does defer do?",
		"answer":   "Schedules a call to run when the function returns",
		"tags":     []string{"go"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	created := decodeBody[cardBody](t, resp.Body.Bytes())
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "new", created.Status)

	resp = ts.api.Get("/api/v1/cards/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Put("/api/v1/cards/"+created.ID, map[string]any{
		"question": "What does defer do?",
		"answer":   "Runs the call after the surrounding function returns",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeBody[cardBody](t, resp.Body.Bytes())
	assert.Equal(t, "Runs the call after the surrounding function returns", updated.Answer)

	resp = ts.api.Delete("/api/v1/cards/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/cards/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

// cardBody is the subset of the card JSON the tests inspect.
type cardBody struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Status       string   `json:"status"`
	Suspended    bool     `json:"suspended"`
	Reps         int      `json:"reps"`
	Lapses       int      `json:"lapses"`
	Ease         float64  `json:"ease"`
	IntervalDays float64  `json:"intervalDays"`
	Tags         []string `json:"tags"`
}

func TestCreateCardValidation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/cards", map[string]any{
		"question": "",
		"answer":   "something",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	apiErr := decodeBody[APIError](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", apiErr.Code)
}

func TestDeleteCardWritesTombstone(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/cards", map[string]any{
		"question": "q", "answer": "a",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	created := decodeBody[cardBody](t, resp.Body.Bytes())

	resp = ts.api.Delete("/api/v1/cards/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	count, err := ts.store.Tombstones.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReviewQueueAndGrade(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/cards", map[string]any{
		"question": "q", "answer": "a",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	created := decodeBody[cardBody](t, resp.Body.Bytes())

	resp = ts.api.Get("/api/v1/review/queue")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	queue := decodeBody[struct {
		Counts struct {
			Due   int `json:"due"`
			New   int `json:"new"`
			Total int `json:"total"`
		} `json:"counts"`
		Cards []cardBody `json:"cards"`
	}](t, resp.Body.Bytes())
	require.Equal(t, 1, queue.Counts.Total)
	assert.Equal(t, 1, queue.Counts.New)
	// Drawing a new card into a session promotes it.
	assert.Equal(t, "learning", queue.Cards[0].Status)

	resp = ts.api.Post("/api/v1/review/cards/"+created.ID+"/grade", map[string]any{
		"grade": 2,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	graded := decodeBody[cardBody](t, resp.Body.Bytes())
	assert.Equal(t, 1, graded.Reps)
	assert.Equal(t, 1.0, graded.IntervalDays)
}

func TestGradeUnknownCard(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/review/cards/fc-missing/grade", map[string]any{
		"grade": 2,
	})
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestSearchCards(t *testing.T) {
	ts := setupTestServer(t)

	for _, q := range []string{"goroutine scheduling", "channel select"} {
		resp := ts.api.Post("/api/v1/cards", map[string]any{
			"question": q, "answer": "a",
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/review/search?q=goroutine")
	require.Equal(t, http.StatusOK, resp.Code)

	result := decodeBody[struct {
		Cards []cardBody `json:"cards"`
		Count int        `json:"count"`
	}](t, resp.Body.Bytes())
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "goroutine scheduling", result.Cards[0].Question)
}

func TestSuspendExcludesFromQueue(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/cards", map[string]any{
		"question": "q", "answer": "a",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	created := decodeBody[cardBody](t, resp.Body.Bytes())

	resp = ts.api.Post("/api/v1/cards/"+created.ID+"/suspend")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/review/queue")
	require.Equal(t, http.StatusOK, resp.Code)
	queue := decodeBody[struct {
		Counts struct {
			Total int `json:"total"`
		} `json:"counts"`
	}](t, resp.Body.Bytes())
	assert.Zero(t, queue.Counts.Total)
}

func TestJournalFlow(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/journal", map[string]any{
		"title":           "Studied interfaces",
		"notes":           "Q: What is an interface?\nA: A method set contract",
		"type":            "study",
		"durationMinutes": 30,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	entry := decodeBody[struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}](t, resp.Body.Bytes())
	require.NotEmpty(t, entry.ID)

	resp = ts.api.Get("/api/v1/journal/" + entry.ID + "/suggested-cards")
	require.Equal(t, http.StatusOK, resp.Code)
	suggestions := decodeBody[SuggestedCardsResponse](t, resp.Body.Bytes())
	require.NotEmpty(t, suggestions.Drafts)
	assert.Equal(t, "What is an interface?", suggestions.Drafts[0].Question)

	resp = ts.api.Post("/api/v1/journal/"+entry.ID+"/cards", map[string]any{
		"drafts": []map[string]any{
			{"question": suggestions.Drafts[0].Question, "answer": suggestions.Drafts[0].Answer},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	cards := decodeBody[struct {
		Cards []cardBody `json:"cards"`
	}](t, resp.Body.Bytes())
	require.Len(t, cards.Cards, 1)
	assert.Contains(t, cards.Cards[0].Tags, "journal")

	resp = ts.api.Get("/api/v1/journal?days=7")
	require.Equal(t, http.StatusOK, resp.Code)
	recent := decodeBody[JournalListResponse](t, resp.Body.Bytes())
	assert.Equal(t, 1, recent.Count)

	resp = ts.api.Get("/api/v1/journal/stats")
	require.Equal(t, http.StatusOK, resp.Code)
	stats := decodeBody[struct {
		Entries      int `json:"entries"`
		TotalMinutes int `json:"totalMinutes"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 30, stats.TotalMinutes)
}

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	source := setupTestServer(t)
	target := setupTestServer(t)

	resp := source.api.Post("/api/v1/cards", map[string]any{
		"question": "travels between devices", "answer": "a",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = source.api.Get("/api/v1/snapshot/export")
	require.Equal(t, http.StatusOK, resp.Code)

	var exported map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &exported))

	resp = target.api.Post("/api/v1/snapshot/import", exported)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	count, err := target.store.Flashcards.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Status endpoint reflects the sync.
	resp = target.api.Get("/api/v1/sync/status")
	require.Equal(t, http.StatusOK, resp.Code)
	status := decodeBody[SyncStatusResponse](t, resp.Body.Bytes())
	assert.Contains(t, status.DeviceID, "dev-")
	assert.NotEmpty(t, status.LastSyncAt)
}

func TestImportRejectsMissingData(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/snapshot/import", map[string]any{
		"meta": map[string]any{
			"version":     1,
			"app":         "BlueStorm",
			"exportedAt":  "2026-03-01T12:00:00Z",
			"collections": []string{},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	apiErr := decodeBody[APIError](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", apiErr.Code)
}

func TestClearAllData(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/cards", map[string]any{
		"question": "q", "answer": "a",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/snapshot/clear")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	count, err := ts.store.Flashcards.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSettingsRoundTrip(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/settings/appearance")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Put("/api/v1/settings/appearance", map[string]any{
		"value": "dark",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/settings/appearance")
	require.Equal(t, http.StatusOK, resp.Code)
	setting := decodeBody[struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, "appearance", setting.Key)
	assert.JSONEq(t, `"dark"`, string(setting.Value))
}
