package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"scan-validator/internal/validator/engine"
	"scan-validator/internal/validator/models"
	"scan-validator/internal/validator/render"
	"scan-validator/internal/validator/repository"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const emptyScan = `{"story":0,"walls":[],"objects":[],"doors":[],"openings":[],"floors":[]}`

type memStore struct {
	mu      sync.Mutex
	runs    map[string]repository.Run
	results map[string][]engine.Result
	cache   map[string]models.Flags
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{
		runs:    map[string]repository.Run{},
		results: map[string][]engine.Result{},
		cache:   map[string]models.Flags{},
	}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) SaveRun(_ context.Context, run repository.Run, results []engine.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	m.results[run.ID] = results
	return nil
}

func (m *memStore) GetRun(_ context.Context, id string) (*repository.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &run, nil
}

func (m *memStore) ListResults(_ context.Context, runID string) ([]engine.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[runID], nil
}

func (m *memStore) CachedFlags(_ context.Context, hash string) (models.Flags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flags, ok := m.cache[hash]
	if !ok {
		return models.Flags{}, repository.ErrNotFound
	}
	return flags, nil
}

func (m *memStore) CacheFlags(_ context.Context, hash string, flags models.Flags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[hash] = flags
	return nil
}

func newApp(store *memStore) *fiber.App {
	app := fiber.New()
	health := NewHealth(store, nil)
	app.Get("/health/live", health.Liveness)
	app.Get("/health/ready", health.Readiness)
	app.Get("/health/startup", health.Startup)
	NewValidation(engine.New(2, nil), store, nil).Register(app)
	app.Post("/render", NewRender(render.NewRenderer(0), nil).RenderSVG)
	app.Get("/docs/openapi.yaml", SwaggerSpec)
	app.Get("/docs", SwaggerUI)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	store := newMemStore()
	app := newApp(store)

	resp, body := do(t, app, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"alive"}`, string(body))

	resp, _ = do(t, app, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	store.pingErr = errors.New("database is locked")
	resp, body = do(t, app, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "database is locked")
}

func TestValidate(t *testing.T) {
	app := newApp(newMemStore())

	var first struct {
		Hash   string       `json:"hash"`
		Cached bool         `json:"cached"`
		Flags  models.Flags `json:"flags"`
	}
	resp, body := do(t, app, http.MethodPost, "/validate", emptyScan)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &first))
	assert.NotEmpty(t, first.Hash)
	assert.False(t, first.Cached)
	assert.Equal(t, models.Flags{}, first.Flags)

	var second struct {
		Hash   string `json:"hash"`
		Cached bool   `json:"cached"`
	}
	_, body = do(t, app, http.MethodPost, "/validate", emptyScan)
	require.NoError(t, json.Unmarshal(body, &second))
	assert.True(t, second.Cached)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestValidateRejectsBadInput(t *testing.T) {
	app := newApp(newMemStore())

	resp, _ := do(t, app, http.MethodPost, "/validate", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, app, http.MethodPost, "/validate", `{"walls":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid scan document")
}

func TestBatchRun(t *testing.T) {
	store := newMemStore()
	app := newApp(store)

	batch := `[{"id":"a","scan":` + emptyScan + `},{"id":"b","scan":"not a scan"}]`
	resp, body := do(t, app, http.MethodPost, "/validate/batch", batch)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		RunID   string          `json:"run_id"`
		Results []engine.Result `json:"results"`
		Summary struct {
			Total          int `json:"total"`
			DecodeFailures int `json:"decode_failures"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.RunID)
	require.Len(t, created.Results, 2)
	assert.Equal(t, "a", created.Results[0].ArtifactID)
	assert.Empty(t, created.Results[0].Err)
	assert.NotEmpty(t, created.Results[1].Err)
	assert.Equal(t, 2, created.Summary.Total)
	assert.Equal(t, 1, created.Summary.DecodeFailures)

	resp, body = do(t, app, http.MethodGet, "/runs/"+created.RunID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched struct {
		Run     repository.Run  `json:"run"`
		Results []engine.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created.RunID, fetched.Run.ID)
	assert.Equal(t, "api", fetched.Run.Source)
	assert.Len(t, fetched.Results, 2)

	resp, body = do(t, app, http.MethodGet, "/runs/"+created.RunID+"/report", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Artifacts")
}

func TestBatchRejectsBadInput(t *testing.T) {
	app := newApp(newMemStore())

	for name, body := range map[string]string{
		"not a list": `{"id":"a"}`,
		"empty":      `[]`,
		"duplicate":  `[{"id":"a","scan":{}},{"id":"a","scan":{}}]`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, _ := do(t, app, http.MethodPost, "/validate/batch", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUnknownRun(t *testing.T) {
	app := newApp(newMemStore())

	resp, _ := do(t, app, http.MethodGet, "/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/runs/missing/report", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRender(t *testing.T) {
	app := newApp(newMemStore())

	resp, body := do(t, app, http.MethodPost, "/render", emptyScan)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<svg")

	resp, _ = do(t, app, http.MethodPost, "/render", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/render", "[1,2]")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDocs(t *testing.T) {
	app := newApp(newMemStore())

	resp, body := do(t, app, http.MethodGet, "/docs/openapi.yaml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/validate/batch")

	resp, body = do(t, app, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "swagger-ui")
}
