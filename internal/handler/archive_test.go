package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Merlinthewizord/Scintara/internal/archive"
	"github.com/Merlinthewizord/Scintara/internal/dialogue"
	"github.com/Merlinthewizord/Scintara/internal/llm"
	"github.com/Merlinthewizord/Scintara/internal/memory"
	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
)

type stubClient struct{}

func (stubClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "a thought about " + req.Model, Model: req.Model}, nil
}
func (stubClient) Name() string         { return "stub" }
func (stubClient) FamilyPrefix() string { return "claude" }
func (stubClient) Models() []string     { return []string{"claude-stub"} }

func newTestRouter(t *testing.T, autoArchive bool) (chi.Router, archive.Store) {
	t.Helper()
	log := logger.NewNop()
	store := archive.NewFileStore(filepath.Join(t.TempDir(), "conversations.jsonl"), log)
	mem := memory.New(memory.Config{Disabled: true}, log)
	engine := dialogue.NewEngine(dialogue.Config{
		AutoArchive: autoArchive,
		Exchanges:   1,
		ModelA:      "claude-a",
		ModelB:      "claude-b",
	}, stubClient{}, mem, store, nil, log)

	h := NewArchiveHandler(store, engine, log)
	r := chi.NewRouter()
	r.Route("/v1/archive", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/generate", h.Generate)
		r.Get("/{id}", h.Get)
	})
	return r, store
}

func TestArchiveList(t *testing.T) {
	t.Parallel()
	router, store := newTestRouter(t, true)

	for _, content := range []string{"first topic", "second topic"} {
		if _, err := store.Append(context.Background(), []model.Message{{Role: model.RoleUser, Content: content}}, nil); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/archive/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rr.Code)
	}

	var resp model.ListArchiveResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items=%d, want 2", len(resp.Items))
	}
}

func TestArchiveList_EmptyIsArray(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, true)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/archive/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rr.Code)
	}

	var resp map[string]json.RawMessage
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(resp["items"]) != "[]" {
		t.Fatalf("items=%s, want empty array not null", resp["items"])
	}
}

func TestArchiveList_LimitAndSearch(t *testing.T) {
	t.Parallel()
	router, store := newTestRouter(t, true)

	for _, content := range []string{"forest walk", "ocean dive", "forest fire"} {
		if _, err := store.Append(context.Background(), []model.Message{{Role: model.RoleUser, Content: content}}, nil); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/archive/?q=forest&limit=1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rr.Code)
	}

	var resp model.ListArchiveResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Preview != "forest fire" {
		t.Fatalf("items=%v, want most recent forest record", resp.Items)
	}
}

func TestArchiveList_BadLimit(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, true)

	for _, limit := range []string{"abc", "-1"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/archive/?limit="+limit, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("limit=%q status=%d, want 400", limit, rr.Code)
		}
	}
}

func TestArchiveGet(t *testing.T) {
	t.Parallel()
	router, store := newTestRouter(t, true)

	rec, err := store.Append(context.Background(), []model.Message{{Role: model.RoleUser, Content: "findable"}}, nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/archive/"+rec.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rr.Code)
	}

	var got model.ConversationRecord
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != rec.ID || got.Preview != "findable" {
		t.Fatalf("got=%+v", got)
	}
}

func TestArchiveGet_NotFound(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, true)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/archive/no-such-id", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rr.Code)
	}
}

func TestArchiveGenerate_Disabled(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, false)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/archive/generate", nil))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", rr.Code)
	}
}

func TestArchiveGenerate_CreatesRecord(t *testing.T) {
	t.Parallel()
	router, store := newTestRouter(t, true)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/archive/generate", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp model.GenerateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected record id")
	}

	stored, err := store.Get(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored == nil {
		t.Fatal("generated record not persisted")
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	log := logger.NewNop()
	store := archive.NewFileStore(filepath.Join(t.TempDir(), "conversations.jsonl"), log)
	h := NewHealthHandler(store)

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health status=%d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("ready status=%d, want 200", rr.Code)
	}
}

func TestMetaEndpoints(t *testing.T) {
	t.Parallel()
	h := NewMetaHandler(stubClient{}, "claude-stub", 1024, 0.7, 0.95)

	rr := httptest.NewRecorder()
	h.Personas(rr, httptest.NewRequest(http.MethodGet, "/v1/personas", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("personas status=%d, want 200", rr.Code)
	}
	var personas map[string][]struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&personas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(personas["personas"]) == 0 {
		t.Fatal("expected at least one persona")
	}

	rr = httptest.NewRecorder()
	h.ModelInfo(rr, httptest.NewRequest(http.MethodGet, "/v1/model", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("model status=%d, want 200", rr.Code)
	}
	var info model.ModelInfo
	if err := json.NewDecoder(rr.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Provider != "stub" || info.Model != "claude-stub" {
		t.Fatalf("info=%+v", info)
	}
}
