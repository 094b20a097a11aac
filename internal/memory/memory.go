// Package memory provides best-effort semantic memory augmentation backed by
// a mem0-style HTTP API.
//
// The no-throw contract is deliberate policy, not missing error handling:
// every backend failure is logged and swallowed at this boundary, and both
// FetchContext and Persist degrade to no-ops when the backend is
// unconfigured or unreachable. A dialogue run must never fail because its
// memory could not be read or written.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
	"github.com/Merlinthewizord/Scintara/pkg/metrics"
)

// Config holds memory backend configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	UserID    string
	SessionID string
	Disabled  bool
}

// Augmenter performs semantic memory retrieval and storage scoped to a
// configured user/session identity.
type Augmenter struct {
	cfg Config
	log *logger.Logger

	mu     sync.Mutex
	client *http.Client
}

// New creates a memory augmenter. The HTTP client is constructed lazily on
// first use and memoized for the lifetime of the process.
func New(cfg Config, log *logger.Logger) *Augmenter {
	return &Augmenter{cfg: cfg, log: log}
}

// Enabled reports whether the backend is configured.
func (a *Augmenter) Enabled() bool {
	return !a.cfg.Disabled && a.cfg.APIKey != ""
}

func (a *Augmenter) httpClient() *http.Client {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		a.client = &http.Client{Timeout: 15 * time.Second}
	}
	return a.client
}

type searchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	RunID  string `json:"run_id,omitempty"`
}

type memoryItem struct {
	Memory  string `json:"memory"`
	Content string `json:"content"`
	Text    string `json:"text"`
}

func (m memoryItem) value() string {
	for _, v := range []string{m.Memory, m.Content, m.Text} {
		if v != "" {
			return v
		}
	}
	return ""
}

type addRequest struct {
	Messages []addMessage `json:"messages"`
	UserID   string       `json:"user_id"`
	RunID    string       `json:"run_id,omitempty"`
}

type addMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FetchContext queries the memory backend and returns a newline-joined block
// of matching memory texts. It returns an empty string on any failure or
// when no results are found.
func (a *Augmenter) FetchContext(ctx context.Context, query string) string {
	if !a.Enabled() {
		return ""
	}

	items, err := a.search(ctx, query)
	if err != nil {
		metrics.MemoryCallsTotal.WithLabelValues("search", "error").Inc()
		a.log.Warn("memory search failed", zap.Error(err))
		return ""
	}
	metrics.MemoryCallsTotal.WithLabelValues("search", "ok").Inc()

	var lines []string
	for _, item := range items {
		if v := item.value(); v != "" {
			lines = append(lines, v)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Persist formats the transcript as a block of "speaker: text" lines and
// submits it to the memory backend as one addition. It no-ops when the
// payload is empty after trimming or when the backend is unavailable.
func (a *Augmenter) Persist(ctx context.Context, transcript []model.TranscriptEntry) {
	if !a.Enabled() {
		return
	}

	payload := FormatTranscript(transcript)
	if payload == "" {
		return
	}

	if err := a.add(ctx, payload); err != nil {
		metrics.MemoryCallsTotal.WithLabelValues("add", "error").Inc()
		a.log.Warn("memory persist failed", zap.Error(err))
		return
	}
	metrics.MemoryCallsTotal.WithLabelValues("add", "ok").Inc()
}

// FormatTranscript renders a transcript as newline-delimited "speaker: text"
// blocks.
func FormatTranscript(transcript []model.TranscriptEntry) string {
	lines := make([]string, 0, len(transcript))
	for _, entry := range transcript {
		lines = append(lines, entry.Speaker+": "+entry.Text)
	}
	return strings.TrimSpace(strings.Join(lines, "\n\n"))
}

func (a *Augmenter) search(ctx context.Context, query string) ([]memoryItem, error) {
	body, err := json.Marshal(searchRequest{
		Query:  query,
		UserID: a.cfg.UserID,
		RunID:  a.cfg.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("memory: marshal search: %w", err)
	}

	data, err := a.post(ctx, "/v1/memories/search/", body)
	if err != nil {
		return nil, err
	}

	// The backend returns either a bare array or a results envelope.
	var items []memoryItem
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	var envelope struct {
		Results []memoryItem `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("memory: decode search response: %w", err)
	}
	return envelope.Results, nil
}

func (a *Augmenter) add(ctx context.Context, payload string) error {
	body, err := json.Marshal(addRequest{
		Messages: []addMessage{{Role: "user", Content: payload}},
		UserID:   a.cfg.UserID,
		RunID:    a.cfg.SessionID,
	})
	if err != nil {
		return fmt.Errorf("memory: marshal add: %w", err)
	}

	_, err = a.post(ctx, "/v1/memories/", body)
	return err
}

func (a *Augmenter) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	url := strings.TrimRight(a.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("memory: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+a.cfg.APIKey)

	resp, err := a.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("memory: %s: unexpected status %d", path, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("memory: read response: %w", err)
	}
	return buf.Bytes(), nil
}
