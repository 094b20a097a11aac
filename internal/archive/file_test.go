package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
)

func newTestFileStore(t *testing.T) Store {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "data", "conversations.jsonl"), logger.NewNop())
}

func userMessage(content string) []model.Message {
	return []model.Message{{Role: model.RoleUser, Content: content}}
}

func TestFileStore_AppendGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestFileStore(t)

	rec, err := store.Append(ctx, userMessage("hello world"), map[string]any{"model_a": "claude-test"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected non-zero created_at")
	}
	if rec.Preview != "hello world" {
		t.Fatalf("Preview=%q, want %q", rec.Preview, "hello world")
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.ID != rec.ID {
		t.Fatalf("ID=%q, want %q", got.ID, rec.ID)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello world" {
		t.Fatalf("Messages=%v, want original messages", got.Messages)
	}
	if got.Metadata["model_a"] != "claude-test" {
		t.Fatalf("Metadata=%v, want model_a preserved", got.Metadata)
	}
}

func TestFileStore_GetAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestFileStore(t)

	got, err := store.Get(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent id, got %v", got)
	}
}

func TestFileStore_ReadLimitKeepsMostRecent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestFileStore(t)

	first, err := store.Append(ctx, userMessage("first"), nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	second, err := store.Append(ctx, userMessage("second"), nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	all, err := store.Read(ctx, ReadOptions{Limit: -1})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatalf("Read order wrong: %v", all)
	}

	limited, err := store.Read(ctx, ReadOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Fatalf("Read(limit=1)=%v, want only most recent", limited)
	}
}

func TestFileStore_SearchFiltersOnPreview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestFileStore(t)

	forest, err := store.Append(ctx, userMessage("forest talk"), nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := store.Append(ctx, userMessage("ocean talk"), nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.Read(ctx, ReadOptions{Limit: -1, Search: "forest"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 1 || got[0].ID != forest.ID {
		t.Fatalf("Read(search=forest)=%v, want only forest record", got)
	}

	upper, err := store.Read(ctx, ReadOptions{Limit: -1, Search: "FOREST"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(upper) != 1 {
		t.Fatalf("expected case-insensitive search, got %d records", len(upper))
	}
}

func TestFileStore_SkipsMalformedLines(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conversations.jsonl")
	store := NewFileStore(path, logger.NewNop())

	if _, err := store.Append(ctx, userMessage("one"), nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := store.Append(ctx, userMessage("two"), nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("{not valid json\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	if _, err := store.Append(ctx, userMessage("three"), nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.Read(ctx, ReadOptions{Limit: -1})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Read=%d records, want 3 valid records", len(got))
	}
}

func TestFileStore_EnsureIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "conversations.jsonl")
	store := NewFileStore(path, logger.NewNop())

	if err := store.Ensure(ctx); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := store.Append(ctx, userMessage("kept"), nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Ensure(ctx); err != nil {
		t.Fatalf("Ensure again: %v", err)
	}

	got, err := store.Read(ctx, ReadOptions{Limit: -1})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Ensure truncated existing content: %d records", len(got))
	}
}

func TestFileStore_PersistsASCIIOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conversations.jsonl")
	store := NewFileStore(path, logger.NewNop())

	content := "café ☕ — fin"
	rec, err := store.Append(ctx, userMessage(content), nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	for i, b := range raw {
		if b >= 0x80 {
			t.Fatalf("non-ASCII byte 0x%02x at offset %d", b, i)
		}
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Messages[0].Content != content {
		t.Fatalf("round trip lost content: %v", got)
	}
}

func TestEscapeNonASCII_SurrogatePairs(t *testing.T) {
	t.Parallel()

	got := string(escapeNonASCII([]byte("\"\U0001F642\"")))
	want := `"\u` + "d83d" + `\u` + "de42" + `"`
	if got != want {
		t.Fatalf("escapeNonASCII=%q, want %q", got, want)
	}
}
