package archive

import (
	"strings"
	"testing"

	"github.com/Merlinthewizord/Scintara/internal/model"
)

func TestPreview_FirstUserMessage(t *testing.T) {
	t.Parallel()

	msgs := []model.Message{
		{Role: model.RoleAssistant, Content: "hi"},
		{Role: model.RoleUser, Content: "hello world"},
	}
	if got := Preview(msgs); got != "hello world" {
		t.Fatalf("Preview=%q, want %q", got, "hello world")
	}
}

func TestPreview_FallsBackToAnyContent(t *testing.T) {
	t.Parallel()

	msgs := []model.Message{
		{Role: model.RoleUser, Content: ""},
		{Role: model.RoleAssistant, Content: "only assistant spoke"},
	}
	if got := Preview(msgs); got != "only assistant spoke" {
		t.Fatalf("Preview=%q, want %q", got, "only assistant spoke")
	}
}

func TestPreview_EmptyWhenNoContent(t *testing.T) {
	t.Parallel()

	msgs := []model.Message{
		{Role: model.RoleUser, Content: ""},
		{Role: model.RoleAssistant, Content: ""},
	}
	if got := Preview(msgs); got != "" {
		t.Fatalf("Preview=%q, want empty", got)
	}
	if got := Preview(nil); got != "" {
		t.Fatalf("Preview(nil)=%q, want empty", got)
	}
}

func TestPreview_TruncatesTo160(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 300)
	got := Preview([]model.Message{{Role: model.RoleUser, Content: long}})
	if got != strings.Repeat("x", 160) {
		t.Fatalf("Preview length=%d, want 160", len(got))
	}
}

func TestPreview_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	got := Preview([]model.Message{{Role: model.RoleUser, Content: "  padded  "}})
	if got != "padded" {
		t.Fatalf("Preview=%q, want %q", got, "padded")
	}
}

func TestMatchesSearch(t *testing.T) {
	t.Parallel()

	if !matchesSearch("Forest Talk", "forest") {
		t.Error("expected case-insensitive match")
	}
	if matchesSearch("ocean talk", "forest") {
		t.Error("unexpected match")
	}
}

func TestLastN(t *testing.T) {
	t.Parallel()

	records := []model.ConversationRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	if got := lastN(records, -1); len(got) != 3 {
		t.Fatalf("lastN(-1)=%d records, want 3", len(got))
	}
	if got := lastN(records, 2); len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("lastN(2)=%v, want [b c]", got)
	}
	if got := lastN(records, 0); len(got) != 0 {
		t.Fatalf("lastN(0)=%d records, want 0", len(got))
	}
	if got := lastN(records, 10); len(got) != 3 {
		t.Fatalf("lastN(10)=%d records, want 3", len(got))
	}
}
