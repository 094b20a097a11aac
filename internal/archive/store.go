// Package archive provides durable, append-only persistence of conversation
// records. Two interchangeable backends honor the same contract: a local
// newline-delimited JSON file and a SQLite table. The backend is selected
// once at startup and never switched mid-process.
package archive

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
)

// previewLimit is the maximum preview length in characters.
const previewLimit = 160

// ReadOptions bounds and filters an archive read.
type ReadOptions struct {
	// Limit, when non-negative, restricts the result to at most that many
	// most-recent records. Negative means no limit.
	Limit int
	// Search, when non-empty, filters to records whose preview contains the
	// text, case-insensitively.
	Search string
}

// Store is the append-only archive contract. Records are immutable once
// appended; there is no update or delete. Get returns (nil, nil) when the
// identifier is absent. Append must be safe for concurrent callers.
type Store interface {
	// Ensure prepares the backing storage. It is idempotent and must be
	// called before any append or read.
	Ensure(ctx context.Context) error

	// Append durably writes a new record and returns it.
	Append(ctx context.Context, messages []model.Message, metadata map[string]any) (*model.ConversationRecord, error)

	// Read returns records in creation order, optionally bounded and filtered.
	Read(ctx context.Context, opts ReadOptions) ([]model.ConversationRecord, error)

	// Get returns the record with the given id, or nil when absent.
	Get(ctx context.Context, id string) (*model.ConversationRecord, error)

	// Backend names the active backend.
	Backend() string
}

// Open selects a backend from configuration: a SQLite DSN when provided,
// otherwise the local archive file.
func Open(path, dsn string, log *logger.Logger) (Store, error) {
	if dsn != "" {
		return NewSQLiteStore(dsn, log)
	}
	return NewFileStore(path, log), nil
}

// newRecord synthesizes a fresh record from messages and optional metadata.
func newRecord(messages []model.Message, metadata map[string]any) *model.ConversationRecord {
	return &model.ConversationRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Messages:  messages,
		Preview:   Preview(messages),
		Metadata:  metadata,
	}
}

// Preview derives the short list-view string for a record: the first 160
// characters (trimmed) of the first non-empty user message, else of the
// first message with any non-empty content, else "".
func Preview(messages []model.Message) string {
	for _, msg := range messages {
		if msg.Role == model.RoleUser && msg.Content != "" {
			return truncate(msg.Content)
		}
	}
	for _, msg := range messages {
		if msg.Content != "" {
			return truncate(msg.Content)
		}
	}
	return ""
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit])
}

// matchesSearch reports whether a preview matches a case-insensitive
// substring filter.
func matchesSearch(preview, search string) bool {
	return strings.Contains(strings.ToLower(preview), strings.ToLower(search))
}

// lastN keeps the most-recent n records of an ascending-order slice,
// preserving order.
func lastN(records []model.ConversationRecord, n int) []model.ConversationRecord {
	if n < 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}
