package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"

	"go.uber.org/zap"

	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
	"github.com/Merlinthewizord/Scintara/pkg/metrics"
)

// maxLineBytes bounds a single archive line on read. Transcripts are large;
// the default scanner buffer is not enough.
const maxLineBytes = 16 * 1024 * 1024

// fileStore is the newline-delimited JSON file backend. Appends are
// serialized by a mutex so concurrent writers never interleave partial
// lines; reads may run concurrently with appends.
type fileStore struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

// NewFileStore creates a file-backed archive store at path.
func NewFileStore(path string, log *logger.Logger) Store {
	return &fileStore{path: path, log: log}
}

// Backend names the active backend.
func (s *fileStore) Backend() string {
	return "file"
}

// Ensure creates the archive file and its parent directories when absent.
// Safe to call repeatedly; never truncates existing content.
func (s *fileStore) Ensure(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("archive: create directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("archive: create file: %w", err)
	}
	return f.Close()
}

// Append writes one record as a single line-terminated JSON object.
func (s *fileStore) Append(ctx context.Context, messages []model.Message, metadata map[string]any) (*model.ConversationRecord, error) {
	if err := s.Ensure(ctx); err != nil {
		metrics.ArchiveAppendErrors.WithLabelValues(s.Backend()).Inc()
		return nil, err
	}

	rec := newRecord(messages, metadata)
	data, err := json.Marshal(rec)
	if err != nil {
		metrics.ArchiveAppendErrors.WithLabelValues(s.Backend()).Inc()
		return nil, fmt.Errorf("archive: marshal record: %w", err)
	}
	line := append(escapeNonASCII(data), '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		metrics.ArchiveAppendErrors.WithLabelValues(s.Backend()).Inc()
		return nil, fmt.Errorf("archive: open for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		metrics.ArchiveAppendErrors.WithLabelValues(s.Backend()).Inc()
		return nil, fmt.Errorf("archive: append record: %w", err)
	}

	metrics.ArchiveRecordsTotal.WithLabelValues(s.Backend()).Inc()
	return rec, nil
}

// Read scans the whole file in creation order. Malformed lines are skipped:
// the store favors availability over strict validation of historical data.
func (s *fileStore) Read(ctx context.Context, opts ReadOptions) ([]model.ConversationRecord, error) {
	records, err := s.scan(ctx, func(rec *model.ConversationRecord) bool {
		return opts.Search == "" || matchesSearch(rec.Preview, opts.Search)
	})
	if err != nil {
		return nil, err
	}
	return lastN(records, opts.Limit), nil
}

// Get performs a full linear scan for an exact id match.
func (s *fileStore) Get(ctx context.Context, id string) (*model.ConversationRecord, error) {
	records, err := s.scan(ctx, func(rec *model.ConversationRecord) bool {
		return rec.ID == id
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *fileStore) scan(ctx context.Context, keep func(*model.ConversationRecord) bool) ([]model.ConversationRecord, error) {
	if err := s.Ensure(ctx); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("archive: open for read: %w", err)
	}
	defer f.Close()

	var records []model.ConversationRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec model.ConversationRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			s.log.Debug("skipping malformed archive line", zap.Error(err))
			continue
		}
		if keep(&rec) {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("archive: scan: %w", err)
	}
	return records, nil
}

// escapeNonASCII rewrites JSON bytes so that every non-ASCII rune is a
// \uXXXX escape, keeping the persisted file pure ASCII.
func escapeNonASCII(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, r := range string(data) {
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			out = append(out, []byte(fmt.Sprintf(`\u%04x\u%04x`, hi, lo))...)
			continue
		}
		out = append(out, []byte(fmt.Sprintf(`\u%04x`, r))...)
	}
	return out
}
