package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
	"github.com/Merlinthewizord/Scintara/pkg/metrics"
)

// sqliteStore is the table backend: one row per record, rowid ordering.
type sqliteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteStore creates a table-backed archive store at the given DSN.
func NewSQLiteStore(dsn string, log *logger.Logger) (Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}
	return &sqliteStore{db: db, log: log}, nil
}

// Backend names the active backend.
func (s *sqliteStore) Backend() string {
	return "table"
}

// Ensure creates the conversations table when absent. Safe to call
// repeatedly.
func (s *sqliteStore) Ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS conversations (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			messages   TEXT NOT NULL,
			preview    TEXT NOT NULL,
			metadata   TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("archive: ensure table: %w", err)
	}
	return nil
}

// Append inserts one row.
func (s *sqliteStore) Append(ctx context.Context, messages []model.Message, metadata map[string]any) (*model.ConversationRecord, error) {
	rec := newRecord(messages, metadata)

	msgsJSON, err := json.Marshal(rec.Messages)
	if err != nil {
		metrics.ArchiveAppendErrors.WithLabelValues(s.Backend()).Inc()
		return nil, fmt.Errorf("archive: marshal messages: %w", err)
	}

	var metaJSON sql.NullString
	if rec.Metadata != nil {
		data, err := json.Marshal(rec.Metadata)
		if err != nil {
			metrics.ArchiveAppendErrors.WithLabelValues(s.Backend()).Inc()
			return nil, fmt.Errorf("archive: marshal metadata: %w", err)
		}
		metaJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, created_at, messages, preview, metadata)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.Format(time.RFC3339Nano), string(msgsJSON), rec.Preview, metaJSON)
	if err != nil {
		metrics.ArchiveAppendErrors.WithLabelValues(s.Backend()).Inc()
		return nil, fmt.Errorf("archive: insert record: %w", err)
	}

	metrics.ArchiveRecordsTotal.WithLabelValues(s.Backend()).Inc()
	return rec, nil
}

// Read selects records in creation order. A non-negative limit keeps the
// most-recent records via a backend-side LIMIT, returned ascending.
func (s *sqliteStore) Read(ctx context.Context, opts ReadOptions) ([]model.ConversationRecord, error) {
	query := `SELECT id, created_at, messages, preview, metadata FROM conversations`
	var args []any
	if opts.Search != "" {
		query += ` WHERE instr(lower(preview), lower(?)) > 0`
		args = append(args, opts.Search)
	}
	if opts.Limit >= 0 {
		query += ` ORDER BY rowid DESC LIMIT ?`
		args = append(args, opts.Limit)
	} else {
		query += ` ORDER BY rowid ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive: select records: %w", err)
	}
	defer rows.Close()

	var records []model.ConversationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			s.log.Debug("skipping malformed archive row")
			continue
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: select rows: %w", err)
	}

	if opts.Limit >= 0 {
		// Restore ascending creation order after the DESC LIMIT.
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	return records, nil
}

// Get performs an indexed equality lookup on id.
func (s *sqliteStore) Get(ctx context.Context, id string) (*model.ConversationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, messages, preview, metadata
		FROM conversations WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("archive: get %q: %w", id, err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.ConversationRecord, error) {
	var (
		rec       model.ConversationRecord
		createdAt string
		msgsJSON  string
		metaJSON  sql.NullString
	)
	if err := row.Scan(&rec.ID, &createdAt, &msgsJSON, &rec.Preview, &metaJSON); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = ts

	if err := json.Unmarshal([]byte(msgsJSON), &rec.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if metaJSON.Valid {
		if err := json.Unmarshal([]byte(metaJSON.String), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &rec, nil
}
