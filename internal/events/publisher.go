// Package events provides optional NATS notifications for newly archived
// records. Publication is best-effort: a nil publisher and a publish failure
// are both silent from the pipeline's perspective.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Merlinthewizord/Scintara/internal/model"
	"github.com/Merlinthewizord/Scintara/pkg/logger"
)

// SubjectRecordCreated is the subject for record-created notifications.
const SubjectRecordCreated = "scintara.archive.created"

// Config holds NATS connection configuration.
type Config struct {
	URL   string
	Token string
}

// Publisher publishes record-created notifications. A nil Publisher is a
// valid no-op.
type Publisher struct {
	conn *nats.Conn
	log  *logger.Logger
}

// RecordCreated is the published notification payload.
type RecordCreated struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Preview   string    `json:"preview"`
}

// Connect establishes a NATS connection for record notifications. It returns
// (nil, nil) when no URL is configured.
func Connect(cfg Config, log *logger.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("events: connect to NATS: %w", err)
	}

	return &Publisher{conn: conn, log: log}, nil
}

// RecordCreated publishes a notification for a freshly appended record.
// Failures are logged and swallowed.
func (p *Publisher) RecordCreated(rec *model.ConversationRecord) {
	if p == nil || rec == nil {
		return
	}

	data, err := json.Marshal(RecordCreated{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Preview:   rec.Preview,
	})
	if err != nil {
		p.log.Warn("failed to marshal record notification", zap.Error(err))
		return
	}

	if err := p.conn.Publish(SubjectRecordCreated, data); err != nil {
		p.log.Warn("failed to publish record notification", zap.Error(err))
	}
}

// Close closes the NATS connection. Safe on nil.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
