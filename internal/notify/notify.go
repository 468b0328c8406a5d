// Package notify publishes record lifecycle events over NATS for downstream
// reporting. The publisher is optional: a nil *Publisher is a no-op, so the
// pipeline does not branch on whether NATS is configured.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/openelig/eligibility-tracker/internal/entity"
)

// SubjectRecordExtracted carries one event per appended record.
const SubjectRecordExtracted = "elig.record.extracted"

// RecordExtracted is the event payload. It carries the routing-relevant
// fields, not the full record; consumers needing the row read the store.
type RecordExtracted struct {
	MessageID      string `json:"message_id"`
	MemberID       string `json:"member_id"`
	Sentiment      string `json:"sentiment"`
	UserIdentifier string `json:"user_identifier"`
	ExtractedBy    string `json:"extracted_by"`
	Timestamp      string `json:"timestamp"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// Connect dials NATS with retry-friendly options. Returns an error only when
// the initial connection setup itself fails.
func Connect(url, token string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: nc, logger: logger}, nil
}

// RecordAppended publishes the extracted-record event. Publish failures are
// logged, not returned: notifications never block the append pipeline.
func (p *Publisher) RecordAppended(messageID string, rec *entity.ExtractionRecord) {
	if p == nil {
		return
	}
	ev := RecordExtracted{
		MessageID:      messageID,
		MemberID:       rec.MemberID,
		Sentiment:      rec.Sentiment,
		UserIdentifier: rec.UserIdentifier,
		ExtractedBy:    rec.ExtractedBy,
		Timestamp:      rec.Timestamp,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("marshal record event", "error", err)
		return
	}
	if err := p.conn.Publish(SubjectRecordExtracted, payload); err != nil {
		p.logger.Warn("publish record event", "error", err)
	}
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Drain()
}
