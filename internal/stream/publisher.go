// Package stream publishes session lifecycle records to Kafka for the
// downstream collaborators that own analytics and participant history.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/caroica/carousel/internal/models"
	"github.com/segmentio/kafka-go"
)

// Record kinds emitted on the session topic.
const (
	KindScheduleGenerated = "schedule_generated"
	KindMatchClaimed      = "match_claimed"
	KindSessionUpdated    = "session_updated"
	KindSessionSwept      = "session_swept"
)

// Record is one session lifecycle change.
type Record struct {
	Kind      string    `json:"kind"`
	EventID   uint      `json:"event_id"`
	SessionID uint      `json:"session_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Count     int       `json:"count,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher writes session lifecycle records to a Kafka topic. A nil
// Publisher is a no-op, so callers never have to branch on whether the
// feed is configured.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a Publisher for the given brokers and topic.
// Messages are keyed by event ID so per-event ordering is preserved.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("stream: at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("stream: topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...interface{}) {}),
	}
	return &Publisher{writer: writer}, nil
}

// Publish sends one record. Nil receivers drop the record.
func (p *Publisher) Publish(ctx context.Context, rec Record) error {
	if p == nil {
		return nil
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("stream: marshal record: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(rec.EventID), 10)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("stream: write record: %w", err)
	}
	return nil
}

// SessionRecord builds a Record from a session row.
func SessionRecord(kind string, session *models.Session) Record {
	return Record{
		Kind:      kind,
		EventID:   session.EventID,
		SessionID: session.ID,
		Status:    session.Status,
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
