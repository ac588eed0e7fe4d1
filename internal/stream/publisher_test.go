package stream

import (
	"context"
	"testing"

	"github.com/caroica/carousel/internal/models"
)

func TestNewPublisher_RequiresBrokers(t *testing.T) {
	if _, err := NewPublisher(nil, "topic"); err == nil {
		t.Fatal("expected error for empty brokers")
	}
}

func TestNewPublisher_RequiresTopic(t *testing.T) {
	if _, err := NewPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Fatal("expected error for empty topic")
	}
}

func TestPublish_NilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	if err := p.Publish(context.Background(), Record{Kind: KindMatchClaimed, EventID: 1}); err != nil {
		t.Fatalf("nil publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestSessionRecord(t *testing.T) {
	session := &models.Session{ID: 9, EventID: 3, Status: models.StatusBusy}
	rec := SessionRecord(KindSessionUpdated, session)

	if rec.Kind != KindSessionUpdated {
		t.Errorf("kind = %q", rec.Kind)
	}
	if rec.EventID != 3 || rec.SessionID != 9 {
		t.Errorf("ids = %d/%d, want 3/9", rec.EventID, rec.SessionID)
	}
	if rec.Status != models.StatusBusy {
		t.Errorf("status = %q", rec.Status)
	}
}
