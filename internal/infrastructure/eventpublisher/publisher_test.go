package eventpublisher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

type recordingRepo struct {
	events []*domain.OutboxEvent
	marked []string
}

func (r *recordingRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (r *recordingRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if limit > len(r.events) {
		limit = len(r.events)
	}
	return append([]*domain.OutboxEvent(nil), r.events[:limit]...), nil
}

func (r *recordingRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.marked = append(r.marked, id)
	return nil
}

func (r *recordingRepo) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}

type recordingPublisher struct {
	published []string
	failOn    map[string]error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := p.failOn[event.ID]; err != nil {
		return err
	}
	p.published = append(p.published, event.ID)
	return nil
}

func newDrainTestPublisher(repo *recordingRepo, sink *recordingPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  sink,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

func TestPublisherDrainsAndMarksBatch(t *testing.T) {
	repo := &recordingRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-a", EventType: domain.EventTypeJournalPosted},
			{ID: "evt-b", EventType: domain.EventTypeSettlementCompleted},
		},
	}
	sink := &recordingPublisher{}

	if err := newDrainTestPublisher(repo, sink).processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents: %v", err)
	}

	if len(sink.published) != 2 {
		t.Fatalf("published %d events, want 2", len(sink.published))
	}
	if len(repo.marked) != 2 || repo.marked[0] != "evt-a" || repo.marked[1] != "evt-b" {
		t.Fatalf("marked = %v, want [evt-a evt-b]", repo.marked)
	}
}

func TestPublisherLeavesFailedEventUnmarked(t *testing.T) {
	repo := &recordingRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-a", EventType: domain.EventTypeSettlementCompleted},
			{ID: "evt-b", EventType: domain.EventTypeSettlementCompleted},
		},
	}
	sink := &recordingPublisher{
		failOn: map[string]error{"evt-a": errors.New("broker unavailable")},
	}

	// A publish failure must not block the rest of the batch, and the
	// failed event stays unpublished for the next tick.
	if err := newDrainTestPublisher(repo, sink).processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents: %v", err)
	}

	if len(sink.published) != 1 || sink.published[0] != "evt-b" {
		t.Fatalf("published = %v, want [evt-b]", sink.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-b" {
		t.Fatalf("marked = %v, want [evt-b]", repo.marked)
	}
}

func TestPublisherHonorsBatchSize(t *testing.T) {
	repo := &recordingRepo{}
	for i := 0; i < 25; i++ {
		repo.events = append(repo.events, &domain.OutboxEvent{
			ID:        fmt.Sprintf("evt-%02d", i),
			EventType: domain.EventTypeSettlementCompleted,
		})
	}
	sink := &recordingPublisher{}

	if err := newDrainTestPublisher(repo, sink).processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents: %v", err)
	}

	if len(sink.published) != 10 {
		t.Fatalf("published %d events in one pass, want batch size 10", len(sink.published))
	}
}

func TestPublisherStopsOnCancel(t *testing.T) {
	ep := newDrainTestPublisher(&recordingRepo{}, &recordingPublisher{})
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}
