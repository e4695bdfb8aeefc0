package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

// queueOutbox is an in-memory outbox with full lifecycle tracking.
type queueOutbox struct {
	events map[int64]*domain.OutboxEvent
	nextID int64
}

func newQueueOutbox() *queueOutbox {
	return &queueOutbox{events: make(map[int64]*domain.OutboxEvent)}
}

func (q *queueOutbox) add(topic string, payload any) int64 {
	raw, _ := json.Marshal(payload)
	q.nextID++
	q.events[q.nextID] = &domain.OutboxEvent{
		ID:          q.nextID,
		Topic:       topic,
		PayloadJSON: raw,
		Status:      domain.OutboxPending,
	}
	return q.nextID
}

func (q *queueOutbox) Enqueue(_ context.Context, topic string, envelope domain.EventEnvelope) error {
	q.add(topic, envelope)
	return nil
}

func (q *queueOutbox) FetchPending(_ context.Context, limit int) ([]domain.OutboxEvent, error) {
	now := time.Now().UTC()
	var out []domain.OutboxEvent
	for id := int64(1); id <= q.nextID && len(out) < limit; id++ {
		ev, ok := q.events[id]
		if !ok || ev.Status != domain.OutboxPending || ev.NextAttemptAt.After(now) {
			continue
		}
		out = append(out, *ev)
	}
	return out, nil
}

func (q *queueOutbox) MarkDispatched(_ context.Context, id int64) error {
	ev, ok := q.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.Status = domain.OutboxDispatched
	return nil
}

func (q *queueOutbox) MarkFailed(_ context.Context, id int64, attempts int, nextAttemptAt time.Time, errMsg string) error {
	ev, ok := q.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.Attempts = attempts
	ev.NextAttemptAt = nextAttemptAt
	ev.LastError = errMsg
	return nil
}

func (q *queueOutbox) MarkDead(_ context.Context, id int64, attempts int, errMsg string) error {
	ev, ok := q.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	ev.Status = domain.OutboxDead
	ev.Attempts = attempts
	ev.LastError = errMsg
	return nil
}

// recordingPublisher captures publishes and can be told to fail.
type recordingPublisher struct {
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ domain.EventEnvelope) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	return nil
}

func TestDispatchBatchMarksDispatched(t *testing.T) {
	outbox := newQueueOutbox()
	pub := &recordingPublisher{}
	d := NewNotifyDispatcher(outbox, pub, time.Second, 10)

	env := domain.EventEnvelope{EventID: "e1", EventType: "created", Entity: "employee", EntityID: "42"}
	id := outbox.add("events.employee.created", env)

	if err := d.DispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if outbox.events[id].Status != domain.OutboxDispatched {
		t.Fatalf("status = %q, want dispatched", outbox.events[id].Status)
	}
	if len(pub.topics) != 1 || pub.topics[0] != "events.employee.created" {
		t.Fatalf("published topics = %v", pub.topics)
	}
	if m := d.Metrics(); m.SuccessTotal != 1 || m.FailureTotal != 0 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestDispatchBatchRetriesWithBackoff(t *testing.T) {
	outbox := newQueueOutbox()
	pub := &recordingPublisher{err: errors.New("downstream down")}
	d := NewNotifyDispatcher(outbox, pub, time.Second, 10)

	id := outbox.add("events.employee.created", domain.EventEnvelope{EventID: "e1"})

	before := time.Now().UTC()
	if err := d.DispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	ev := outbox.events[id]
	if ev.Status != domain.OutboxPending {
		t.Fatalf("status = %q, want pending for retry", ev.Status)
	}
	if ev.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", ev.Attempts)
	}
	if ev.LastError != "downstream down" {
		t.Fatalf("last error = %q", ev.LastError)
	}
	if ev.NextAttemptAt.Before(before) {
		t.Fatal("next attempt should be pushed into the future")
	}

	// The event is not due yet, so a second drain skips it.
	if err := d.DispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if ev.Attempts != 1 {
		t.Fatalf("attempts = %d after early redrain, want 1", ev.Attempts)
	}
}

func TestDispatchBatchDeadLetters(t *testing.T) {
	outbox := newQueueOutbox()
	pub := &recordingPublisher{err: errors.New("still down")}
	d := NewNotifyDispatcher(outbox, pub, time.Second, 10)

	id := outbox.add("events.employee.created", domain.EventEnvelope{EventID: "e1"})
	outbox.events[id].Attempts = 4

	if err := d.DispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	ev := outbox.events[id]
	if ev.Status != domain.OutboxDead {
		t.Fatalf("status = %q, want dead after exhausting retries", ev.Status)
	}
	if ev.Attempts != 5 {
		t.Fatalf("attempts = %d, want 5", ev.Attempts)
	}
	if m := d.Metrics(); m.DeadTotal != 1 {
		t.Fatalf("dead total = %d, want 1", m.DeadTotal)
	}
}

func TestDispatchBatchDeadLettersBadPayload(t *testing.T) {
	outbox := newQueueOutbox()
	pub := &recordingPublisher{}
	d := NewNotifyDispatcher(outbox, pub, time.Second, 10)

	outbox.nextID++
	outbox.events[outbox.nextID] = &domain.OutboxEvent{
		ID:          outbox.nextID,
		Topic:       "events.employee.created",
		PayloadJSON: json.RawMessage("{broken"),
		Status:      domain.OutboxPending,
	}

	if err := d.DispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(pub.topics) != 0 {
		t.Fatalf("broken payload must not be published, got %v", pub.topics)
	}
	if outbox.events[outbox.nextID].Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", outbox.events[outbox.nextID].Attempts)
	}
}

func TestBackoffDuration(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 4 * time.Second},
		{3, 9 * time.Second},
		{5, 25 * time.Second},
		{17, 289 * time.Second},
		{18, 5 * time.Minute},
		{100, 5 * time.Minute},
	}
	for _, tc := range cases {
		if got := backoffDuration(tc.attempt); got != tc.want {
			t.Fatalf("backoffDuration(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}
