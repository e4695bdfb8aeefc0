package domain

import (
	"encoding/json"
	"time"
)

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// MutationMeta travels with every write: who performed it and under which
// request, stamped onto the audit row and the outbox event.
type MutationMeta struct {
	Actor      string
	RequestID  string
	OccurredAt time.Time
}

func (m MutationMeta) Normalize() MutationMeta {
	if m.Actor == "" {
		m.Actor = "system"
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now().UTC()
	}
	return m
}

// AuditEntry is one immutable row of the change log. Before/After hold
// JSON snapshots of the affected row; Before is empty on create, After is
// empty on delete.
type AuditEntry struct {
	ID         int64           `json:"id"`
	Entity     string          `json:"entity"`
	EntityID   string          `json:"entity_id"`
	Action     AuditAction     `json:"action"`
	Actor      string          `json:"actor"`
	RequestID  string          `json:"request_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type AuditFilter struct {
	Entity   string
	EntityID string
	Action   AuditAction
	AfterID  int64
	Limit    int
}

// EventEnvelope is the wire form of a notification delivered through the
// outbox.
type EventEnvelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	Entity     string          `json:"entity"`
	EntityID   string          `json:"entity_id"`
	Actor      string          `json:"actor"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxDispatched OutboxStatus = "dispatched"
	OutboxDead       OutboxStatus = "dead"
)

type OutboxEvent struct {
	ID            int64
	EventID       string
	Topic         string
	PayloadJSON   json.RawMessage
	Status        OutboxStatus
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	DispatchedAt  *time.Time
}
