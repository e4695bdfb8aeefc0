package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

// writeAudit persists the audit row and the matching outbox event inside
// the caller's transaction, so a failed audit write rolls the mutation
// back with it. before/after are marshalled snapshots of the affected
// row; pass nil for the missing side of a create or delete.
func writeAudit(tx *gorm.DB, entity, entityID string, action domain.AuditAction, meta domain.MutationMeta, before, after any) error {
	var beforeJSON, afterJSON string
	if before != nil {
		b, err := json.Marshal(before)
		if err != nil {
			return fmt.Errorf("marshal before snapshot: %w", err)
		}
		beforeJSON = string(b)
	}
	if after != nil {
		b, err := json.Marshal(after)
		if err != nil {
			return fmt.Errorf("marshal after snapshot: %w", err)
		}
		afterJSON = string(b)
	}

	audit := auditModel{
		Entity:     entity,
		EntityID:   entityID,
		Action:     string(action),
		Actor:      meta.Actor,
		RequestID:  meta.RequestID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
		OccurredAt: meta.OccurredAt,
	}
	if err := tx.Create(&audit).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	envelope := domain.EventEnvelope{
		EventID:    uuid.NewString(),
		EventType:  entity + "." + pastTense(action),
		Entity:     entity,
		EntityID:   entityID,
		Actor:      meta.Actor,
		OccurredAt: meta.OccurredAt,
		Payload: mustJSON(map[string]any{
			"entity":    entity,
			"entity_id": entityID,
			"after":     json.RawMessage(orEmptyObject(afterJSON)),
		}),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	outbox := outboxModel{
		EventID:       envelope.EventID,
		Topic:         "events." + envelope.EventType,
		PayloadJSON:   string(payload),
		Status:        string(domain.OutboxPending),
		NextAttemptAt: meta.OccurredAt,
		CreatedAt:     meta.OccurredAt,
	}
	if err := tx.Create(&outbox).Error; err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return nil
}

func pastTense(action domain.AuditAction) string {
	return string(action) + "d"
}

func orEmptyObject(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// mapWriteError turns driver-level uniqueness violations into
// domain.ErrConflict; everything else is wrapped with op.
func mapWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s: duplicate value", domain.ErrConflict, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
