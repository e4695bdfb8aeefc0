package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/adapters/storage/gormdb"
	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type AuditRepository struct {
	db *gormdb.DB
}

func NewAuditRepository(db *gormdb.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	var models []auditModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		q := tx.Model(&auditModel{})
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.EntityID != "" {
			q = q.Where("entity_id = ?", filter.EntityID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", string(filter.Action))
		}
		if filter.AfterID > 0 {
			q = q.Where("id > ?", filter.AfterID)
		}
		limit := filter.Limit
		if limit <= 0 {
			limit = 100
		}
		return q.Order("id ASC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	out := make([]domain.AuditEntry, 0, len(models))
	for _, m := range models {
		entry := domain.AuditEntry{
			ID:         m.ID,
			Entity:     m.Entity,
			EntityID:   m.EntityID,
			Action:     domain.AuditAction(m.Action),
			Actor:      m.Actor,
			RequestID:  m.RequestID,
			OccurredAt: m.OccurredAt,
		}
		if m.BeforeJSON != "" {
			entry.Before = json.RawMessage(m.BeforeJSON)
		}
		if m.AfterJSON != "" {
			entry.After = json.RawMessage(m.AfterJSON)
		}
		out = append(out, entry)
	}
	return out, nil
}

type OutboxRepository struct {
	db *gormdb.DB
}

func NewOutboxRepository(db *gormdb.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, topic string, envelope domain.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}
	now := envelope.OccurredAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	model := outboxModel{
		EventID:       envelope.EventID,
		Topic:         topic,
		PayloadJSON:   string(payload),
		Status:        string(domain.OutboxPending),
		NextAttemptAt: now,
		CreatedAt:     now,
	}
	return r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		return mapWriteError(tx.Create(&model).Error, "enqueue outbox event")
	})
}

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []outboxModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("status = ? AND next_attempt_at <= ?", string(domain.OutboxPending), time.Now().UTC()).
			Order("id ASC").Limit(limit).
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pending outbox events: %w", err)
	}
	out := make([]domain.OutboxEvent, 0, len(models))
	for _, m := range models {
		out = append(out, domain.OutboxEvent{
			ID:            m.ID,
			EventID:       m.EventID,
			Topic:         m.Topic,
			PayloadJSON:   json.RawMessage(m.PayloadJSON),
			Status:        domain.OutboxStatus(m.Status),
			Attempts:      m.Attempts,
			NextAttemptAt: m.NextAttemptAt,
			LastError:     m.LastError,
			CreatedAt:     m.CreatedAt,
			DispatchedAt:  m.DispatchedAt,
		})
	}
	return out, nil
}

func (r *OutboxRepository) MarkDispatched(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	return r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		res := tx.Model(&outboxModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":        string(domain.OutboxDispatched),
				"dispatched_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("mark outbox event dispatched: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, errMsg string) error {
	return r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		res := tx.Model(&outboxModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"attempts":        attempts,
				"next_attempt_at": nextAttemptAt,
				"last_error":      errMsg,
			})
		if res.Error != nil {
			return fmt.Errorf("mark outbox event failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *OutboxRepository) MarkDead(ctx context.Context, id int64, attempts int, errMsg string) error {
	return r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		res := tx.Model(&outboxModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":     string(domain.OutboxDead),
				"attempts":   attempts,
				"last_error": errMsg,
			})
		if res.Error != nil {
			return fmt.Errorf("mark outbox event dead: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
