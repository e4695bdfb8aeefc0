package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nmadhukar/workforcenexus/internal/adapters/storage/gormdb"
	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type APIKeyRepository struct {
	db *gormdb.DB
}

func NewAPIKeyRepository(db *gormdb.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key domain.APIKey, meta domain.MutationMeta) (domain.APIKey, error) {
	meta = meta.Normalize()
	var out domain.APIKey
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		model := apiKeyFromDomain(key)
		model.CreatedAt = meta.OccurredAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Create(&model).Error; err != nil {
			return mapWriteError(err, "create api key")
		}
		out = model.toDomain()
		// The hash never leaves the store through the audit log.
		redacted := out
		redacted.TokenHash = ""
		return writeAudit(tx.DB, "api_key", model.ID, domain.AuditCreate, meta, nil, redacted)
	})
	if err != nil {
		return domain.APIKey{}, err
	}
	return out, nil
}

func (r *APIKeyRepository) FindByPrefix(ctx context.Context, prefix string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("key_prefix = ?", prefix).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		return domain.APIKey{}, fmt.Errorf("find api key by prefix: %w", err)
	}
	return model.toDomain(), nil
}

func (r *APIKeyRepository) Get(ctx context.Context, id string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		return domain.APIKey{}, fmt.Errorf("get api key: %w", err)
	}
	return model.toDomain(), nil
}

func (r *APIKeyRepository) ListAll(ctx context.Context) ([]domain.APIKey, error) {
	var models []apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Order("created_at DESC, id DESC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	out := make([]domain.APIKey, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, id string, at time.Time, meta domain.MutationMeta) error {
	meta = meta.Normalize()
	return r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before apiKeyModel
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("load api key: %w", err)
		}
		if before.RevokedAt != nil {
			return nil
		}

		res := tx.Model(&apiKeyModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"active":     false,
				"revoked_at": at,
				"updated_at": meta.OccurredAt,
			})
		if res.Error != nil {
			return mapWriteError(res.Error, "revoke api key")
		}

		after := before.toDomain()
		after.Active = false
		after.RevokedAt = &at
		after.TokenHash = ""
		prior := before.toDomain()
		prior.TokenHash = ""
		return writeAudit(tx.DB, "api_key", id, domain.AuditUpdate, meta, prior, after)
	})
}

// TouchUsage bumps the persistent counters outside the request's hot path;
// failures here never fail the request.
func (r *APIKeyRepository) TouchUsage(ctx context.Context, id string, at time.Time) error {
	return r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Model(&apiKeyModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"last_used_at": at,
				"usage_count":  gorm.Expr("usage_count + 1"),
			}).Error
	})
}

func (r *APIKeyRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.APIKey, error) {
	var models []apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("active = ? AND revoked_at IS NULL AND expires_at IS NOT NULL AND expires_at <= ?", true, cutoff).
			Order("expires_at ASC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list expiring api keys: %w", err)
	}
	out := make([]domain.APIKey, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *APIKeyRepository) ListActiveOlderThan(ctx context.Context, cutoff time.Time) ([]domain.APIKey, error) {
	var models []apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("active = ? AND revoked_at IS NULL AND created_at <= ?", true, cutoff).
			Order("created_at ASC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list stale api keys: %w", err)
	}
	out := make([]domain.APIKey, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *APIKeyRepository) CreateRotation(ctx context.Context, rot domain.KeyRotation) (domain.KeyRotation, error) {
	model := keyRotationModel{
		OldKeyID:    rot.OldKeyID,
		NewKeyID:    rot.NewKeyID,
		GraceEndsAt: rot.GraceEndsAt,
		Completed:   rot.Completed,
		CreatedAt:   rot.CreatedAt,
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		return mapWriteError(tx.Create(&model).Error, "create key rotation")
	})
	if err != nil {
		return domain.KeyRotation{}, err
	}
	return model.toDomain(), nil
}

func (r *APIKeyRepository) ListRotations(ctx context.Context, keyID string) ([]domain.KeyRotation, error) {
	var models []keyRotationModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("old_key_id = ? OR new_key_id = ?", keyID, keyID).
			Order("created_at DESC, id DESC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list key rotations: %w", err)
	}
	out := make([]domain.KeyRotation, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *APIKeyRepository) ListDueRotations(ctx context.Context, now time.Time) ([]domain.KeyRotation, error) {
	var models []keyRotationModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("completed = ? AND grace_ends_at <= ?", false, now).
			Order("grace_ends_at ASC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list due key rotations: %w", err)
	}
	out := make([]domain.KeyRotation, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *APIKeyRepository) CompleteRotation(ctx context.Context, id uint) error {
	return r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		res := tx.Model(&keyRotationModel{}).
			Where("id = ?", id).
			Update("completed", true)
		if res.Error != nil {
			return mapWriteError(res.Error, "complete key rotation")
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
