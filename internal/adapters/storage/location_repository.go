package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nmadhukar/workforcenexus/internal/adapters/storage/gormdb"
	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type LocationRepository struct {
	db *gormdb.DB
}

func NewLocationRepository(db *gormdb.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, loc domain.Location, meta domain.MutationMeta) (domain.Location, error) {
	meta = meta.Normalize()
	var out domain.Location
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		model := locationFromDomain(loc)
		model.ID = 0
		model.CreatedAt = meta.OccurredAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Create(&model).Error; err != nil {
			return mapWriteError(err, "create location")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "location", itoa(model.ID), domain.AuditCreate, meta, nil, out)
	})
	if err != nil {
		return domain.Location{}, err
	}
	return out, nil
}

func (r *LocationRepository) Update(ctx context.Context, loc domain.Location, meta domain.MutationMeta) (domain.Location, error) {
	meta = meta.Normalize()
	var out domain.Location
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before locationModel
		if err := tx.Where("id = ?", loc.ID).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("load location: %w", err)
		}

		model := locationFromDomain(loc)
		model.CreatedAt = before.CreatedAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Save(&model).Error; err != nil {
			return mapWriteError(err, "update location")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "location", itoa(model.ID), domain.AuditUpdate, meta, before.toDomain(), out)
	})
	if err != nil {
		return domain.Location{}, err
	}
	return out, nil
}

func (r *LocationRepository) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	meta = meta.Normalize()
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before locationModel
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load location: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&locationModel{}).Error; err != nil {
			return mapWriteError(err, "delete location")
		}
		deleted = true
		return writeAudit(tx.DB, "location", itoa(id), domain.AuditDelete, meta, before.toDomain(), nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *LocationRepository) Get(ctx context.Context, id uint) (domain.Location, error) {
	var model locationModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Location{}, domain.ErrNotFound
		}
		return domain.Location{}, fmt.Errorf("get location: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LocationRepository) ListAll(ctx context.Context) ([]domain.Location, error) {
	var models []locationModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Order("name ASC, id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	out := make([]domain.Location, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *LocationRepository) HasChildren(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Model(&locationModel{}).Where("parent_id = ?", id).Count(&count).Error
	})
	if err != nil {
		return false, fmt.Errorf("count child locations: %w", err)
	}
	return count > 0, nil
}
