package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nmadhukar/workforcenexus/internal/adapters/storage/gormdb"
	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type ResponsiblePersonRepository struct {
	db *gormdb.DB
}

func NewResponsiblePersonRepository(db *gormdb.DB) *ResponsiblePersonRepository {
	return &ResponsiblePersonRepository{db: db}
}

func (r *ResponsiblePersonRepository) Create(ctx context.Context, p domain.ResponsiblePerson, meta domain.MutationMeta) (domain.ResponsiblePerson, error) {
	meta = meta.Normalize()
	var out domain.ResponsiblePerson
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		model := responsiblePersonFromDomain(p)
		model.ID = 0
		model.CreatedAt = meta.OccurredAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Create(&model).Error; err != nil {
			return mapWriteError(err, "create responsible person")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "responsible_person", itoa(model.ID), domain.AuditCreate, meta, nil, out)
	})
	if err != nil {
		return domain.ResponsiblePerson{}, err
	}
	return out, nil
}

func (r *ResponsiblePersonRepository) Update(ctx context.Context, p domain.ResponsiblePerson, meta domain.MutationMeta) (domain.ResponsiblePerson, error) {
	meta = meta.Normalize()
	var out domain.ResponsiblePerson
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before responsiblePersonModel
		if err := tx.Where("id = ?", p.ID).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("load responsible person: %w", err)
		}

		model := responsiblePersonFromDomain(p)
		model.CreatedAt = before.CreatedAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Save(&model).Error; err != nil {
			return mapWriteError(err, "update responsible person")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "responsible_person", itoa(model.ID), domain.AuditUpdate, meta, before.toDomain(), out)
	})
	if err != nil {
		return domain.ResponsiblePerson{}, err
	}
	return out, nil
}

func (r *ResponsiblePersonRepository) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	meta = meta.Normalize()
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before responsiblePersonModel
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load responsible person: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&responsiblePersonModel{}).Error; err != nil {
			return mapWriteError(err, "delete responsible person")
		}
		deleted = true
		return writeAudit(tx.DB, "responsible_person", itoa(id), domain.AuditDelete, meta, before.toDomain(), nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *ResponsiblePersonRepository) Get(ctx context.Context, id uint) (domain.ResponsiblePerson, error) {
	var model responsiblePersonModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ResponsiblePerson{}, domain.ErrNotFound
		}
		return domain.ResponsiblePerson{}, fmt.Errorf("get responsible person: %w", err)
	}
	return model.toDomain(), nil
}

func (r *ResponsiblePersonRepository) ListAll(ctx context.Context) ([]domain.ResponsiblePerson, error) {
	var models []responsiblePersonModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Order("name ASC, id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list responsible persons: %w", err)
	}
	out := make([]domain.ResponsiblePerson, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}
