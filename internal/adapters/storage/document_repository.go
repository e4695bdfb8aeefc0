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

// DocumentRepository keeps file bytes in a separate blob table so listings
// never drag the content across the wire.
type DocumentRepository struct {
	db *gormdb.DB
}

func NewDocumentRepository(db *gormdb.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc domain.ComplianceDocument, content []byte, meta domain.MutationMeta) (domain.ComplianceDocument, error) {
	meta = meta.Normalize()
	var out domain.ComplianceDocument
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		model := documentFromDomain(doc)
		model.ID = 0
		model.CreatedAt = meta.OccurredAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Create(&model).Error; err != nil {
			return mapWriteError(err, "create document")
		}
		blob := documentBlobModel{DocumentID: model.ID, Content: content}
		if err := tx.Create(&blob).Error; err != nil {
			return mapWriteError(err, "store document content")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "document", itoa(model.ID), domain.AuditCreate, meta, nil, out)
	})
	if err != nil {
		return domain.ComplianceDocument{}, err
	}
	return out, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	meta = meta.Normalize()
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before documentModel
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load document: %w", err)
		}
		if err := tx.Where("document_id = ?", id).Delete(&documentBlobModel{}).Error; err != nil {
			return mapWriteError(err, "delete document content")
		}
		if err := tx.Where("id = ?", id).Delete(&documentModel{}).Error; err != nil {
			return mapWriteError(err, "delete document")
		}
		deleted = true
		return writeAudit(tx.DB, "document", itoa(id), domain.AuditDelete, meta, before.toDomain(), nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *DocumentRepository) Get(ctx context.Context, id uint) (domain.ComplianceDocument, error) {
	var model documentModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ComplianceDocument{}, domain.ErrNotFound
		}
		return domain.ComplianceDocument{}, fmt.Errorf("get document: %w", err)
	}
	return model.toDomain(), nil
}

func (r *DocumentRepository) GetContent(ctx context.Context, id uint) ([]byte, error) {
	var blob documentBlobModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("document_id = ?", id).First(&blob).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get document content: %w", err)
	}
	return blob.Content, nil
}

func (r *DocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.ComplianceDocument, int64, error) {
	page := filter.Page.Normalize()
	var (
		models []documentModel
		total  int64
	)
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		q := tx.Model(&documentModel{})
		if filter.Kind != "" {
			q = q.Where("kind = ?", filter.Kind)
		}
		if filter.LicenseID != nil {
			q = q.Where("license_id = ?", *filter.LicenseID)
		}
		if filter.LocationID != nil {
			q = q.Where("location_id = ?", *filter.LocationID)
		}
		if page.Search != "" {
			like := "%" + page.Search + "%"
			q = q.Where("title LIKE ? OR file_name LIKE ?", like, like)
		}
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("created_at DESC, id DESC").
			Limit(page.Limit).Offset(page.Offset()).
			Find(&models).Error
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	out := make([]domain.ComplianceDocument, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, total, nil
}

func (r *DocumentRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.ComplianceDocument, error) {
	var models []documentModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("expires_at IS NOT NULL AND expires_at <= ?", cutoff).
			Order("expires_at ASC, id ASC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list expiring documents: %w", err)
	}
	out := make([]domain.ComplianceDocument, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}
