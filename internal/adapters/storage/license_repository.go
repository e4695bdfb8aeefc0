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

type LicenseTypeRepository struct {
	db *gormdb.DB
}

func NewLicenseTypeRepository(db *gormdb.DB) *LicenseTypeRepository {
	return &LicenseTypeRepository{db: db}
}

func (r *LicenseTypeRepository) Create(ctx context.Context, lt domain.LicenseType, meta domain.MutationMeta) (domain.LicenseType, error) {
	meta = meta.Normalize()
	var out domain.LicenseType
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		model := licenseTypeFromDomain(lt)
		model.ID = 0
		model.CreatedAt = meta.OccurredAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Create(&model).Error; err != nil {
			return mapWriteError(err, "create license type")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "license_type", itoa(model.ID), domain.AuditCreate, meta, nil, out)
	})
	if err != nil {
		return domain.LicenseType{}, err
	}
	return out, nil
}

func (r *LicenseTypeRepository) Update(ctx context.Context, lt domain.LicenseType, meta domain.MutationMeta) (domain.LicenseType, error) {
	meta = meta.Normalize()
	var out domain.LicenseType
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before licenseTypeModel
		if err := tx.Where("id = ?", lt.ID).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("load license type: %w", err)
		}

		model := licenseTypeFromDomain(lt)
		model.CreatedAt = before.CreatedAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Save(&model).Error; err != nil {
			return mapWriteError(err, "update license type")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "license_type", itoa(model.ID), domain.AuditUpdate, meta, before.toDomain(), out)
	})
	if err != nil {
		return domain.LicenseType{}, err
	}
	return out, nil
}

func (r *LicenseTypeRepository) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	meta = meta.Normalize()
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before licenseTypeModel
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load license type: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&licenseTypeModel{}).Error; err != nil {
			return mapWriteError(err, "delete license type")
		}
		deleted = true
		return writeAudit(tx.DB, "license_type", itoa(id), domain.AuditDelete, meta, before.toDomain(), nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *LicenseTypeRepository) Get(ctx context.Context, id uint) (domain.LicenseType, error) {
	var model licenseTypeModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LicenseType{}, domain.ErrNotFound
		}
		return domain.LicenseType{}, fmt.Errorf("get license type: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LicenseTypeRepository) ListAll(ctx context.Context) ([]domain.LicenseType, error) {
	var models []licenseTypeModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Order("name ASC, id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list license types: %w", err)
	}
	out := make([]domain.LicenseType, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

type LicenseRepository struct {
	db *gormdb.DB
}

func NewLicenseRepository(db *gormdb.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

func (r *LicenseRepository) Create(ctx context.Context, lic domain.ClinicLicense, meta domain.MutationMeta) (domain.ClinicLicense, error) {
	meta = meta.Normalize()
	var out domain.ClinicLicense
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		model := clinicLicenseFromDomain(lic)
		model.ID = 0
		model.CreatedAt = meta.OccurredAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Create(&model).Error; err != nil {
			return mapWriteError(err, "create license")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "license", itoa(model.ID), domain.AuditCreate, meta, nil, out)
	})
	if err != nil {
		return domain.ClinicLicense{}, err
	}
	return out, nil
}

func (r *LicenseRepository) Update(ctx context.Context, lic domain.ClinicLicense, meta domain.MutationMeta) (domain.ClinicLicense, error) {
	meta = meta.Normalize()
	var out domain.ClinicLicense
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before clinicLicenseModel
		if err := tx.Where("id = ?", lic.ID).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("load license: %w", err)
		}

		model := clinicLicenseFromDomain(lic)
		model.CreatedAt = before.CreatedAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Save(&model).Error; err != nil {
			return mapWriteError(err, "update license")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "license", itoa(model.ID), domain.AuditUpdate, meta, before.toDomain(), out)
	})
	if err != nil {
		return domain.ClinicLicense{}, err
	}
	return out, nil
}

func (r *LicenseRepository) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	meta = meta.Normalize()
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before clinicLicenseModel
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load license: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&clinicLicenseModel{}).Error; err != nil {
			return mapWriteError(err, "delete license")
		}
		deleted = true
		return writeAudit(tx.DB, "license", itoa(id), domain.AuditDelete, meta, before.toDomain(), nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *LicenseRepository) Get(ctx context.Context, id uint) (domain.ClinicLicense, error) {
	var model clinicLicenseModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ClinicLicense{}, domain.ErrNotFound
		}
		return domain.ClinicLicense{}, fmt.Errorf("get license: %w", err)
	}
	return model.toDomain(), nil
}

func (r *LicenseRepository) List(ctx context.Context, filter domain.LicenseFilter) ([]domain.ClinicLicense, int64, error) {
	page := filter.Page.Normalize()
	var (
		models []clinicLicenseModel
		total  int64
	)
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		q := tx.Model(&clinicLicenseModel{})
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.LocationID != nil {
			q = q.Where("location_id = ?", *filter.LocationID)
		}
		if filter.LicenseTypeID != nil {
			q = q.Where("license_type_id = ?", *filter.LicenseTypeID)
		}
		if filter.ExpiresWithin != nil {
			q = q.Where("expires_at IS NOT NULL AND expires_at <= ?", *filter.ExpiresWithin)
		}
		if page.Search != "" {
			q = q.Where("license_number LIKE ?", "%"+page.Search+"%")
		}
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("expires_at ASC, id ASC").
			Limit(page.Limit).Offset(page.Offset()).
			Find(&models).Error
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list licenses: %w", err)
	}
	out := make([]domain.ClinicLicense, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, total, nil
}

func (r *LicenseRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.ClinicLicense, error) {
	var models []clinicLicenseModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("expires_at IS NOT NULL AND expires_at <= ? AND status <> ?", cutoff,
			string(domain.LicenseRevoked)).
			Order("expires_at ASC, id ASC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list expiring licenses: %w", err)
	}
	out := make([]domain.ClinicLicense, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *LicenseRepository) CountByResponsiblePerson(ctx context.Context, personID uint) (int64, error) {
	var count int64
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Model(&clinicLicenseModel{}).
			Where("responsible_person_id = ?", personID).
			Count(&count).Error
	})
	if err != nil {
		return 0, fmt.Errorf("count licenses by person: %w", err)
	}
	return count, nil
}

func (r *LicenseRepository) CountByLicenseType(ctx context.Context, typeID uint) (int64, error) {
	var count int64
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Model(&clinicLicenseModel{}).
			Where("license_type_id = ?", typeID).
			Count(&count).Error
	})
	if err != nil {
		return 0, fmt.Errorf("count licenses by type: %w", err)
	}
	return count, nil
}

func (r *LicenseRepository) CountByStatus(ctx context.Context) (map[domain.LicenseStatus]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Model(&clinicLicenseModel{}).
			Select("status, COUNT(*) AS total").
			Group("status").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("count licenses by status: %w", err)
	}
	out := make(map[domain.LicenseStatus]int64, len(rows))
	for _, r := range rows {
		out[domain.LicenseStatus(r.Status)] = r.Total
	}
	return out, nil
}
