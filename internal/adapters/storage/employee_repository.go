package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nmadhukar/workforcenexus/internal/adapters/storage/gormdb"
	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type EmployeeRepository struct {
	db *gormdb.DB
}

func NewEmployeeRepository(db *gormdb.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, emp domain.Employee, meta domain.MutationMeta) (domain.Employee, error) {
	meta = meta.Normalize()
	var out domain.Employee
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		model := employeeFromDomain(emp)
		model.ID = 0
		model.CreatedAt = meta.OccurredAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Create(&model).Error; err != nil {
			return mapWriteError(err, "create employee")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "employee", itoa(model.ID), domain.AuditCreate, meta, nil, out)
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return out, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, emp domain.Employee, meta domain.MutationMeta) (domain.Employee, error) {
	meta = meta.Normalize()
	var out domain.Employee
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before employeeModel
		if err := tx.Where("id = ?", emp.ID).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("load employee: %w", err)
		}

		model := employeeFromDomain(emp)
		model.CreatedAt = before.CreatedAt
		model.UpdatedAt = meta.OccurredAt
		if err := tx.Save(&model).Error; err != nil {
			return mapWriteError(err, "update employee")
		}
		out = model.toDomain()
		return writeAudit(tx.DB, "employee", itoa(model.ID), domain.AuditUpdate, meta, before.toDomain(), out)
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return out, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	meta = meta.Normalize()
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormdb.Tx) error {
		var before employeeModel
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load employee: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&employeeModel{}).Error; err != nil {
			return mapWriteError(err, "delete employee")
		}
		deleted = true
		return writeAudit(tx.DB, "employee", itoa(id), domain.AuditDelete, meta, before.toDomain(), nil)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *EmployeeRepository) Get(ctx context.Context, id uint) (domain.Employee, error) {
	var model employeeModel
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Employee{}, domain.ErrNotFound
		}
		return domain.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return model.toDomain(), nil
}

func (r *EmployeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, int64, error) {
	var models []employeeModel
	var total int64
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		query := tx.Model(&employeeModel{})
		if filter.Status != "" {
			query = query.Where("status = ?", string(filter.Status))
		}
		if filter.LocationID != nil {
			query = query.Where("location_id = ?", *filter.LocationID)
		}
		if search := filter.Page.Search; search != "" {
			like := "%" + search + "%"
			query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
		}
		if err := query.Count(&total).Error; err != nil {
			return err
		}
		return query.Order("last_name ASC, first_name ASC, id ASC").
			Limit(filter.Page.Limit).
			Offset(filter.Page.Offset()).
			Find(&models).Error
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	out := make([]domain.Employee, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, total, nil
}

func (r *EmployeeRepository) CountByLocation(ctx context.Context, locationID uint) (int64, error) {
	var count int64
	err := r.db.ReadTX(ctx, func(tx *gormdb.Tx) error {
		return tx.Model(&employeeModel{}).Where("location_id = ?", locationID).Count(&count).Error
	})
	if err != nil {
		return 0, fmt.Errorf("count employees by location: %w", err)
	}
	return count, nil
}
