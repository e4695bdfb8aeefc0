package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
)

type LicenseService struct {
	licenses ports.LicenseRepository
	types    ports.LicenseTypeRepository
	persons  ports.ResponsiblePersonRepository
	locs     ports.LocationRepository
}

func NewLicenseService(licenses ports.LicenseRepository, types ports.LicenseTypeRepository, persons ports.ResponsiblePersonRepository, locs ports.LocationRepository) *LicenseService {
	return &LicenseService{licenses: licenses, types: types, persons: persons, locs: locs}
}

func (s *LicenseService) Create(ctx context.Context, lic domain.ClinicLicense, meta domain.MutationMeta) (domain.ClinicLicense, error) {
	if lic.Status == "" {
		lic.Status = domain.LicenseActive
	}
	if err := lic.Validate(); err != nil {
		return domain.ClinicLicense{}, err
	}
	if err := s.checkReferences(ctx, lic); err != nil {
		return domain.ClinicLicense{}, err
	}
	return s.licenses.Create(ctx, lic, meta.Normalize())
}

func (s *LicenseService) Update(ctx context.Context, lic domain.ClinicLicense, meta domain.MutationMeta) (domain.ClinicLicense, error) {
	if _, err := s.licenses.Get(ctx, lic.ID); err != nil {
		return domain.ClinicLicense{}, err
	}
	if err := lic.Validate(); err != nil {
		return domain.ClinicLicense{}, err
	}
	if err := s.checkReferences(ctx, lic); err != nil {
		return domain.ClinicLicense{}, err
	}
	return s.licenses.Update(ctx, lic, meta.Normalize())
}

func (s *LicenseService) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	return s.licenses.Delete(ctx, id, meta.Normalize())
}

func (s *LicenseService) Get(ctx context.Context, id uint) (domain.ClinicLicense, error) {
	return s.licenses.Get(ctx, id)
}

func (s *LicenseService) List(ctx context.Context, filter domain.LicenseFilter) ([]domain.ClinicLicense, int64, error) {
	filter.Page = filter.Page.Normalize()
	return s.licenses.List(ctx, filter)
}

// Expiring lists licenses whose expiry date falls within the next `within`
// days.
func (s *LicenseService) Expiring(ctx context.Context, within int, now time.Time) ([]domain.ClinicLicense, error) {
	if within <= 0 {
		within = 30
	}
	if within > 365 {
		return nil, domain.NewValidationError("within", "must not exceed 365 days")
	}
	return s.licenses.ListExpiringBefore(ctx, now.AddDate(0, 0, within))
}

func (s *LicenseService) checkReferences(ctx context.Context, lic domain.ClinicLicense) error {
	if _, err := s.locs.Get(ctx, lic.LocationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("location_id", fmt.Sprintf("location %d does not exist", lic.LocationID))
		}
		return err
	}
	if _, err := s.types.Get(ctx, lic.LicenseTypeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("license_type_id", fmt.Sprintf("license type %d does not exist", lic.LicenseTypeID))
		}
		return err
	}
	if lic.ResponsiblePersonID != nil {
		if _, err := s.persons.Get(ctx, *lic.ResponsiblePersonID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("responsible_person_id", fmt.Sprintf("responsible person %d does not exist", *lic.ResponsiblePersonID))
			}
			return err
		}
	}
	return nil
}

type LicenseTypeService struct {
	types    ports.LicenseTypeRepository
	licenses ports.LicenseRepository
}

func NewLicenseTypeService(types ports.LicenseTypeRepository, licenses ports.LicenseRepository) *LicenseTypeService {
	return &LicenseTypeService{types: types, licenses: licenses}
}

func (s *LicenseTypeService) Create(ctx context.Context, lt domain.LicenseType, meta domain.MutationMeta) (domain.LicenseType, error) {
	if err := lt.Validate(); err != nil {
		return domain.LicenseType{}, err
	}
	return s.types.Create(ctx, lt, meta.Normalize())
}

func (s *LicenseTypeService) Update(ctx context.Context, lt domain.LicenseType, meta domain.MutationMeta) (domain.LicenseType, error) {
	if _, err := s.types.Get(ctx, lt.ID); err != nil {
		return domain.LicenseType{}, err
	}
	if err := lt.Validate(); err != nil {
		return domain.LicenseType{}, err
	}
	return s.types.Update(ctx, lt, meta.Normalize())
}

// Delete refuses to remove a type still referenced by licenses.
func (s *LicenseTypeService) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	count, err := s.licenses.CountByLicenseType(ctx, id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, fmt.Errorf("%w: %d licenses reference this type", domain.ErrConflict, count)
	}
	return s.types.Delete(ctx, id, meta.Normalize())
}

func (s *LicenseTypeService) Get(ctx context.Context, id uint) (domain.LicenseType, error) {
	return s.types.Get(ctx, id)
}

func (s *LicenseTypeService) ListAll(ctx context.Context) ([]domain.LicenseType, error) {
	return s.types.ListAll(ctx)
}
