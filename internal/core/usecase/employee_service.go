package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
)

type EmployeeService struct {
	employees ports.EmployeeRepository
	locations ports.LocationRepository
}

func NewEmployeeService(employees ports.EmployeeRepository, locations ports.LocationRepository) *EmployeeService {
	return &EmployeeService{employees: employees, locations: locations}
}

func (s *EmployeeService) Create(ctx context.Context, emp domain.Employee, meta domain.MutationMeta) (domain.Employee, error) {
	if emp.Status == "" {
		emp.Status = domain.EmployeeActive
	}
	if err := emp.Validate(); err != nil {
		return domain.Employee{}, err
	}
	if err := s.ensureLocation(ctx, emp.LocationID); err != nil {
		return domain.Employee{}, err
	}
	return s.employees.Create(ctx, emp, meta.Normalize())
}

func (s *EmployeeService) Update(ctx context.Context, emp domain.Employee, meta domain.MutationMeta) (domain.Employee, error) {
	if _, err := s.employees.Get(ctx, emp.ID); err != nil {
		return domain.Employee{}, err
	}
	if err := emp.Validate(); err != nil {
		return domain.Employee{}, err
	}
	if err := s.ensureLocation(ctx, emp.LocationID); err != nil {
		return domain.Employee{}, err
	}
	return s.employees.Update(ctx, emp, meta.Normalize())
}

func (s *EmployeeService) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	return s.employees.Delete(ctx, id, meta.Normalize())
}

func (s *EmployeeService) Get(ctx context.Context, id uint) (domain.Employee, error) {
	return s.employees.Get(ctx, id)
}

func (s *EmployeeService) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, int64, error) {
	filter.Page = filter.Page.Normalize()
	if filter.Status != "" {
		switch filter.Status {
		case domain.EmployeeActive, domain.EmployeeOnLeave, domain.EmployeeTerminated:
		default:
			return nil, 0, domain.NewValidationError("status", "unknown status filter")
		}
	}
	return s.employees.List(ctx, filter)
}

func (s *EmployeeService) ensureLocation(ctx context.Context, locationID *uint) error {
	if locationID == nil {
		return nil
	}
	if _, err := s.locations.Get(ctx, *locationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("location_id", fmt.Sprintf("location %d does not exist", *locationID))
		}
		return err
	}
	return nil
}
