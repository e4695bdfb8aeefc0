package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
)

const maxLocationDepth = 20

type LocationService struct {
	locations ports.LocationRepository
	employees ports.EmployeeRepository
}

func NewLocationService(locations ports.LocationRepository, employees ports.EmployeeRepository) *LocationService {
	return &LocationService{locations: locations, employees: employees}
}

func (s *LocationService) Create(ctx context.Context, loc domain.Location, meta domain.MutationMeta) (domain.Location, error) {
	if err := loc.Validate(); err != nil {
		return domain.Location{}, err
	}
	if loc.ParentID != nil {
		if _, err := s.locations.Get(ctx, *loc.ParentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Location{}, domain.NewValidationError("parent_id", fmt.Sprintf("location %d does not exist", *loc.ParentID))
			}
			return domain.Location{}, err
		}
	}
	return s.locations.Create(ctx, loc, meta.Normalize())
}

func (s *LocationService) Update(ctx context.Context, loc domain.Location, meta domain.MutationMeta) (domain.Location, error) {
	if _, err := s.locations.Get(ctx, loc.ID); err != nil {
		return domain.Location{}, err
	}
	if err := loc.Validate(); err != nil {
		return domain.Location{}, err
	}
	if loc.ParentID != nil {
		if err := s.checkAncestry(ctx, loc.ID, *loc.ParentID); err != nil {
			return domain.Location{}, err
		}
	}
	return s.locations.Update(ctx, loc, meta.Normalize())
}

// Delete refuses to remove a location that still has children or assigned
// employees.
func (s *LocationService) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	hasChildren, err := s.locations.HasChildren(ctx, id)
	if err != nil {
		return false, err
	}
	if hasChildren {
		return false, fmt.Errorf("%w: location has child locations", domain.ErrConflict)
	}
	count, err := s.employees.CountByLocation(ctx, id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, fmt.Errorf("%w: location has %d assigned employees", domain.ErrConflict, count)
	}
	return s.locations.Delete(ctx, id, meta.Normalize())
}

func (s *LocationService) Get(ctx context.Context, id uint) (domain.Location, error) {
	return s.locations.Get(ctx, id)
}

func (s *LocationService) ListFlat(ctx context.Context) ([]domain.Location, error) {
	return s.locations.ListAll(ctx)
}

func (s *LocationService) ListTree(ctx context.Context) ([]domain.LocationNode, error) {
	flat, err := s.locations.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.BuildLocationTree(flat), nil
}

// checkAncestry walks up from newParent and rejects the change if id is
// found on the path, which would make the location its own ancestor.
func (s *LocationService) checkAncestry(ctx context.Context, id, newParent uint) error {
	if id == newParent {
		return domain.NewValidationError("parent_id", "location cannot be its own parent")
	}
	current := newParent
	for depth := 0; depth < maxLocationDepth; depth++ {
		loc, err := s.locations.Get(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("parent_id", fmt.Sprintf("location %d does not exist", current))
			}
			return err
		}
		if loc.ParentID == nil {
			return nil
		}
		if *loc.ParentID == id {
			return domain.NewValidationError("parent_id", "location cannot be moved under its own descendant")
		}
		current = *loc.ParentID
	}
	return domain.NewValidationError("parent_id", "location tree too deep")
}
