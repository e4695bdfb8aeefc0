package usecase

import (
	"context"
	"fmt"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
)

type ResponsiblePersonService struct {
	persons  ports.ResponsiblePersonRepository
	licenses ports.LicenseRepository
}

func NewResponsiblePersonService(persons ports.ResponsiblePersonRepository, licenses ports.LicenseRepository) *ResponsiblePersonService {
	return &ResponsiblePersonService{persons: persons, licenses: licenses}
}

func (s *ResponsiblePersonService) Create(ctx context.Context, p domain.ResponsiblePerson, meta domain.MutationMeta) (domain.ResponsiblePerson, error) {
	if err := p.Validate(); err != nil {
		return domain.ResponsiblePerson{}, err
	}
	return s.persons.Create(ctx, p, meta.Normalize())
}

func (s *ResponsiblePersonService) Update(ctx context.Context, p domain.ResponsiblePerson, meta domain.MutationMeta) (domain.ResponsiblePerson, error) {
	if _, err := s.persons.Get(ctx, p.ID); err != nil {
		return domain.ResponsiblePerson{}, err
	}
	if err := p.Validate(); err != nil {
		return domain.ResponsiblePerson{}, err
	}
	return s.persons.Update(ctx, p, meta.Normalize())
}

// Delete refuses to remove a person still accountable for licenses.
func (s *ResponsiblePersonService) Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error) {
	count, err := s.licenses.CountByResponsiblePerson(ctx, id)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, fmt.Errorf("%w: person is responsible for %d licenses", domain.ErrConflict, count)
	}
	return s.persons.Delete(ctx, id, meta.Normalize())
}

func (s *ResponsiblePersonService) Get(ctx context.Context, id uint) (domain.ResponsiblePerson, error) {
	return s.persons.Get(ctx, id)
}

func (s *ResponsiblePersonService) ListAll(ctx context.Context) ([]domain.ResponsiblePerson, error) {
	return s.persons.ListAll(ctx)
}
