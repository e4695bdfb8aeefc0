package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type licenseFixture struct {
	repo   *LicenseRepository
	clinic domain.Location
	ltype  domain.LicenseType
	person domain.ResponsiblePerson
}

func newLicenseFixture(t *testing.T) (*licenseFixture, context.Context) {
	t.Helper()
	ctx := context.Background()
	db := openTestDB(t)
	meta := domain.MutationMeta{Actor: "tester"}.Normalize()

	clinic, err := NewLocationRepository(db).Create(ctx, domain.Location{Name: "Main", Kind: domain.LocationClinic, Active: true}, meta)
	if err != nil {
		t.Fatalf("seed location: %v", err)
	}
	ltype, err := NewLicenseTypeRepository(db).Create(ctx, domain.LicenseType{Name: "State Facility", Category: domain.LicenseFacility}, meta)
	if err != nil {
		t.Fatalf("seed type: %v", err)
	}
	person, err := NewResponsiblePersonRepository(db).Create(ctx, domain.ResponsiblePerson{Name: "Dr. Pat Reyes", Email: "pat@example.org"}, meta)
	if err != nil {
		t.Fatalf("seed person: %v", err)
	}

	return &licenseFixture{
		repo:   NewLicenseRepository(db),
		clinic: clinic,
		ltype:  ltype,
		person: person,
	}, ctx
}

func (f *licenseFixture) seed(t *testing.T, number string, status domain.LicenseStatus, expires *time.Time) domain.ClinicLicense {
	t.Helper()
	lic, err := f.repo.Create(context.Background(), domain.ClinicLicense{
		LicenseNumber:       number,
		LocationID:          f.clinic.ID,
		LicenseTypeID:       f.ltype.ID,
		ResponsiblePersonID: &f.person.ID,
		Status:              status,
		ExpiresAt:           expires,
	}, domain.MutationMeta{Actor: "tester"})
	if err != nil {
		t.Fatalf("seed license %s: %v", number, err)
	}
	return lic
}

func TestLicenseRepositoryUniqueNumber(t *testing.T) {
	f, ctx := newLicenseFixture(t)
	f.seed(t, "FAC-001", domain.LicenseActive, nil)

	_, err := f.repo.Create(ctx, domain.ClinicLicense{
		LicenseNumber: "FAC-001",
		LocationID:    f.clinic.ID,
		LicenseTypeID: f.ltype.ID,
		Status:        domain.LicenseActive,
	}, domain.MutationMeta{})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate number: got %v, want ErrConflict", err)
	}
}

func TestLicenseRepositoryListFilters(t *testing.T) {
	f, ctx := newLicenseFixture(t)
	now := time.Now().UTC()
	soon := now.AddDate(0, 0, 15)
	later := now.AddDate(0, 0, 200)

	f.seed(t, "FAC-001", domain.LicenseActive, &soon)
	f.seed(t, "FAC-002", domain.LicenseActive, &later)
	f.seed(t, "DEA-001", domain.LicensePendingRenewal, nil)

	active, total, err := f.repo.List(ctx, domain.LicenseFilter{
		Page:   domain.PageRequest{}.Normalize(),
		Status: domain.LicenseActive,
	})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if total != 2 || len(active) != 2 {
		t.Fatalf("active: total=%d len=%d", total, len(active))
	}

	cutoff := now.AddDate(0, 0, 30)
	within, total, err := f.repo.List(ctx, domain.LicenseFilter{
		Page:          domain.PageRequest{}.Normalize(),
		ExpiresWithin: &cutoff,
	})
	if err != nil {
		t.Fatalf("list expiring: %v", err)
	}
	if total != 1 || within[0].LicenseNumber != "FAC-001" {
		t.Fatalf("expiring window: total=%d %+v", total, within)
	}

	byType, total, err := f.repo.List(ctx, domain.LicenseFilter{
		Page:          domain.PageRequest{}.Normalize(),
		LicenseTypeID: &f.ltype.ID,
	})
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if total != 3 || len(byType) != 3 {
		t.Fatalf("by type: total=%d len=%d", total, len(byType))
	}
}

func TestLicenseRepositoryExpiryScanSkipsRevoked(t *testing.T) {
	f, ctx := newLicenseFixture(t)
	now := time.Now().UTC()
	soon := now.AddDate(0, 0, 10)

	f.seed(t, "FAC-001", domain.LicenseActive, &soon)
	f.seed(t, "FAC-002", domain.LicenseRevoked, &soon)
	f.seed(t, "FAC-003", domain.LicenseActive, nil)

	expiring, err := f.repo.ListExpiringBefore(ctx, now.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("list expiring: %v", err)
	}
	if len(expiring) != 1 || expiring[0].LicenseNumber != "FAC-001" {
		t.Fatalf("expiring = %+v", expiring)
	}
}

func TestLicenseRepositoryCounts(t *testing.T) {
	f, ctx := newLicenseFixture(t)
	f.seed(t, "FAC-001", domain.LicenseActive, nil)
	f.seed(t, "FAC-002", domain.LicenseActive, nil)
	f.seed(t, "FAC-003", domain.LicenseExpired, nil)

	byStatus, err := f.repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if byStatus[domain.LicenseActive] != 2 || byStatus[domain.LicenseExpired] != 1 {
		t.Fatalf("by status = %+v", byStatus)
	}

	count, err := f.repo.CountByResponsiblePerson(ctx, f.person.ID)
	if err != nil {
		t.Fatalf("count by person: %v", err)
	}
	if count != 3 {
		t.Fatalf("by person = %d, want 3", count)
	}

	count, err = f.repo.CountByLicenseType(ctx, f.ltype.ID)
	if err != nil {
		t.Fatalf("count by type: %v", err)
	}
	if count != 3 {
		t.Fatalf("by type = %d, want 3", count)
	}
}
