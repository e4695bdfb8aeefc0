package usecase

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type stubLicenseRepo struct {
	licenses []domain.ClinicLicense
	byStatus map[domain.LicenseStatus]int64
}

func (s *stubLicenseRepo) Create(_ context.Context, lic domain.ClinicLicense, _ domain.MutationMeta) (domain.ClinicLicense, error) {
	return lic, nil
}

func (s *stubLicenseRepo) Update(_ context.Context, lic domain.ClinicLicense, _ domain.MutationMeta) (domain.ClinicLicense, error) {
	return lic, nil
}

func (s *stubLicenseRepo) Delete(context.Context, uint, domain.MutationMeta) (bool, error) {
	return false, nil
}

func (s *stubLicenseRepo) Get(context.Context, uint) (domain.ClinicLicense, error) {
	return domain.ClinicLicense{}, domain.ErrNotFound
}

func (s *stubLicenseRepo) List(_ context.Context, filter domain.LicenseFilter) ([]domain.ClinicLicense, int64, error) {
	total := int64(len(s.licenses))
	start := filter.Page.Offset()
	if start >= len(s.licenses) {
		return nil, total, nil
	}
	end := start + filter.Page.Limit
	if end > len(s.licenses) {
		end = len(s.licenses)
	}
	return s.licenses[start:end], total, nil
}

func (s *stubLicenseRepo) ListExpiringBefore(_ context.Context, cutoff time.Time) ([]domain.ClinicLicense, error) {
	var out []domain.ClinicLicense
	for _, lic := range s.licenses {
		if lic.Status == domain.LicenseRevoked {
			continue
		}
		if lic.ExpiresAt != nil && !lic.ExpiresAt.After(cutoff) {
			out = append(out, lic)
		}
	}
	return out, nil
}

func (s *stubLicenseRepo) CountByResponsiblePerson(context.Context, uint) (int64, error) {
	return 0, nil
}

func (s *stubLicenseRepo) CountByLicenseType(context.Context, uint) (int64, error) {
	return 0, nil
}

func (s *stubLicenseRepo) CountByStatus(context.Context) (map[domain.LicenseStatus]int64, error) {
	return s.byStatus, nil
}

type stubDocumentRepo struct {
	expiring []domain.ComplianceDocument
}

func (s *stubDocumentRepo) Create(_ context.Context, doc domain.ComplianceDocument, _ []byte, _ domain.MutationMeta) (domain.ComplianceDocument, error) {
	return doc, nil
}

func (s *stubDocumentRepo) Delete(context.Context, uint, domain.MutationMeta) (bool, error) {
	return false, nil
}

func (s *stubDocumentRepo) Get(context.Context, uint) (domain.ComplianceDocument, error) {
	return domain.ComplianceDocument{}, domain.ErrNotFound
}

func (s *stubDocumentRepo) GetContent(context.Context, uint) ([]byte, error) {
	return nil, domain.ErrNotFound
}

func (s *stubDocumentRepo) List(context.Context, domain.DocumentFilter) ([]domain.ComplianceDocument, int64, error) {
	return nil, 0, nil
}

func (s *stubDocumentRepo) ListExpiringBefore(context.Context, time.Time) ([]domain.ComplianceDocument, error) {
	return s.expiring, nil
}

type stubLicenseTypeRepo struct {
	types []domain.LicenseType
}

func (s *stubLicenseTypeRepo) Create(_ context.Context, lt domain.LicenseType, _ domain.MutationMeta) (domain.LicenseType, error) {
	return lt, nil
}

func (s *stubLicenseTypeRepo) Update(_ context.Context, lt domain.LicenseType, _ domain.MutationMeta) (domain.LicenseType, error) {
	return lt, nil
}

func (s *stubLicenseTypeRepo) Delete(context.Context, uint, domain.MutationMeta) (bool, error) {
	return false, nil
}

func (s *stubLicenseTypeRepo) Get(context.Context, uint) (domain.LicenseType, error) {
	return domain.LicenseType{}, domain.ErrNotFound
}

func (s *stubLicenseTypeRepo) ListAll(context.Context) ([]domain.LicenseType, error) {
	return s.types, nil
}

func datePtr(t time.Time) *time.Time { return &t }

func TestComplianceDashboardWindows(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	licenses := &stubLicenseRepo{
		licenses: []domain.ClinicLicense{
			{ID: 1, Status: domain.LicenseActive, ExpiresAt: datePtr(now.AddDate(0, 0, 10))},
			{ID: 2, Status: domain.LicenseActive, ExpiresAt: datePtr(now.AddDate(0, 0, 45))},
			{ID: 3, Status: domain.LicensePendingRenewal, ExpiresAt: datePtr(now.AddDate(0, 0, 80))},
			{ID: 4, Status: domain.LicenseActive},
		},
		byStatus: map[domain.LicenseStatus]int64{
			domain.LicenseActive:         3,
			domain.LicensePendingRenewal: 1,
		},
	}
	docs := &stubDocumentRepo{expiring: []domain.ComplianceDocument{{ID: 1}, {ID: 2}}}

	svc := NewComplianceService(licenses, docs, newMemLocationStore(), &stubLicenseTypeRepo{})

	dash, err := svc.Dashboard(context.Background(), now)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if dash.ExpiringIn30Days != 1 {
		t.Fatalf("expiring in 30 days = %d, want 1", dash.ExpiringIn30Days)
	}
	if dash.ExpiringIn60Days != 2 {
		t.Fatalf("expiring in 60 days = %d, want 2", dash.ExpiringIn60Days)
	}
	if dash.ExpiringIn90Days != 3 {
		t.Fatalf("expiring in 90 days = %d, want 3", dash.ExpiringIn90Days)
	}
	if dash.DocumentsExpiring != 2 {
		t.Fatalf("documents expiring = %d, want 2", dash.DocumentsExpiring)
	}
	if dash.LicensesByStatus[domain.LicenseActive] != 3 {
		t.Fatalf("active count = %d, want 3", dash.LicensesByStatus[domain.LicenseActive])
	}
}

func TestComplianceExportCSV(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	locs := newMemLocationStore()
	main, err := locs.Create(context.Background(), domain.Location{Name: "Main Clinic", Kind: domain.LocationClinic}, domain.MutationMeta{})
	if err != nil {
		t.Fatalf("seed location: %v", err)
	}

	licenses := &stubLicenseRepo{
		licenses: []domain.ClinicLicense{
			{
				ID:            1,
				LicenseNumber: "FAC-001",
				LocationID:    main.ID,
				LicenseTypeID: 7,
				Status:        domain.LicenseActive,
				ExpiresAt:     datePtr(now.AddDate(0, 0, 20)),
			},
			{
				ID:            2,
				LicenseNumber: "FAC-002",
				LocationID:    main.ID,
				LicenseTypeID: 7,
				Status:        domain.LicenseActive,
			},
		},
	}
	types := &stubLicenseTypeRepo{types: []domain.LicenseType{{ID: 7, Name: "State Facility"}}}

	svc := NewComplianceService(licenses, &stubDocumentRepo{}, locs, types)

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), &buf, now); err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), buf.String())
	}
	if lines[0] != "license_number,location,license_type,status,expires_at,days_left" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "FAC-001,Main Clinic,State Facility,active,2026-02-04,20" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "FAC-002,Main Clinic,State Facility,active,," {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestComplianceExportCSVCoversEveryPage(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	licenses := &stubLicenseRepo{}
	for i := 0; i < 450; i++ {
		licenses.licenses = append(licenses.licenses, domain.ClinicLicense{
			ID:            uint(i + 1),
			LicenseNumber: "FAC-" + strconv.Itoa(i+1),
			Status:        domain.LicenseActive,
		})
	}

	svc := NewComplianceService(licenses, &stubDocumentRepo{}, newMemLocationStore(), &stubLicenseTypeRepo{})

	var buf bytes.Buffer
	if err := svc.ExportCSV(context.Background(), &buf, now); err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 451 {
		t.Fatalf("got %d lines, want header plus all 450 rows", len(lines))
	}
	if !strings.HasPrefix(lines[450], "FAC-450,") {
		t.Fatalf("last row = %q", lines[450])
	}
}
