package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
)

// Dashboard aggregates the compliance posture: license counts by status
// and counts of items coming due inside the standard windows.
type Dashboard struct {
	LicensesByStatus  map[domain.LicenseStatus]int64 `json:"licenses_by_status"`
	ExpiringIn30Days  int                            `json:"expiring_in_30_days"`
	ExpiringIn60Days  int                            `json:"expiring_in_60_days"`
	ExpiringIn90Days  int                            `json:"expiring_in_90_days"`
	DocumentsExpiring int                            `json:"documents_expiring_in_30_days"`
	GeneratedAt       time.Time                      `json:"generated_at"`
}

type ComplianceService struct {
	licenses ports.LicenseRepository
	docs     ports.DocumentRepository
	locs     ports.LocationRepository
	types    ports.LicenseTypeRepository
}

func NewComplianceService(licenses ports.LicenseRepository, docs ports.DocumentRepository, locs ports.LocationRepository, types ports.LicenseTypeRepository) *ComplianceService {
	return &ComplianceService{licenses: licenses, docs: docs, locs: locs, types: types}
}

func (s *ComplianceService) Dashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	byStatus, err := s.licenses.CountByStatus(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count licenses: %w", err)
	}

	in90, err := s.licenses.ListExpiringBefore(ctx, now.AddDate(0, 0, 90))
	if err != nil {
		return Dashboard{}, fmt.Errorf("list expiring licenses: %w", err)
	}

	dash := Dashboard{
		LicensesByStatus: byStatus,
		GeneratedAt:      now,
	}
	for _, lic := range in90 {
		days, ok := lic.DaysUntilExpiry(now)
		if !ok {
			continue
		}
		if days <= 30 {
			dash.ExpiringIn30Days++
		}
		if days <= 60 {
			dash.ExpiringIn60Days++
		}
		dash.ExpiringIn90Days++
	}

	docs, err := s.docs.ListExpiringBefore(ctx, now.AddDate(0, 0, 30))
	if err != nil {
		return Dashboard{}, fmt.Errorf("list expiring documents: %w", err)
	}
	dash.DocumentsExpiring = len(docs)

	return dash, nil
}

// ExportCSV writes all licenses as CSV: number, location, type, status,
// expiry date, and whole days left. Licenses are streamed page by page so
// the export never truncates.
func (s *ComplianceService) ExportCSV(ctx context.Context, w io.Writer, now time.Time) error {
	locNames, err := s.locationNames(ctx)
	if err != nil {
		return err
	}
	typeNames, err := s.typeNames(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"license_number", "location", "license_type", "status", "expires_at", "days_left"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	page := domain.PageRequest{Page: 1, Limit: 200}.Normalize()
	for {
		licenses, _, err := s.licenses.List(ctx, domain.LicenseFilter{Page: page})
		if err != nil {
			return fmt.Errorf("list licenses page %d: %w", page.Page, err)
		}

		for _, lic := range licenses {
			expires := ""
			daysLeft := ""
			if lic.ExpiresAt != nil {
				expires = lic.ExpiresAt.Format("2006-01-02")
				if days, ok := lic.DaysUntilExpiry(now); ok {
					daysLeft = strconv.Itoa(days)
				}
			}
			row := []string{
				lic.LicenseNumber,
				locNames[lic.LocationID],
				typeNames[lic.LicenseTypeID],
				string(lic.Status),
				expires,
				daysLeft,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}

		if len(licenses) < page.Limit {
			break
		}
		page.Page++
	}

	cw.Flush()
	return cw.Error()
}

func (s *ComplianceService) locationNames(ctx context.Context) (map[uint]string, error) {
	locs, err := s.locs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	names := make(map[uint]string, len(locs))
	for _, loc := range locs {
		names[loc.ID] = loc.Name
	}
	return names, nil
}

func (s *ComplianceService) typeNames(ctx context.Context) (map[uint]string, error) {
	types, err := s.types.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list license types: %w", err)
	}
	names := make(map[uint]string, len(types))
	for _, lt := range types {
		names[lt.ID] = lt.Name
	}
	return names, nil
}
