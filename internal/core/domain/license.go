package domain

import "time"

type LicenseCategory string

const (
	LicenseFacility     LicenseCategory = "facility"
	LicenseProfessional LicenseCategory = "professional"
	LicenseOperational  LicenseCategory = "operational"
)

type LicenseStatus string

const (
	LicenseActive         LicenseStatus = "active"
	LicensePendingRenewal LicenseStatus = "pending_renewal"
	LicenseExpired        LicenseStatus = "expired"
	LicenseRevoked        LicenseStatus = "revoked"
)

// LicenseType describes a class of license a clinic can hold, such as a
// state facility license or a DEA registration.
type LicenseType struct {
	ID                 uint
	Name               string
	Category           LicenseCategory
	RenewalPeriodMonth int
	Description        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (t LicenseType) Validate() error {
	var ve ValidationError
	if t.Name == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "name", Message: "required"})
	}
	switch t.Category {
	case LicenseFacility, LicenseProfessional, LicenseOperational:
	default:
		ve.Fields = append(ve.Fields, FieldError{Field: "category", Message: "must be one of facility, professional, operational"})
	}
	if t.RenewalPeriodMonth < 0 {
		ve.Fields = append(ve.Fields, FieldError{Field: "renewal_period_months", Message: "must not be negative"})
	}
	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// ClinicLicense ties a license number to a location, a license type, and
// the person accountable for keeping it current.
type ClinicLicense struct {
	ID                  uint
	LicenseNumber       string
	LocationID          uint
	LicenseTypeID       uint
	ResponsiblePersonID *uint
	Status              LicenseStatus
	IssuedAt            *time.Time
	ExpiresAt           *time.Time
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (l ClinicLicense) Validate() error {
	var ve ValidationError
	if l.LicenseNumber == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "license_number", Message: "required"})
	}
	if l.LocationID == 0 {
		ve.Fields = append(ve.Fields, FieldError{Field: "location_id", Message: "required"})
	}
	if l.LicenseTypeID == 0 {
		ve.Fields = append(ve.Fields, FieldError{Field: "license_type_id", Message: "required"})
	}
	switch l.Status {
	case LicenseActive, LicensePendingRenewal, LicenseExpired, LicenseRevoked:
	default:
		ve.Fields = append(ve.Fields, FieldError{Field: "status", Message: "must be one of active, pending_renewal, expired, revoked"})
	}
	if l.IssuedAt != nil && l.ExpiresAt != nil && l.ExpiresAt.Before(*l.IssuedAt) {
		ve.Fields = append(ve.Fields, FieldError{Field: "expires_at", Message: "must not precede issue date"})
	}
	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// DaysUntilExpiry returns the whole days left before expiry, negative once
// past due. Licenses without an expiry date report ok=false.
func (l ClinicLicense) DaysUntilExpiry(now time.Time) (days int, ok bool) {
	if l.ExpiresAt == nil {
		return 0, false
	}
	return int(l.ExpiresAt.Sub(now).Hours() / 24), true
}

// LicenseFilter narrows license listings.
type LicenseFilter struct {
	Page          PageRequest
	Status        LicenseStatus
	LocationID    *uint
	LicenseTypeID *uint
	ExpiresWithin *time.Time
}
