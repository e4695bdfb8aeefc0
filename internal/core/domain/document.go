package domain

import "time"

const MaxDocumentBytes = 10 << 20

// ComplianceDocument is an uploaded file kept for regulatory
// record-keeping, attached to a license, a location, or both.
type ComplianceDocument struct {
	ID          uint
	Title       string
	Kind        string
	LicenseID   *uint
	LocationID  *uint
	FileName    string
	ContentType string
	ByteSize    int64
	SHA256      string
	UploadedBy  string
	EffectiveAt *time.Time
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (d ComplianceDocument) Validate() error {
	var ve ValidationError
	if d.Title == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "title", Message: "required"})
	}
	if d.FileName == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "file_name", Message: "required"})
	}
	if d.LicenseID == nil && d.LocationID == nil {
		ve.Fields = append(ve.Fields, FieldError{Field: "license_id", Message: "document must reference a license or a location"})
	}
	if d.ByteSize > MaxDocumentBytes {
		ve.Fields = append(ve.Fields, FieldError{Field: "content", Message: "exceeds maximum document size"})
	}
	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Page       PageRequest
	Kind       string
	LicenseID  *uint
	LocationID *uint
}
