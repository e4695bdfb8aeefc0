package storage

import (
	"encoding/json"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

type employeeModel struct {
	ID         uint       `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName  string     `gorm:"column:first_name;not null"`
	LastName   string     `gorm:"column:last_name;not null"`
	Email      string     `gorm:"column:email;not null"`
	Phone      string     `gorm:"column:phone;not null"`
	Role       string     `gorm:"column:role;not null"`
	NPINumber  string     `gorm:"column:npi_number;not null"`
	Status     string     `gorm:"column:status;not null"`
	LocationID *uint      `gorm:"column:location_id"`
	HiredAt    *time.Time `gorm:"column:hired_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null"`
}

func (employeeModel) TableName() string { return "employees" }

func (m employeeModel) toDomain() domain.Employee {
	return domain.Employee{
		ID:         m.ID,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Email:      m.Email,
		Phone:      m.Phone,
		Role:       m.Role,
		NPINumber:  m.NPINumber,
		Status:     domain.EmployeeStatus(m.Status),
		LocationID: m.LocationID,
		HiredAt:    m.HiredAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func employeeFromDomain(e domain.Employee) employeeModel {
	return employeeModel{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Phone:      e.Phone,
		Role:       e.Role,
		NPINumber:  e.NPINumber,
		Status:     string(e.Status),
		LocationID: e.LocationID,
		HiredAt:    e.HiredAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

type locationModel struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Kind      string    `gorm:"column:kind;not null"`
	Address   string    `gorm:"column:address;not null"`
	City      string    `gorm:"column:city;not null"`
	State     string    `gorm:"column:state;not null"`
	Zip       string    `gorm:"column:zip;not null"`
	ParentID  *uint     `gorm:"column:parent_id"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (locationModel) TableName() string { return "locations" }

func (m locationModel) toDomain() domain.Location {
	return domain.Location{
		ID:        m.ID,
		Name:      m.Name,
		Kind:      domain.LocationKind(m.Kind),
		Address:   m.Address,
		City:      m.City,
		State:     m.State,
		Zip:       m.Zip,
		ParentID:  m.ParentID,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func locationFromDomain(l domain.Location) locationModel {
	return locationModel{
		ID:        l.ID,
		Name:      l.Name,
		Kind:      string(l.Kind),
		Address:   l.Address,
		City:      l.City,
		State:     l.State,
		Zip:       l.Zip,
		ParentID:  l.ParentID,
		Active:    l.Active,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

type licenseTypeModel struct {
	ID                 uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name               string    `gorm:"column:name;not null"`
	Category           string    `gorm:"column:category;not null"`
	RenewalPeriodMonth int       `gorm:"column:renewal_period_months;not null"`
	Description        string    `gorm:"column:description;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null"`
}

func (licenseTypeModel) TableName() string { return "license_types" }

func (m licenseTypeModel) toDomain() domain.LicenseType {
	return domain.LicenseType{
		ID:                 m.ID,
		Name:               m.Name,
		Category:           domain.LicenseCategory(m.Category),
		RenewalPeriodMonth: m.RenewalPeriodMonth,
		Description:        m.Description,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func licenseTypeFromDomain(t domain.LicenseType) licenseTypeModel {
	return licenseTypeModel{
		ID:                 t.ID,
		Name:               t.Name,
		Category:           string(t.Category),
		RenewalPeriodMonth: t.RenewalPeriodMonth,
		Description:        t.Description,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

type clinicLicenseModel struct {
	ID                  uint       `gorm:"column:id;primaryKey;autoIncrement"`
	LicenseNumber       string     `gorm:"column:license_number;not null"`
	LocationID          uint       `gorm:"column:location_id;not null"`
	LicenseTypeID       uint       `gorm:"column:license_type_id;not null"`
	ResponsiblePersonID *uint      `gorm:"column:responsible_person_id"`
	Status              string     `gorm:"column:status;not null"`
	IssuedAt            *time.Time `gorm:"column:issued_at"`
	ExpiresAt           *time.Time `gorm:"column:expires_at"`
	Notes               string     `gorm:"column:notes;not null"`
	CreatedAt           time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;not null"`
}

func (clinicLicenseModel) TableName() string { return "clinic_licenses" }

func (m clinicLicenseModel) toDomain() domain.ClinicLicense {
	return domain.ClinicLicense{
		ID:                  m.ID,
		LicenseNumber:       m.LicenseNumber,
		LocationID:          m.LocationID,
		LicenseTypeID:       m.LicenseTypeID,
		ResponsiblePersonID: m.ResponsiblePersonID,
		Status:              domain.LicenseStatus(m.Status),
		IssuedAt:            m.IssuedAt,
		ExpiresAt:           m.ExpiresAt,
		Notes:               m.Notes,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func clinicLicenseFromDomain(l domain.ClinicLicense) clinicLicenseModel {
	return clinicLicenseModel{
		ID:                  l.ID,
		LicenseNumber:       l.LicenseNumber,
		LocationID:          l.LocationID,
		LicenseTypeID:       l.LicenseTypeID,
		ResponsiblePersonID: l.ResponsiblePersonID,
		Status:              string(l.Status),
		IssuedAt:            l.IssuedAt,
		ExpiresAt:           l.ExpiresAt,
		Notes:               l.Notes,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

type responsiblePersonModel struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Phone     string    `gorm:"column:phone;not null"`
	Title     string    `gorm:"column:title;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (responsiblePersonModel) TableName() string { return "responsible_persons" }

func (m responsiblePersonModel) toDomain() domain.ResponsiblePerson {
	return domain.ResponsiblePerson{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func responsiblePersonFromDomain(p domain.ResponsiblePerson) responsiblePersonModel {
	return responsiblePersonModel{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Title:     p.Title,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type documentModel struct {
	ID          uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string     `gorm:"column:title;not null"`
	Kind        string     `gorm:"column:kind;not null"`
	LicenseID   *uint      `gorm:"column:license_id"`
	LocationID  *uint      `gorm:"column:location_id"`
	FileName    string     `gorm:"column:file_name;not null"`
	ContentType string     `gorm:"column:content_type;not null"`
	ByteSize    int64      `gorm:"column:byte_size;not null"`
	SHA256      string     `gorm:"column:sha256;not null"`
	UploadedBy  string     `gorm:"column:uploaded_by;not null"`
	EffectiveAt *time.Time `gorm:"column:effective_at"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
}

func (documentModel) TableName() string { return "compliance_documents" }

func (m documentModel) toDomain() domain.ComplianceDocument {
	return domain.ComplianceDocument{
		ID:          m.ID,
		Title:       m.Title,
		Kind:        m.Kind,
		LicenseID:   m.LicenseID,
		LocationID:  m.LocationID,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		ByteSize:    m.ByteSize,
		SHA256:      m.SHA256,
		UploadedBy:  m.UploadedBy,
		EffectiveAt: m.EffectiveAt,
		ExpiresAt:   m.ExpiresAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func documentFromDomain(d domain.ComplianceDocument) documentModel {
	return documentModel{
		ID:          d.ID,
		Title:       d.Title,
		Kind:        d.Kind,
		LicenseID:   d.LicenseID,
		LocationID:  d.LocationID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		ByteSize:    d.ByteSize,
		SHA256:      d.SHA256,
		UploadedBy:  d.UploadedBy,
		EffectiveAt: d.EffectiveAt,
		ExpiresAt:   d.ExpiresAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type documentBlobModel struct {
	DocumentID uint   `gorm:"column:document_id;primaryKey"`
	Content    []byte `gorm:"column:content;not null"`
}

func (documentBlobModel) TableName() string { return "document_blobs" }

type apiKeyModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	KeyPrefix   string     `gorm:"column:key_prefix;not null"`
	TokenHash   string     `gorm:"column:token_hash;not null"`
	Permissions string     `gorm:"column:permissions;not null"`
	Owner       string     `gorm:"column:owner;not null"`
	Active      bool       `gorm:"column:active;not null"`
	HourlyLimit int        `gorm:"column:hourly_limit;not null"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	RevokedAt   *time.Time `gorm:"column:revoked_at"`
	RotatedFrom *string    `gorm:"column:rotated_from"`
	LastUsedAt  *time.Time `gorm:"column:last_used_at"`
	UsageCount  int64      `gorm:"column:usage_count;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
}

func (apiKeyModel) TableName() string { return "api_keys" }

func (m apiKeyModel) toDomain() domain.APIKey {
	var perms []string
	_ = json.Unmarshal([]byte(m.Permissions), &perms)
	return domain.APIKey{
		ID:          m.ID,
		Name:        m.Name,
		KeyPrefix:   m.KeyPrefix,
		TokenHash:   m.TokenHash,
		Permissions: perms,
		Owner:       m.Owner,
		Active:      m.Active,
		HourlyLimit: m.HourlyLimit,
		ExpiresAt:   m.ExpiresAt,
		RevokedAt:   m.RevokedAt,
		RotatedFrom: m.RotatedFrom,
		LastUsedAt:  m.LastUsedAt,
		UsageCount:  m.UsageCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func apiKeyFromDomain(k domain.APIKey) apiKeyModel {
	perms, _ := json.Marshal(k.Permissions)
	return apiKeyModel{
		ID:          k.ID,
		Name:        k.Name,
		KeyPrefix:   k.KeyPrefix,
		TokenHash:   k.TokenHash,
		Permissions: string(perms),
		Owner:       k.Owner,
		Active:      k.Active,
		HourlyLimit: k.HourlyLimit,
		ExpiresAt:   k.ExpiresAt,
		RevokedAt:   k.RevokedAt,
		RotatedFrom: k.RotatedFrom,
		LastUsedAt:  k.LastUsedAt,
		UsageCount:  k.UsageCount,
		CreatedAt:   k.CreatedAt,
		UpdatedAt:   k.UpdatedAt,
	}
}

type keyRotationModel struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	OldKeyID    string    `gorm:"column:old_key_id;not null"`
	NewKeyID    string    `gorm:"column:new_key_id;not null"`
	GraceEndsAt time.Time `gorm:"column:grace_ends_at;not null"`
	Completed   bool      `gorm:"column:completed;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (keyRotationModel) TableName() string { return "key_rotations" }

func (m keyRotationModel) toDomain() domain.KeyRotation {
	return domain.KeyRotation{
		ID:          m.ID,
		OldKeyID:    m.OldKeyID,
		NewKeyID:    m.NewKeyID,
		GraceEndsAt: m.GraceEndsAt,
		Completed:   m.Completed,
		CreatedAt:   m.CreatedAt,
	}
}

type auditModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Entity     string    `gorm:"column:entity;not null"`
	EntityID   string    `gorm:"column:entity_id;not null"`
	Action     string    `gorm:"column:action;not null"`
	Actor      string    `gorm:"column:actor;not null"`
	RequestID  string    `gorm:"column:request_id;not null"`
	BeforeJSON string    `gorm:"column:before_json"`
	AfterJSON  string    `gorm:"column:after_json"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
}

func (auditModel) TableName() string { return "audit_entries" }

type outboxModel struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	EventID       string     `gorm:"column:event_id;not null"`
	Topic         string     `gorm:"column:topic;not null"`
	PayloadJSON   string     `gorm:"column:payload_json;not null"`
	Status        string     `gorm:"column:status;not null"`
	Attempts      int        `gorm:"column:attempts;not null"`
	NextAttemptAt time.Time  `gorm:"column:next_attempt_at;not null"`
	LastError     string     `gorm:"column:last_error;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	DispatchedAt  *time.Time `gorm:"column:dispatched_at"`
}

func (outboxModel) TableName() string { return "outbox_events" }
