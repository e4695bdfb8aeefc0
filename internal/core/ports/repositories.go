package ports

import (
	"context"
	"time"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
)

// Write methods take domain.MutationMeta so adapters can persist the
// audit row and outbox event in the same transaction as the change.

type EmployeeRepository interface {
	Create(ctx context.Context, emp domain.Employee, meta domain.MutationMeta) (domain.Employee, error)
	Update(ctx context.Context, emp domain.Employee, meta domain.MutationMeta) (domain.Employee, error)
	Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error)
	Get(ctx context.Context, id uint) (domain.Employee, error)
	List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, int64, error)
	CountByLocation(ctx context.Context, locationID uint) (int64, error)
}

type LocationRepository interface {
	Create(ctx context.Context, loc domain.Location, meta domain.MutationMeta) (domain.Location, error)
	Update(ctx context.Context, loc domain.Location, meta domain.MutationMeta) (domain.Location, error)
	Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error)
	Get(ctx context.Context, id uint) (domain.Location, error)
	ListAll(ctx context.Context) ([]domain.Location, error)
	HasChildren(ctx context.Context, id uint) (bool, error)
}

type LicenseTypeRepository interface {
	Create(ctx context.Context, lt domain.LicenseType, meta domain.MutationMeta) (domain.LicenseType, error)
	Update(ctx context.Context, lt domain.LicenseType, meta domain.MutationMeta) (domain.LicenseType, error)
	Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error)
	Get(ctx context.Context, id uint) (domain.LicenseType, error)
	ListAll(ctx context.Context) ([]domain.LicenseType, error)
}

type LicenseRepository interface {
	Create(ctx context.Context, lic domain.ClinicLicense, meta domain.MutationMeta) (domain.ClinicLicense, error)
	Update(ctx context.Context, lic domain.ClinicLicense, meta domain.MutationMeta) (domain.ClinicLicense, error)
	Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error)
	Get(ctx context.Context, id uint) (domain.ClinicLicense, error)
	List(ctx context.Context, filter domain.LicenseFilter) ([]domain.ClinicLicense, int64, error)
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.ClinicLicense, error)
	CountByResponsiblePerson(ctx context.Context, personID uint) (int64, error)
	CountByLicenseType(ctx context.Context, typeID uint) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.LicenseStatus]int64, error)
}

type ResponsiblePersonRepository interface {
	Create(ctx context.Context, p domain.ResponsiblePerson, meta domain.MutationMeta) (domain.ResponsiblePerson, error)
	Update(ctx context.Context, p domain.ResponsiblePerson, meta domain.MutationMeta) (domain.ResponsiblePerson, error)
	Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error)
	Get(ctx context.Context, id uint) (domain.ResponsiblePerson, error)
	ListAll(ctx context.Context) ([]domain.ResponsiblePerson, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc domain.ComplianceDocument, content []byte, meta domain.MutationMeta) (domain.ComplianceDocument, error)
	Delete(ctx context.Context, id uint, meta domain.MutationMeta) (bool, error)
	Get(ctx context.Context, id uint) (domain.ComplianceDocument, error)
	GetContent(ctx context.Context, id uint) ([]byte, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.ComplianceDocument, int64, error)
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.ComplianceDocument, error)
}

type APIKeyRepository interface {
	Create(ctx context.Context, key domain.APIKey, meta domain.MutationMeta) (domain.APIKey, error)
	FindByPrefix(ctx context.Context, prefix string) (domain.APIKey, error)
	Get(ctx context.Context, id string) (domain.APIKey, error)
	ListAll(ctx context.Context) ([]domain.APIKey, error)
	Revoke(ctx context.Context, id string, at time.Time, meta domain.MutationMeta) error
	TouchUsage(ctx context.Context, id string, at time.Time) error
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.APIKey, error)
	ListActiveOlderThan(ctx context.Context, cutoff time.Time) ([]domain.APIKey, error)

	CreateRotation(ctx context.Context, rot domain.KeyRotation) (domain.KeyRotation, error)
	ListRotations(ctx context.Context, keyID string) ([]domain.KeyRotation, error)
	ListDueRotations(ctx context.Context, now time.Time) ([]domain.KeyRotation, error)
	CompleteRotation(ctx context.Context, id uint) error
}

type AuditRepository interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, envelope domain.EventEnvelope) error
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkDispatched(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, errMsg string) error
	MarkDead(ctx context.Context, id int64, attempts int, errMsg string) error
}
