package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/nmadhukar/workforcenexus/internal/adapters/httpapi"
	"github.com/nmadhukar/workforcenexus/internal/adapters/notify"
	"github.com/nmadhukar/workforcenexus/internal/adapters/storage"
	"github.com/nmadhukar/workforcenexus/internal/adapters/storage/gormdb"
	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
	"github.com/nmadhukar/workforcenexus/internal/core/usecase"
	"github.com/nmadhukar/workforcenexus/internal/log"
	"github.com/nmadhukar/workforcenexus/migrations"
)

type Config struct {
	Addr           string
	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string // postgres URL or sqlite file path
	Env            string // token environment segment, e.g. "live" or "test"

	// BootstrapAPIKey, if set, is registered at startup as an admin key so
	// a fresh deployment can mint the real keys over the API.
	BootstrapAPIKey string

	WebhookURL    string
	WebhookSecret string

	DisableScheduler bool
	KeyMaxAge        time.Duration
	RotationGrace    time.Duration
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	db, err := gormdb.Open(gormdb.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := migrations.Up(migCtx, writeSQLDB, db.GooseDialect()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	employeeRepo := storage.NewEmployeeRepository(db)
	locationRepo := storage.NewLocationRepository(db)
	typeRepo := storage.NewLicenseTypeRepository(db)
	licenseRepo := storage.NewLicenseRepository(db)
	personRepo := storage.NewResponsiblePersonRepository(db)
	documentRepo := storage.NewDocumentRepository(db)
	apiKeyRepo := storage.NewAPIKeyRepository(db)
	auditRepo := storage.NewAuditRepository(db)
	outboxRepo := storage.NewOutboxRepository(db)

	limiter := usecase.NewHourlyLimiter()
	authService := usecase.NewAuthService(apiKeyRepo, outboxRepo, limiter, cfg.Env)
	employeeService := usecase.NewEmployeeService(employeeRepo, locationRepo)
	locationService := usecase.NewLocationService(locationRepo, employeeRepo)
	typeService := usecase.NewLicenseTypeService(typeRepo, licenseRepo)
	licenseService := usecase.NewLicenseService(licenseRepo, typeRepo, personRepo, locationRepo)
	personService := usecase.NewResponsiblePersonService(personRepo, licenseRepo)
	documentService := usecase.NewDocumentService(documentRepo, licenseRepo, locationRepo)
	complianceService := usecase.NewComplianceService(licenseRepo, documentRepo, locationRepo, typeRepo)
	auditService := usecase.NewAuditService(auditRepo)

	var publisher ports.EventPublisher = notify.NewLogPublisher()
	if cfg.WebhookURL != "" {
		publisher = notify.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, 0)
	}
	dispatcher := usecase.NewNotifyDispatcher(outboxRepo, publisher, 2*time.Second, 100)
	dispatcher.Start(context.Background())

	closers := []io.Closer{dispatcher, db}

	if !cfg.DisableScheduler {
		scheduler := usecase.NewScheduler(usecase.SchedulerConfig{
			KeyMaxAge:     cfg.KeyMaxAge,
			RotationGrace: cfg.RotationGrace,
		}, limiter, licenseService, authService, outboxRepo)
		if err := scheduler.Start(); err != nil {
			_ = dispatcher.Close()
			_ = db.Close()
			return nil, nil, fmt.Errorf("start scheduler: %w", err)
		}
		closers = append([]io.Closer{closerFunc(scheduler.Close)}, closers...)
	}

	if cfg.BootstrapAPIKey != "" {
		bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := bootstrapAdminKey(bootstrapCtx, apiKeyRepo, cfg.BootstrapAPIKey)
		bootstrapCancel()
		if err != nil {
			_ = resourceCloser{closers: closers}.Close()
			return nil, nil, fmt.Errorf("bootstrap api key: %w", err)
		}
	}

	handler := httpapi.NewHandler(httpapi.Services{
		Employees:  employeeService,
		Locations:  locationService,
		Types:      typeService,
		Licenses:   licenseService,
		Persons:    personService,
		Documents:  documentService,
		Compliance: complianceService,
		Auth:       authService,
		Audit:      auditService,
		Schemas:    usecase.NewSchemaRegistry(),

		RotationGrace: cfg.RotationGrace,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: closers}, nil
}

// bootstrapAdminKey registers the operator-supplied token as an admin key.
// The token must follow the issued-token scheme so its prefix can be
// stored for lookup. Re-running with the same token is a no-op.
func bootstrapAdminKey(ctx context.Context, keys ports.APIKeyRepository, token string) error {
	prefix := domain.TokenPrefix(token)
	if prefix == "" {
		return fmt.Errorf("bootstrap token must look like %s_<env>_<secret>", domain.TokenScheme)
	}

	if _, err := keys.FindByPrefix(ctx, prefix); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap token: %w", err)
	}

	_, err = keys.Create(ctx, domain.APIKey{
		ID:          uuid.NewString(),
		Name:        "bootstrap",
		KeyPrefix:   prefix,
		TokenHash:   string(hash),
		Permissions: []string{domain.PermissionAdmin},
		Owner:       "operator",
		Active:      true,
		HourlyLimit: domain.DefaultKeyLimit,
		CreatedAt:   time.Now().UTC(),
	}, domain.MutationMeta{Actor: "bootstrap"})
	if err != nil {
		return err
	}
	log.WithComponent("app").Info().Str("key_prefix", prefix).Msg("bootstrap admin key registered")
	return nil
}
