package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
	"github.com/nmadhukar/workforcenexus/internal/log"
	"github.com/nmadhukar/workforcenexus/internal/metrics"
)

type SchedulerConfig struct {
	LicenseWindowDays int           // expiring-license scan horizon
	KeyWindowDays     int           // expiring-key scan horizon
	KeyMaxAge         time.Duration // auto-rotate keys older than this; 0 disables
	RotationGrace     time.Duration
	JobTimeout        time.Duration
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.LicenseWindowDays <= 0 {
		c.LicenseWindowDays = 30
	}
	if c.KeyWindowDays <= 0 {
		c.KeyWindowDays = 14
	}
	if c.RotationGrace <= 0 {
		c.RotationGrace = DefaultGraceWindow
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 2 * time.Minute
	}
	return c
}

// Scheduler runs the fixed-cron compliance jobs: the hourly rate-limit
// flush, the daily expiring-license and expiring-key scans, and the
// nightly key rotation plus grace sweep. Scan results are queued through
// the outbox, so delivery inherits the dispatcher's retry policy.
type Scheduler struct {
	cfg      SchedulerConfig
	cron     *cron.Cron
	limiter  *HourlyLimiter
	licenses *LicenseService
	auth     *AuthService
	outbox   ports.OutboxRepository
}

func NewScheduler(cfg SchedulerConfig, limiter *HourlyLimiter, licenses *LicenseService, auth *AuthService, outbox ports.OutboxRepository) *Scheduler {
	return &Scheduler{
		cfg:      cfg.withDefaults(),
		cron:     cron.New(),
		limiter:  limiter,
		licenses: licenses,
		auth:     auth,
		outbox:   outbox,
	}
}

func (s *Scheduler) Start() error {
	logger := log.WithComponent("scheduler")

	jobs := []struct {
		spec string
		name string
		run  func(ctx context.Context) error
	}{
		{"0 * * * *", "rate-limit-flush", s.flushRateLimits},
		{"0 8 * * *", "license-expiry-scan", s.scanExpiringLicenses},
		{"0 9 * * *", "key-expiry-scan", s.scanExpiringKeys},
		{"30 2 * * *", "key-rotation", s.rotateAndSweepKeys},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
			defer cancel()
			if err := job.run(ctx); err != nil {
				logger.Error().Err(err).Str("job", job.name).Msg("scheduled job failed")
				return
			}
			logger.Debug().Str("job", job.name).Msg("scheduled job finished")
		})
		if err != nil {
			return fmt.Errorf("register job %s: %w", job.name, err)
		}
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Close() error {
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) flushRateLimits(context.Context) error {
	s.limiter.Flush(time.Now().UTC())
	return nil
}

func (s *Scheduler) scanExpiringLicenses(ctx context.Context) error {
	now := time.Now().UTC()
	expiring, err := s.licenses.Expiring(ctx, s.cfg.LicenseWindowDays, now)
	if err != nil {
		return fmt.Errorf("scan expiring licenses: %w", err)
	}
	metrics.ExpiringLicensesGauge.Set(float64(len(expiring)))

	for _, lic := range expiring {
		days, _ := lic.DaysUntilExpiry(now)
		envelope := domain.EventEnvelope{
			EventID:    uuid.NewString(),
			EventType:  "license.expiring",
			Entity:     "clinic_license",
			EntityID:   fmt.Sprintf("%d", lic.ID),
			Actor:      "scheduler",
			OccurredAt: now,
			Payload: mustJSON(map[string]any{
				"license_id":     lic.ID,
				"license_number": lic.LicenseNumber,
				"location_id":    lic.LocationID,
				"expires_at":     lic.ExpiresAt,
				"days_left":      days,
			}),
		}
		if err := s.outbox.Enqueue(ctx, "compliance.license.expiring", envelope); err != nil {
			return fmt.Errorf("enqueue license alert: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) scanExpiringKeys(ctx context.Context) error {
	now := time.Now().UTC()
	keys, err := s.auth.ExpiringKeys(ctx, now.AddDate(0, 0, s.cfg.KeyWindowDays))
	if err != nil {
		return fmt.Errorf("scan expiring keys: %w", err)
	}

	for _, key := range keys {
		envelope := domain.EventEnvelope{
			EventID:    uuid.NewString(),
			EventType:  "key.expiring",
			Entity:     "api_key",
			EntityID:   key.ID,
			Actor:      "scheduler",
			OccurredAt: now,
			Payload: mustJSON(map[string]any{
				"key_id":     key.ID,
				"name":       key.Name,
				"owner":      key.Owner,
				"expires_at": key.ExpiresAt,
			}),
		}
		if err := s.outbox.Enqueue(ctx, "keys.key.expiring", envelope); err != nil {
			return fmt.Errorf("enqueue key alert: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) rotateAndSweepKeys(ctx context.Context) error {
	now := time.Now().UTC()
	if _, err := s.auth.RotateStale(ctx, s.cfg.KeyMaxAge, s.cfg.RotationGrace, now); err != nil {
		return fmt.Errorf("auto-rotate: %w", err)
	}
	if _, err := s.auth.SweepRotations(ctx, now); err != nil {
		return fmt.Errorf("rotation sweep: %w", err)
	}
	return nil
}
