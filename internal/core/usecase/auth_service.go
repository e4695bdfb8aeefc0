package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nmadhukar/workforcenexus/internal/core/domain"
	"github.com/nmadhukar/workforcenexus/internal/core/ports"
)

const (
	tokenSecretBytes    = 20
	DefaultGraceWindow  = 24 * time.Hour
	DefaultKeyExpiry    = 0 // minted keys do not expire unless asked to
	bcryptTokenCost     = bcrypt.DefaultCost
	rotationTopicPrefix = "keys."
)

// AuthService mints, verifies, revokes, and rotates API keys. Verification
// looks a key up by its short token prefix, compares the full token against
// the stored bcrypt hash, then applies revocation, expiry, and the hourly
// rate limit.
type AuthService struct {
	keys    ports.APIKeyRepository
	outbox  ports.OutboxRepository
	limiter *HourlyLimiter
	env     string
}

func NewAuthService(keys ports.APIKeyRepository, outbox ports.OutboxRepository, limiter *HourlyLimiter, env string) *AuthService {
	if env == "" {
		env = "live"
	}
	return &AuthService{keys: keys, outbox: outbox, limiter: limiter, env: env}
}

type MintKeyInput struct {
	Name        string
	Owner       string
	Permissions []string
	HourlyLimit int
	ExpiresAt   *time.Time
	RotatedFrom *string
}

// Mint creates a key and returns the full token. The token is not
// recoverable afterwards; only its bcrypt hash is stored.
func (s *AuthService) Mint(ctx context.Context, in MintKeyInput, meta domain.MutationMeta) (domain.APIKey, string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.APIKey{}, "", domain.NewValidationError("name", "required")
	}
	if len(in.Permissions) == 0 {
		return domain.APIKey{}, "", domain.NewValidationError("permissions", "at least one permission required")
	}
	for _, perm := range in.Permissions {
		if !domain.ValidPermission(perm) {
			return domain.APIKey{}, "", domain.NewValidationError("permissions", fmt.Sprintf("unknown permission %q", perm))
		}
	}
	if in.HourlyLimit <= 0 {
		in.HourlyLimit = domain.DefaultKeyLimit
	}

	token, err := s.newToken()
	if err != nil {
		return domain.APIKey{}, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcryptTokenCost)
	if err != nil {
		return domain.APIKey{}, "", fmt.Errorf("hash token: %w", err)
	}

	key := domain.APIKey{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		KeyPrefix:   domain.TokenPrefix(token),
		TokenHash:   string(hash),
		Permissions: in.Permissions,
		Owner:       in.Owner,
		Active:      true,
		HourlyLimit: in.HourlyLimit,
		ExpiresAt:   in.ExpiresAt,
		RotatedFrom: in.RotatedFrom,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.keys.Create(ctx, key, meta)
	if err != nil {
		return domain.APIKey{}, "", err
	}
	return created, token, nil
}

// Authenticate resolves token to an API key or fails with
// domain.ErrUnauthorized / domain.ErrRateLimited. A revoked or expired key
// is rejected before the hash is ever compared.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.APIKey, error) {
	token = strings.TrimSpace(token)
	prefix := domain.TokenPrefix(token)
	if prefix == "" {
		return domain.APIKey{}, domain.ErrUnauthorized
	}

	key, err := s.keys.FindByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.APIKey{}, domain.ErrUnauthorized
		}
		return domain.APIKey{}, err
	}

	now := time.Now().UTC()
	if key.IsRevoked() || key.IsExpired(now) {
		return domain.APIKey{}, domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(key.TokenHash), []byte(token)); err != nil {
		return domain.APIKey{}, domain.ErrUnauthorized
	}

	if !s.limiter.Allow(key.ID, key.HourlyLimit, now) {
		return domain.APIKey{}, domain.ErrRateLimited
	}

	// Last-used bookkeeping is best effort; auth has already succeeded.
	_ = s.keys.TouchUsage(ctx, key.ID, now)

	return key, nil
}

func (s *AuthService) Get(ctx context.Context, id string) (domain.APIKey, error) {
	return s.keys.Get(ctx, id)
}

func (s *AuthService) List(ctx context.Context) ([]domain.APIKey, error) {
	return s.keys.ListAll(ctx)
}

// Revoke invalidates a key immediately.
func (s *AuthService) Revoke(ctx context.Context, id string, meta domain.MutationMeta) error {
	if _, err := s.keys.Get(ctx, id); err != nil {
		return err
	}
	return s.keys.Revoke(ctx, id, time.Now().UTC(), meta)
}

// Rotate mints a replacement key carrying the old key's permissions, owner,
// and limit, records the rotation lineage, and leaves the old key valid
// until the grace window ends. The sweep job performs the final revocation.
func (s *AuthService) Rotate(ctx context.Context, id string, grace time.Duration, meta domain.MutationMeta) (domain.APIKey, string, error) {
	if grace <= 0 {
		grace = DefaultGraceWindow
	}

	old, err := s.keys.Get(ctx, id)
	if err != nil {
		return domain.APIKey{}, "", err
	}
	if old.IsRevoked() {
		return domain.APIKey{}, "", fmt.Errorf("%w: key already revoked", domain.ErrConflict)
	}

	newKey, token, err := s.Mint(ctx, MintKeyInput{
		Name:        old.Name,
		Owner:       old.Owner,
		Permissions: old.Permissions,
		HourlyLimit: old.HourlyLimit,
		ExpiresAt:   old.ExpiresAt,
		RotatedFrom: &old.ID,
	}, meta)
	if err != nil {
		return domain.APIKey{}, "", err
	}

	now := time.Now().UTC()
	rot := domain.KeyRotation{
		OldKeyID:    old.ID,
		NewKeyID:    newKey.ID,
		GraceEndsAt: now.Add(grace),
		CreatedAt:   now,
	}
	if _, err := s.keys.CreateRotation(ctx, rot); err != nil {
		return domain.APIKey{}, "", err
	}

	s.enqueue(ctx, "key.rotated", old.ID, map[string]any{
		"old_key_id":    old.ID,
		"new_key_id":    newKey.ID,
		"grace_ends_at": rot.GraceEndsAt,
	}, meta)

	return newKey, token, nil
}

func (s *AuthService) Rotations(ctx context.Context, keyID string) ([]domain.KeyRotation, error) {
	if _, err := s.keys.Get(ctx, keyID); err != nil {
		return nil, err
	}
	return s.keys.ListRotations(ctx, keyID)
}

// SweepRotations revokes keys whose rotation grace window has passed.
// Returns the number of keys revoked.
func (s *AuthService) SweepRotations(ctx context.Context, now time.Time) (int, error) {
	due, err := s.keys.ListDueRotations(ctx, now)
	if err != nil {
		return 0, err
	}

	meta := domain.MutationMeta{Actor: "scheduler"}.Normalize()
	revoked := 0
	for _, rot := range due {
		if err := s.keys.Revoke(ctx, rot.OldKeyID, now, meta); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return revoked, fmt.Errorf("revoke rotated key %s: %w", rot.OldKeyID, err)
		}
		if err := s.keys.CompleteRotation(ctx, rot.ID); err != nil {
			return revoked, fmt.Errorf("complete rotation %d: %w", rot.ID, err)
		}
		revoked++
		s.enqueue(ctx, "key.revoked", rot.OldKeyID, map[string]any{
			"key_id":     rot.OldKeyID,
			"new_key_id": rot.NewKeyID,
			"reason":     "rotation grace window elapsed",
		}, meta)
	}
	return revoked, nil
}

// RotateStale rotates active keys older than maxAge. Used by the nightly
// auto-rotation job.
func (s *AuthService) RotateStale(ctx context.Context, maxAge, grace time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	stale, err := s.keys.ListActiveOlderThan(ctx, now.Add(-maxAge))
	if err != nil {
		return 0, err
	}

	meta := domain.MutationMeta{Actor: "scheduler"}.Normalize()
	rotated := 0
	for _, key := range stale {
		if _, _, err := s.Rotate(ctx, key.ID, grace, meta); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return rotated, fmt.Errorf("auto-rotate key %s: %w", key.ID, err)
		}
		rotated++
	}
	return rotated, nil
}

// ExpiringKeys lists active keys expiring before the cutoff.
func (s *AuthService) ExpiringKeys(ctx context.Context, cutoff time.Time) ([]domain.APIKey, error) {
	return s.keys.ListExpiringBefore(ctx, cutoff)
}

// RateRemaining reports requests left this hour for the key.
func (s *AuthService) RateRemaining(key domain.APIKey) int {
	return s.limiter.Remaining(key.ID, key.HourlyLimit, time.Now().UTC())
}

func (s *AuthService) newToken() (string, error) {
	buf := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return domain.TokenScheme + "_" + s.env + "_" + hex.EncodeToString(buf), nil
}

func (s *AuthService) enqueue(ctx context.Context, eventType, entityID string, payload map[string]any, meta domain.MutationMeta) {
	if s.outbox == nil {
		return
	}
	envelope := domain.EventEnvelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		Entity:     "api_key",
		EntityID:   entityID,
		Actor:      meta.Actor,
		OccurredAt: time.Now().UTC(),
		Payload:    mustJSON(payload),
	}
	_ = s.outbox.Enqueue(ctx, rotationTopicPrefix+eventType, envelope)
}
