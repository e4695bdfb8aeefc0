package domain

import (
	"strings"
	"time"
)

// TokenScheme is the leading component of every issued token. Full tokens
// look like "wfn_live_<40 hex chars>"; only a bcrypt hash of the full token
// is stored, alongside a short prefix used for lookup.
const (
	TokenScheme     = "wfn"
	TokenPrefixLen  = 8
	DefaultKeyLimit = 1000
)

const PermissionAdmin = "admin"

// KnownPermissions is the closed set a key may carry. "admin" implies all.
var KnownPermissions = []string{
	PermissionAdmin,
	"employees:read", "employees:write",
	"locations:read", "locations:write",
	"licenses:read", "licenses:write",
	"documents:read", "documents:write",
	"compliance:read",
	"audit:read",
}

type APIKey struct {
	ID          string
	Name        string
	KeyPrefix   string
	TokenHash   string
	Permissions []string
	Owner       string
	Active      bool
	HourlyLimit int
	ExpiresAt   *time.Time
	RevokedAt   *time.Time
	RotatedFrom *string
	LastUsedAt  *time.Time
	UsageCount  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (k APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}

func (k APIKey) IsRevoked() bool {
	return k.RevokedAt != nil || !k.Active
}

// HasPermission reports whether the key grants perm. Admin keys grant
// everything.
func (k APIKey) HasPermission(perm string) bool {
	for _, p := range k.Permissions {
		if p == PermissionAdmin || p == perm {
			return true
		}
	}
	return false
}

func ValidPermission(perm string) bool {
	for _, p := range KnownPermissions {
		if p == perm {
			return true
		}
	}
	return false
}

// TokenPrefix extracts the stored lookup prefix from a full token:
// scheme, environment, and the first TokenPrefixLen secret characters.
// Returns "" for tokens that do not match the scheme.
func TokenPrefix(token string) string {
	parts := strings.SplitN(token, "_", 3)
	if len(parts) != 3 || parts[0] != TokenScheme {
		return ""
	}
	secret := parts[2]
	if len(secret) < TokenPrefixLen {
		return ""
	}
	return parts[0] + "_" + parts[1] + "_" + secret[:TokenPrefixLen]
}

// KeyRotation links an old key to its replacement. The old key stays
// valid until GraceEndsAt; the rotation sweep then revokes it and marks
// the rotation completed.
type KeyRotation struct {
	ID          uint
	OldKeyID    string
	NewKeyID    string
	GraceEndsAt time.Time
	Completed   bool
	CreatedAt   time.Time
}
