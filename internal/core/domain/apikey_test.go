package domain

import (
	"testing"
	"time"
)

func TestTokenPrefix(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"wfn_live_0123456789abcdef0123456789abcdef01234567", "wfn_live_01234567"},
		{"wfn_test_abcdef0123456789", "wfn_test_abcdef01"},
		{"wfn_live_short", ""},
		{"bad_live_0123456789abcdef", ""},
		{"wfn_live", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := TokenPrefix(tc.token); got != tc.want {
			t.Errorf("TokenPrefix(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestAPIKeyHasPermission(t *testing.T) {
	key := APIKey{Permissions: []string{"employees:read", "licenses:write"}}
	if !key.HasPermission("employees:read") {
		t.Fatal("expected employees:read to be granted")
	}
	if key.HasPermission("employees:write") {
		t.Fatal("expected employees:write to be denied")
	}

	admin := APIKey{Permissions: []string{PermissionAdmin}}
	if !admin.HasPermission("audit:read") {
		t.Fatal("expected admin to grant everything")
	}
}

func TestAPIKeyExpiryAndRevocation(t *testing.T) {
	now := time.Now().UTC()

	past := now.Add(-time.Hour)
	expired := APIKey{Active: true, ExpiresAt: &past}
	if !expired.IsExpired(now) {
		t.Fatal("expected key to be expired")
	}

	future := now.Add(time.Hour)
	live := APIKey{Active: true, ExpiresAt: &future}
	if live.IsExpired(now) {
		t.Fatal("expected key to be live")
	}
	if live.IsRevoked() {
		t.Fatal("expected key to not be revoked")
	}

	revoked := APIKey{Active: true, RevokedAt: &past}
	if !revoked.IsRevoked() {
		t.Fatal("expected revoked key to report revoked")
	}
	inactive := APIKey{Active: false}
	if !inactive.IsRevoked() {
		t.Fatal("expected inactive key to report revoked")
	}
}

func TestClinicLicenseDaysUntilExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	in10 := now.AddDate(0, 0, 10)
	lic := ClinicLicense{ExpiresAt: &in10}
	days, ok := lic.DaysUntilExpiry(now)
	if !ok || days != 10 {
		t.Fatalf("expected 10 days, got %d ok=%v", days, ok)
	}

	if _, ok := (ClinicLicense{}).DaysUntilExpiry(now); ok {
		t.Fatal("expected no expiry to report ok=false")
	}

	past := now.AddDate(0, 0, -5)
	overdue := ClinicLicense{ExpiresAt: &past}
	days, ok = overdue.DaysUntilExpiry(now)
	if !ok || days != -5 {
		t.Fatalf("expected -5 days, got %d ok=%v", days, ok)
	}
}
