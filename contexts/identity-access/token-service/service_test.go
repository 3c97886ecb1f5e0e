package tokens

import (
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, clock Clock) *Service {
	t.Helper()
	service, err := NewService(Config{
		Secret:     []byte("test-signing-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, clock)
	if err != nil {
		t.Fatalf("new service failed: %v", err)
	}
	return service
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(Config{}, nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	service := newTestService(t, nil)

	raw, err := service.IssueAccess("acc_1", "ada@example.com", "user")
	if err != nil {
		t.Fatalf("issue access failed: %v", err)
	}

	claims, ok := service.VerifyAccess(raw)
	if !ok {
		t.Fatal("expected access token to verify")
	}
	if claims.Subject != "acc_1" || claims.Email != "ada@example.com" || claims.Role != "user" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Kind != KindAccess {
		t.Fatalf("unexpected kind %s", claims.Kind)
	}
}

func TestKindIsolation(t *testing.T) {
	service := newTestService(t, nil)

	access, err := service.IssueAccess("acc_1", "ada@example.com", "user")
	if err != nil {
		t.Fatalf("issue access failed: %v", err)
	}
	refresh, err := service.IssueRefresh("acc_1")
	if err != nil {
		t.Fatalf("issue refresh failed: %v", err)
	}

	if _, ok := service.VerifyRefresh(access); ok {
		t.Fatal("access token must not verify as refresh")
	}
	if _, ok := service.VerifyAccess(refresh); ok {
		t.Fatal("refresh token must not verify as access")
	}
	if claims, ok := service.VerifyRefresh(refresh); !ok || claims.Subject != "acc_1" {
		t.Fatalf("refresh verification failed: ok=%v claims=%+v", ok, claims)
	}
}

func TestExpiredTokenFailsVerification(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	service := newTestService(t, clock)

	raw, err := service.IssueAccess("acc_1", "ada@example.com", "user")
	if err != nil {
		t.Fatalf("issue access failed: %v", err)
	}

	clock.now = clock.now.Add(14 * time.Minute)
	if _, ok := service.VerifyAccess(raw); !ok {
		t.Fatal("token should verify before expiry")
	}

	clock.now = clock.now.Add(2 * time.Minute)
	if _, ok := service.VerifyAccess(raw); ok {
		t.Fatal("token should fail verification after expiry")
	}
}

func TestTamperedTokenFailsVerification(t *testing.T) {
	service := newTestService(t, nil)

	raw, err := service.IssueAccess("acc_1", "ada@example.com", "user")
	if err != nil {
		t.Fatalf("issue access failed: %v", err)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape %q", raw)
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
	if _, ok := service.VerifyAccess(tampered); ok {
		t.Fatal("tampered token must not verify")
	}
}

func TestMalformedTokenFailsVerification(t *testing.T) {
	service := newTestService(t, nil)
	for _, raw := range []string{"", "garbage", "a.b.c", "  "} {
		if _, ok := service.VerifyAccess(raw); ok {
			t.Fatalf("malformed token %q must not verify", raw)
		}
	}
}

func TestSecretIsolation(t *testing.T) {
	service := newTestService(t, nil)
	other, err := NewService(Config{Secret: []byte("different-secret")}, nil)
	if err != nil {
		t.Fatalf("new service failed: %v", err)
	}

	raw, err := other.IssueAccess("acc_1", "ada@example.com", "user")
	if err != nil {
		t.Fatalf("issue access failed: %v", err)
	}
	if _, ok := service.VerifyAccess(raw); ok {
		t.Fatal("token signed with a different secret must not verify")
	}
}
