package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestLoginSuccess(t *testing.T) {
	m, _, _ := newTestManager(t)
	mustSignup(t, m, "alice@example.com")

	result, err := m.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if result.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if result.Cookie == nil || result.Cookie.Value == "" {
		t.Fatal("expected refresh cookie")
	}
	if result.User == nil || result.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if got := counterValue(m, MetricLoginSuccess); got != 1 {
		t.Fatalf("expected 1 login success, got %d", got)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	m, _, _ := newTestManager(t)
	mustSignup(t, m, "alice@example.com")

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "correct-horse"},
		{"wrong password", "alice@example.com", "wrong-horse"},
		{"empty password", "alice@example.com", ""},
		{"empty email", "", "correct-horse"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if err.Error() != ErrInvalidCredentials.Error() {
				t.Fatalf("error message leaks detail: %q", err.Error())
			}
		})
	}

	if got := counterValue(m, MetricLoginFailure); got != 4 {
		t.Fatalf("expected 4 login failures, got %d", got)
	}
}

func TestLoginBackendFailureNotMasked(t *testing.T) {
	m, provider, _ := newTestManager(t)
	mustSignup(t, m, "alice@example.com")

	provider.mu.Lock()
	provider.failLookups = true
	provider.mu.Unlock()

	_, err := m.Login(context.Background(), "alice@example.com", "correct-horse")
	if err == nil {
		t.Fatal("expected backend error")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("backend failure must not be reported as invalid credentials")
	}
}

func TestLoginCreatesIndependentFamilies(t *testing.T) {
	m, _, _ := newTestManager(t)
	mustSignup(t, m, "alice@example.com")

	first := mustLogin(t, m, "alice@example.com")
	second := mustLogin(t, m, "alice@example.com")

	if first.FamilyID == second.FamilyID {
		t.Fatal("expected distinct session families per login")
	}

	// Logging out one session must not touch the other.
	if _, err := m.Logout(context.Background(), first.Cookie.Value); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := m.Refresh(context.Background(), second.Cookie.Value); err != nil {
		t.Fatalf("second session refresh failed: %v", err)
	}
	if _, err := m.Refresh(context.Background(), first.Cookie.Value); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked for first session, got %v", err)
	}
}
