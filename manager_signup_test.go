package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestSignupSuccess(t *testing.T) {
	m, provider, _ := newTestManager(t)

	result, err := m.Signup(context.Background(), SignupRequest{
		Email:       "Alice@Example.com",
		Password:    "correct-horse",
		Name:        "Alice",
		PhoneNumber: "555-0100",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if !result.Success {
		t.Fatal("expected success result")
	}
	if result.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if result.User == nil || result.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user projection: %+v", result.User)
	}
	if result.User.Role != "user" {
		t.Fatalf("expected default role, got %q", result.User.Role)
	}
	if result.Cookie == nil || result.Cookie.Value == "" {
		t.Fatal("expected refresh cookie directive")
	}
	if !result.Cookie.HttpOnly {
		t.Fatal("refresh cookie must be HttpOnly")
	}
	if result.FamilyID == "" {
		t.Fatal("expected family ID")
	}

	// Signup must never store plaintext.
	stored, err := provider.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("lookup after signup failed: %v", err)
	}
	if stored.PasswordHash == "correct-horse" || stored.PasswordHash == "" {
		t.Fatalf("password stored incorrectly: %q", stored.PasswordHash)
	}

	if got := counterValue(m, MetricSignupSuccess); got != 1 {
		t.Fatalf("expected 1 signup success, got %d", got)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	m, _, _ := newTestManager(t)

	mustSignup(t, m, "alice@example.com")

	_, err := m.Signup(context.Background(), SignupRequest{
		Email:    "alice@example.com",
		Password: "another-horse",
		Name:     "Impostor",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	if got := counterValue(m, MetricSignupDuplicate); got != 1 {
		t.Fatalf("expected 1 duplicate, got %d", got)
	}
}

func TestSignupValidation(t *testing.T) {
	m, _, _ := newTestManager(t)

	cases := []struct {
		name string
		req  SignupRequest
	}{
		{"empty email", SignupRequest{Password: "correct-horse", Name: "A"}},
		{"email without at", SignupRequest{Email: "not-an-email", Password: "correct-horse", Name: "A"}},
		{"short password", SignupRequest{Email: "a@b.com", Password: "short", Name: "A"}},
		{"empty name", SignupRequest{Email: "a@b.com", Password: "correct-horse"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Signup(context.Background(), tc.req)
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
		})
	}
}

func TestSignupPassesProfileFieldsToProvider(t *testing.T) {
	m, provider, _ := newTestManager(t)

	_, err := m.Signup(context.Background(), SignupRequest{
		Email:          "alice@example.com",
		Password:       "correct-horse",
		Name:           "Alice",
		PhoneNumber:    " 010-1234-5678 ",
		ManagementCode: " MC-1042 ",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if got := provider.lastCreate.PhoneNumber; got != "010-1234-5678" {
		t.Fatalf("phone number not passed through, got %q", got)
	}
	if got := provider.lastCreate.ManagementCode; got != "MC-1042" {
		t.Fatalf("management code not passed through, got %q", got)
	}
}

func TestSignupSessionUsableImmediately(t *testing.T) {
	m, _, _ := newTestManager(t)

	result := mustSignup(t, m, "alice@example.com")

	// The signup cookie must be a working refresh token.
	refreshed, err := m.Refresh(context.Background(), result.Cookie.Value)
	if err != nil {
		t.Fatalf("refresh of signup token failed: %v", err)
	}
	if refreshed.FamilyID != result.FamilyID {
		t.Fatalf("refresh switched family: %s vs %s", refreshed.FamilyID, result.FamilyID)
	}

	// And the access token must validate.
	principal, err := m.CurrentUser(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if principal.UserID != result.User.ID {
		t.Fatalf("principal mismatch: %s vs %s", principal.UserID, result.User.ID)
	}
}
