package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestLogoutRevokesSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	login := mustSignup(t, m, "alice@example.com")

	clear, err := m.Logout(context.Background(), login.Cookie.Value)
	if err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if clear.MaxAge != -1 {
		t.Fatalf("expected clearing directive, got MaxAge %d", clear.MaxAge)
	}
	if clear.Value != "" {
		t.Fatal("clearing directive must carry no token")
	}

	if _, err := m.Refresh(context.Background(), login.Cookie.Value); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after logout, got %v", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	m, _, _ := newTestManager(t)
	login := mustSignup(t, m, "alice@example.com")

	for i := 0; i < 3; i++ {
		if _, err := m.Logout(context.Background(), login.Cookie.Value); err != nil {
			t.Fatalf("logout %d failed: %v", i, err)
		}
	}
}

func TestLogoutWithGarbageTokenSucceeds(t *testing.T) {
	m, _, _ := newTestManager(t)

	for _, token := range []string{"", "not-a-jwt"} {
		clear, err := m.Logout(context.Background(), token)
		if err != nil {
			t.Fatalf("logout with %q failed: %v", token, err)
		}
		if clear.MaxAge != -1 {
			t.Fatal("expected clearing directive")
		}
	}
}

func TestLogoutAllRevokesEveryFamily(t *testing.T) {
	m, _, _ := newTestManager(t)
	signup := mustSignup(t, m, "alice@example.com")
	login := mustLogin(t, m, "alice@example.com")

	if err := m.LogoutAll(context.Background(), signup.User.ID); err != nil {
		t.Fatalf("LogoutAll failed: %v", err)
	}

	for _, token := range []string{signup.Cookie.Value, login.Cookie.Value} {
		if _, err := m.Refresh(context.Background(), token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	}

	sessions, err := m.ActiveSessions(context.Background(), signup.User.ID)
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no active sessions, got %d", len(sessions))
	}
}

func TestLogoutOnNilManager(t *testing.T) {
	var m *Manager

	clear, err := m.Logout(context.Background(), "some-token")
	if !errors.Is(err, ErrManagerNotReady) {
		t.Fatalf("expected ErrManagerNotReady, got %v", err)
	}
	if clear != (CookieDirective{}) {
		t.Fatalf("expected zero directive, got %+v", clear)
	}
}

func TestLogoutFamilyUnknownIsNoError(t *testing.T) {
	m, _, _ := newTestManager(t)

	if err := m.LogoutFamily(context.Background(), "no-such-family"); err != nil {
		t.Fatalf("LogoutFamily failed: %v", err)
	}
	if err := m.LogoutFamily(context.Background(), ""); err != nil {
		t.Fatalf("LogoutFamily with empty ID failed: %v", err)
	}
}
