package authcore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRefreshRotatesToken(t *testing.T) {
	m, _, _ := newTestManager(t)
	login := mustSignup(t, m, "alice@example.com")

	refreshed, err := m.Refresh(context.Background(), login.Cookie.Value)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if refreshed.AccessToken == "" {
		t.Fatal("expected new access token")
	}
	if refreshed.Cookie == nil || refreshed.Cookie.Value == "" {
		t.Fatal("expected rotated refresh cookie")
	}
	if refreshed.Cookie.Value == login.Cookie.Value {
		t.Fatal("refresh token did not rotate")
	}
	if refreshed.FamilyID != login.FamilyID {
		t.Fatal("rotation must stay inside the same family")
	}

	// The new token keeps working.
	if _, err := m.Refresh(context.Background(), refreshed.Cookie.Value); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
}

func TestRefreshReuseRevokesFamily(t *testing.T) {
	m, _, _ := newTestManager(t)
	login := mustSignup(t, m, "alice@example.com")
	r1 := login.Cookie.Value

	second, err := m.Refresh(context.Background(), r1)
	if err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	r2 := second.Cookie.Value

	// Replaying the superseded token is reuse.
	if _, err := m.Refresh(context.Background(), r1); !errors.Is(err, ErrTokenReuse) {
		t.Fatalf("expected ErrTokenReuse, got %v", err)
	}

	// The family is dead: even the latest token is rejected now.
	if _, err := m.Refresh(context.Background(), r2); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after reuse, got %v", err)
	}

	if got := counterValue(m, MetricRefreshReuseDetected); got != 1 {
		t.Fatalf("expected 1 reuse detection, got %d", got)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	m, _, _ := newTestManager(t)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "definitely-not-a-jwt"},
		{"wrong signature", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.bad"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Refresh(context.Background(), tc.token)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	m, _, _ := newTestManager(t)
	login := mustSignup(t, m, "alice@example.com")

	_, err := m.Refresh(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrWrongTokenKind) {
		t.Fatalf("expected ErrWrongTokenKind, got %v", err)
	}
}

func TestRefreshAfterFamilyExpiry(t *testing.T) {
	m, _, mr := newTestManager(t)
	login := mustSignup(t, m, "alice@example.com")

	// Expire the family record while the JWT itself is still valid.
	mr.FastForward(15 * 24 * time.Hour)

	_, err := m.Refresh(context.Background(), login.Cookie.Value)
	switch {
	case errors.Is(err, ErrSessionNotFound):
	case errors.Is(err, ErrTokenExpired):
	default:
		t.Fatalf("expected ErrSessionNotFound or ErrTokenExpired, got %v", err)
	}
}

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	m, _, _ := newTestManager(t)
	login := mustSignup(t, m, "alice@example.com")

	const n = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err := m.Refresh(context.Background(), login.Cookie.Value)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		// Losers observe the race at different points: before the winner's
		// CAS (conflict), after it (reuse), or after reuse already revoked
		// the family.
		if errors.Is(err, ErrConcurrentRefresh) ||
			errors.Is(err, ErrTokenReuse) ||
			errors.Is(err, ErrSessionRevoked) {
			continue
		}
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
}
