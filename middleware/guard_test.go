package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smartshield/authcore"
	"github.com/smartshield/authcore/password"
)

type memoryProvider struct {
	mu      sync.RWMutex
	byEmail map[string]authcore.UserRecord
	byID    map[string]authcore.UserRecord
}

func newMemoryProvider() *memoryProvider {
	return &memoryProvider{
		byEmail: make(map[string]authcore.UserRecord),
		byID:    make(map[string]authcore.UserRecord),
	}
}

func (p *memoryProvider) GetUserByEmail(_ context.Context, email string) (authcore.UserRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	user, ok := p.byEmail[strings.ToLower(email)]
	if !ok {
		return authcore.UserRecord{}, authcore.ErrUserNotFound
	}
	return user, nil
}

func (p *memoryProvider) CreateUser(_ context.Context, input authcore.CreateUserInput) (authcore.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	email := strings.ToLower(input.Email)
	if _, exists := p.byEmail[email]; exists {
		return authcore.UserRecord{}, authcore.ErrEmailExists
	}
	user := authcore.UserRecord{
		UserID:       uuid.NewString(),
		Email:        email,
		Name:         input.Name,
		Role:         input.Role,
		PasswordHash: input.PasswordHash,
	}
	p.byEmail[email] = user
	p.byID[user.UserID] = user
	return user, nil
}

func (p *memoryProvider) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.byID[userID]
	if !ok {
		return authcore.ErrUserNotFound
	}
	user.PasswordHash = newHash
	p.byID[userID] = user
	p.byEmail[user.Email] = user
	return nil
}

func newTestManager(t *testing.T) *authcore.Manager {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := authcore.DefaultConfig()
	cfg.Token.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password = password.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}

	m, err := authcore.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(newMemoryProvider()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func signupToken(t *testing.T, m *authcore.Manager) (string, string) {
	t.Helper()
	result, err := m.Signup(context.Background(), authcore.SignupRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	return result.AccessToken, result.User.ID
}

func echoPrincipal(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := authcore.PrincipalFromContext(r.Context())
		if !ok {
			t.Error("principal missing from guarded request context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(principal.UserID))
	})
}

func TestGuardAllowsValidToken(t *testing.T) {
	m := newTestManager(t)
	token, userID := signupToken(t, m)

	handler := Guard(m)(echoPrincipal(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != userID {
		t.Fatalf("expected principal user ID, got %q", rec.Body.String())
	}
}

func TestGuardRejections(t *testing.T) {
	m := newTestManager(t)

	handler := Guard(m)(echoPrincipal(t))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestGuardRejectsRefreshToken(t *testing.T) {
	m := newTestManager(t)

	result, err := m.Signup(context.Background(), authcore.SignupRequest{
		Email:    "bob@example.com",
		Password: "correct-horse",
		Name:     "Bob",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	handler := Guard(m)(echoPrincipal(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+result.Cookie.Value)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token must not pass the guard, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	m := newTestManager(t)
	token, _ := signupToken(t, m)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	allowed := RequireRole(m, "user", "admin")(okHandler)
	denied := RequireRole(m, "admin")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	allowed.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for allowed role, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	denied.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disallowed role, got %d", rec.Code)
	}
}
