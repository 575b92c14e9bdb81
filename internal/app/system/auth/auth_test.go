package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mtt/mttdash/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/data", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_BrowserStillGets401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Errorf("expected JSON error body, got %q", rec.Body.String())
	}
}

func TestRequireSignedIn_WithUser_PassesThrough(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withTestUser(httptest.NewRequest("GET", "/api/profile", nil)))

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

func TestCurrentUser_WithUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = withTestUser(req)

	user, ok := auth.CurrentUser(req)

	if !ok {
		t.Error("expected ok to be true when user in context")
	}
	if user == nil {
		t.Fatal("expected user to not be nil")
	}
	if user.Email != "test@example.com" {
		t.Errorf("expected email 'test@example.com', got %q", user.Email)
	}
}

// withTestUser injects a SessionUser into the request context for testing.
// This simulates what LoadSessionUser middleware does.
func withTestUser(r *http.Request) *http.Request {
	user := &auth.SessionUser{
		ID:    "507f1f77bcf86cd799439011", // Valid ObjectID hex
		Name:  "Test User",
		Email: "test@example.com",
	}
	return auth.WithTestUser(r, user)
}

type stubFetcher struct {
	users map[string]*auth.SessionUser
}

func (f stubFetcher) FetchUser(_ context.Context, id string) *auth.SessionUser {
	return f.users[id]
}

// roundTrip logs u in, then replays the cookie through LoadSessionUser.
func roundTrip(t *testing.T, sm *auth.SessionManager, u *auth.SessionUser) (*auth.SessionUser, bool) {
	t.Helper()

	loginRec := httptest.NewRecorder()
	if err := sm.Login(loginRec, httptest.NewRequest("POST", "/api/login", nil), u); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	cookies := loginRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	var got *auth.SessionUser
	var ok bool
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/api/profile", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got, ok
}

func TestLoginThenLoadSessionUser(t *testing.T) {
	sm := newTestSessionManager(t)
	admin := &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Admin", Email: "admin@example.com"}
	sm.SetUserFetcher(stubFetcher{users: map[string]*auth.SessionUser{admin.ID: admin}})

	got, ok := roundTrip(t, sm, admin)
	if !ok {
		t.Fatal("expected user in context after login")
	}
	if got.Email != admin.Email {
		t.Errorf("Email: got %q, want %q", got.Email, admin.Email)
	}
}

func TestLoadSessionUser_FetcherRejectsDisabledUser(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(stubFetcher{users: map[string]*auth.SessionUser{}})

	_, ok := roundTrip(t, sm, &auth.SessionUser{ID: "507f1f77bcf86cd799439011"})
	if ok {
		t.Error("expected no user when the fetcher returns nil")
	}
}

func TestLoadSessionUser_GarbageCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("expected no user for an undecodable cookie")
		}
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-cookie"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("expected next handler to run")
	}
}

func TestLogout_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	if err := sm.Logout(rec, httptest.NewRequest("POST", "/api/logout", nil)); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected an expiring cookie")
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("MaxAge: got %d, want < 0", cookies[0].MaxAge)
	}
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}
