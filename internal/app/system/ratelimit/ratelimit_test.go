package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLimiter_Allow(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("a") {
		t.Error("third request should be limited")
	}
	if !l.Allow("b") {
		t.Error("other keys should be independent")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining(a): got %d, want 0", got)
	}

	l.Reset("a")
	if got := l.Remaining("a"); got != 2 {
		t.Errorf("Remaining after Reset: got %d, want 2", got)
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second request should be limited")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("request after window should be allowed")
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	l := New(1, time.Second)
	l.Stop()
	l.Stop()
}

func TestMiddleware(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("POST", "/api/send-otp", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After: got %q, want %q", rec.Header().Get("Retry-After"), "60")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		xff     string
		xri     string
		remote  string
		want    string
	}{
		{"forwarded first hop", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", "", "", "192.0.2.1:4321", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer ll.Stop()

	r := httptest.NewRequest("POST", "/api/login", nil)
	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "Admin@Example.com"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if ok, msg := ll.Check(r, " admin@example.com "); ok || msg == "" {
		t.Error("third attempt for the same email should be limited with a message")
	}

	ll.ResetEmail("ADMIN@example.com")
	if ok, _ := ll.Check(r, "admin@example.com"); !ok {
		t.Error("attempt after ResetEmail should be allowed")
	}
}
