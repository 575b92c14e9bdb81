package auth

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// OriginGuard refuses browser requests that carry the session cookie from a
// site the dashboard does not trust. The request's own host is always
// trusted; a "*" entry in the list is ignored.
type OriginGuard struct {
	trusted map[string]struct{}
	log     *zap.Logger
}

// NewOriginGuard builds a guard trusting the given origins
// ("https://admin.example.com").
func NewOriginGuard(origins []string, logger *zap.Logger) *OriginGuard {
	g := &OriginGuard{trusted: make(map[string]struct{}, len(origins)), log: logger}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == "" || o == "*" {
			continue
		}
		g.trusted[o] = struct{}{}
	}
	return g
}

// Trusted reports whether r may act on the session. Requests without Origin
// or Referer come from non-browser clients and pass. Unsafe methods fall
// back to Referer when Origin is absent.
func (g *OriginGuard) Trusted(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" && !safeMethod(r.Method) {
		if ref := r.Header.Get("Referer"); ref != "" {
			u, err := url.Parse(ref)
			if err != nil || u.Host == "" {
				return false
			}
			origin = u.Scheme + "://" + u.Host
		}
	}
	if origin == "" {
		return true
	}
	if origin == "null" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	_, ok := g.trusted[strings.ToLower(u.Scheme+"://"+u.Host)]
	return ok
}

// Middleware answers 403 JSON for untrusted origins.
func (g *OriginGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Trusted(r) {
			g.log.Warn("cross-site request refused",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("origin", r.Header.Get("Origin")),
				zap.String("referer", r.Header.Get("Referer")))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden origin"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
