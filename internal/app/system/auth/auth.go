package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is the signed-in administrator injected into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
}

// UserFetcher loads a fresh SessionUser for an id stored in the cookie.
// It returns nil when the user no longer exists or is disabled.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie store. There is no package-level session
// state; every handler that needs sessions is given a manager.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=None so the
// dashboard can call the API cross-site over HTTPS. In local dev over
// http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		return nil, fmt.Errorf("session name is empty")
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher makes LoadSessionUser re-read the user on every request so
// disabled accounts lose access immediately.
func (m *SessionManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// session returns the request's session. Cookies that fail to decode (for
// example after a key rotation) yield a fresh session.
func (m *SessionManager) session(r *http.Request) *sessions.Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		var se securecookie.Error
		if errors.As(err, &se) && se.IsDecode() {
			m.log.Debug("discarding undecodable session cookie", zap.Error(err))
		} else {
			m.log.Warn("session load failed", zap.Error(err))
		}
	}
	return sess
}

// Login marks the session as authenticated for u and writes the cookie.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess := m.session(r)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	return sess.Save(r, w)
}

// Logout expires the session cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := m.session(r)
	delete(sess.Values, isAuthKey)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are logged in.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.session(r)
		isAuth, _ := sess.Values[isAuthKey].(bool)
		userID, _ := sess.Values[userIDKey].(string)
		if !isAuth || userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{ID: userID}
		if m.fetcher != nil {
			u = m.fetcher.FetchUser(r.Context(), userID)
		}
		if u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a user in context (set by
// LoadSessionUser) with a 401 JSON body.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		m.log.Debug("unauthenticated request", zap.String("path", r.URL.Path))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
	})
}

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u the way LoadSessionUser would. For handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
