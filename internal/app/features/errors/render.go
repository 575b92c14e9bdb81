// internal/app/features/errors/render.go
package errors

import "net/http"

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed is the router's fallback for known paths with the wrong
// method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "method not allowed")
}

// Unauthorized responds 401.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusUnauthorized, "sign in required")
}
