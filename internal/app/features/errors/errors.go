// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrUnsupportedMediaType is returned by Decode for bodies that are not
// application/json.
var ErrUnsupportedMediaType = stderrors.New("content type must be application/json")

// Body is the shape of every error response.
type Body struct {
	Error  string                `json:"error"`
	Kind   string                `json:"kind,omitempty"`
	Fields []inputval.FieldError `json:"fields,omitempty"`
}

// ErrorLogger writes JSON error responses and logs the cause.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
}

// LogServerError logs err at error level and responds 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg, e.fields(r, err)...)
	Error(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs err at debug level and responds 400 with userMsg, or
// 415 when err is ErrUnsupportedMediaType.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Debug(msg, e.fields(r, err)...)
	if stderrors.Is(err, ErrUnsupportedMediaType) {
		Error(w, http.StatusUnsupportedMediaType, ErrUnsupportedMediaType.Error())
		return
	}
	Error(w, http.StatusBadRequest, userMsg)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Body{Error: msg})
}

// Invalid writes a 400 carrying every failed field.
func Invalid(w http.ResponseWriter, res *inputval.Result) {
	JSON(w, http.StatusBadRequest, Body{Error: res.First(), Fields: res.Errors})
}

// Decode reads a JSON body into v. Unknown fields are ignored. Bodies sent
// with any other Content-Type yield ErrUnsupportedMediaType.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return ErrUnsupportedMediaType
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
