package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mtt/mttdash/internal/app/features/health"
	"github.com/mtt/mttdash/internal/app/system/capacity"
	"github.com/mtt/mttdash/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type healthBody struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	Transactions string `json:"transactions"`
	Storage      string `json:"storage"`
	Message      string `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) healthBody {
	t.Helper()
	var b healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return b
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guard := capacity.NewGuard(db, zap.NewNop(), nil)
	handler := health.NewHandler(db.Client(), guard, "local", zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: got %q", ct)
	}

	resp := decode(t, rec)
	if resp.Status != "ok" {
		t.Errorf("status: got %q, want %q", resp.Status, "ok")
	}
	if resp.Database != "connected" {
		t.Errorf("database: got %q, want %q", resp.Database, "connected")
	}
	if resp.Transactions != "enabled" {
		t.Errorf("transactions: got %q, want %q", resp.Transactions, "enabled")
	}
	if resp.Storage != "local" {
		t.Errorf("storage: got %q, want %q", resp.Storage, "local")
	}
}

func TestServe_TransactionFallbackReported(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guard := capacity.NewGuard(db, zap.NewNop(), nil)
	guard.DisableTransactions()
	handler := health.NewHandler(db.Client(), guard, "s3", zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if got := decode(t, rec).Transactions; got != "fallback" {
		t.Errorf("transactions: got %q, want %q", got, "fallback")
	}
}

func TestServe_DatabaseDisconnected(t *testing.T) {
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := client.Disconnect(ctx); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	handler := health.NewHandler(client, nil, "", zap.NewNop())
	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	resp := decode(t, rec)
	if resp.Status != "error" || resp.Database != "disconnected" {
		t.Errorf("body: got %+v", resp)
	}
	if resp.Transactions != "" {
		t.Errorf("transactions should be omitted without a guard, got %q", resp.Transactions)
	}
}

func TestRoutes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), nil, "", zap.NewNop())
	router := health.Routes(handler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /: got %d, want %d", rec.Code, http.StatusOK)
	}
}
