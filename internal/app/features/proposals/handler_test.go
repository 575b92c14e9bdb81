package proposals_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/features/proposals"
	proposalstore "github.com/mtt/mttdash/internal/app/store/proposals"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
	"github.com/mtt/mttdash/internal/domain/models"
	"github.com/mtt/mttdash/internal/testutil"
	"go.uber.org/zap"
)

func allow(next http.Handler) http.Handler { return next }

func newTestRouter(t *testing.T) (chi.Router, *testutil.Fixtures, *proposalstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	bucket, err := objectstore.NewLocal(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	h := proposals.NewHandler(db, objectstore.NewUploader(bucket, nil), nil, apierrors.NewErrorLogger(logger), logger)
	return proposals.Routes(h, allow), testutil.NewFixtures(t, db), proposalstore.New(db)
}

func serve(r chi.Router, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func validSubmission() map[string]string {
	return map[string]string{
		"name":        "Siti Aminah",
		"email":       "siti@example.com",
		"phoneNumber": "+62 812-3456-789",
		"fileUrl":     "https://cdn.example.com/proposal/a.pdf",
	}
}

func TestSubmit(t *testing.T) {
	r, _, store := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := serve(r, testutil.NewJSONRequest(http.MethodPost, "/", validSubmission()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"success":true`)

	exists, err := store.EmailExists(ctx, "SITI@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Error("expected proposal to be stored")
	}
}

func TestSubmit_DuplicateEmail(t *testing.T) {
	r, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateProposal(ctx, "Someone", "siti@example.com")

	body := validSubmission()
	body["email"] = "Siti@Example.com"
	rec := serve(r, testutil.NewJSONRequest(http.MethodPost, "/", body))
	rec.AssertStatus(t, http.StatusConflict)
}

func TestSubmit_Validation(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"short name", "name", "A"},
		{"bad email", "email", "siti@"},
		{"bad phone", "phoneNumber", "0812"},
		{"letters in phone", "phoneNumber", "+62abc"},
		{"bad file url", "fileUrl", "ftp://x"},
		{"missing file url", "fileUrl", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validSubmission()
			body[tt.field] = tt.value
			serve(r, testutil.NewJSONRequest(http.MethodPost, "/", body)).AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestUpload(t *testing.T) {
	r, _, _ := newTestRouter(t)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")
	rec := serve(r, testutil.NewMultipartRequest(http.MethodPost, "/upload", "file", "proposal.pdf", pdf, nil))
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		Path string `json:"path"`
		URL  string `json:"url"`
	}
	rec.DecodeJSON(t, &got)
	if !strings.HasPrefix(got.Path, proposals.FilePrefix+"/") || !strings.HasSuffix(got.Path, ".pdf") {
		t.Errorf("unexpected path %q", got.Path)
	}
	if got.URL != "/uploads/"+got.Path {
		t.Errorf("unexpected url %q", got.URL)
	}
}

func TestUpload_Rejects(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := serve(r, testutil.NewMultipartRequest(http.MethodPost, "/upload", "", "", nil, map[string]string{"x": "y"}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(r, testutil.NewMultipartRequest(http.MethodPost, "/upload", "file", "run.sh", []byte("#!/bin/sh\necho hi\n"), nil))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestList_Filters(t *testing.T) {
	r, fixtures, store := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateProposal(ctx, "Ahmad", "ahmad@example.com")
	fixtures.CreateProposal(ctx, "Budi", "budi@example.com")
	fixtures.CreateProposal(ctx, "Citra", "citra@example.com")
	if _, err := store.MarkRead(ctx, a.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	tests := []struct {
		query string
		total int64
	}{
		{"/", 3},
		{"/?isRead=true", 1},
		{"/?isRead=false", 2},
		{"/?isRead=all", 3},
		{"/?search=BUD", 1},
		{"/?page=2&limit=2", 3},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := serve(r, testutil.NewRequest(http.MethodGet, tt.query))
			rec.AssertStatus(t, http.StatusOK)
			var got struct {
				Data  []models.Proposal `json:"data"`
				Total int64             `json:"total"`
			}
			rec.DecodeJSON(t, &got)
			if got.Total != tt.total {
				t.Errorf("total: got %d, want %d", got.Total, tt.total)
			}
		})
	}
}

func TestMarkRead(t *testing.T) {
	r, fixtures, store := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateProposal(ctx, "Ahmad", "ahmad@example.com")

	serve(r, testutil.NewRequest(http.MethodPatch, "/"+p.ID.Hex()+"/read")).AssertStatus(t, http.StatusOK)

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsRead || got.ReadAt == nil {
		t.Errorf("expected read with timestamp, got %+v", got)
	}

	serve(r, testutil.NewRequest(http.MethodPatch, "/000000000000000000000000/read")).AssertStatus(t, http.StatusNotFound)
	serve(r, testutil.NewRequest(http.MethodPatch, "/nope/read")).AssertStatus(t, http.StatusBadRequest)
}

func TestMarkReadBody(t *testing.T) {
	r, fixtures, store := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateProposal(ctx, "Ahmad", "ahmad@example.com")

	rec := serve(r, testutil.NewJSONRequest(http.MethodPatch, "/", map[string]string{"id": p.ID.Hex()}))
	rec.AssertStatus(t, http.StatusOK)

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsRead {
		t.Error("expected proposal to be read")
	}

	serve(r, testutil.NewJSONRequest(http.MethodPatch, "/", map[string]string{})).AssertStatus(t, http.StatusBadRequest)
}
