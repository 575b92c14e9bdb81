package dakwah_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mtt/mttdash/internal/app/features/dakwah"
	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	dakwahstore "github.com/mtt/mttdash/internal/app/store/dakwah"
	"github.com/mtt/mttdash/internal/app/system/capacity"
	"github.com/mtt/mttdash/internal/app/system/visibility"
	"github.com/mtt/mttdash/internal/domain/models"
	"github.com/mtt/mttdash/internal/testutil"
	"go.uber.org/zap"
)

func allow(next http.Handler) http.Handler { return next }

func newTestRouter(t *testing.T) (chi.Router, *testutil.Fixtures, *dakwahstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	store := dakwahstore.New(db)
	svc := visibility.NewHighlights(store, capacity.NewGuard(db, logger, nil), capacitypolicy.DakwahHighlights(5), nil)
	h := dakwah.NewHandler(svc, nil, apierrors.NewErrorLogger(logger), logger)
	return dakwah.Routes(h, allow), testutil.NewFixtures(t, db), store
}

func serve(r chi.Router, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type mutation struct {
	Success   bool           `json:"success"`
	Highlight bool           `json:"highlight"`
	Data      *models.Dakwah `json:"data"`
}

func TestCreate(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name          string
		body          map[string]any
		status        int
		wantHighlight bool
	}{
		{"plain draft", map[string]any{"title": "Sabar", "description": "Tentang sabar"}, http.StatusCreated, false},
		{"published highlight", map[string]any{"title": "Syukur", "description": "Tentang syukur", "published": true, "highlight": true}, http.StatusCreated, true},
		{"unpublished highlight", map[string]any{"title": "Ikhlas", "description": "Tentang ikhlas", "highlight": true}, http.StatusBadRequest, false},
		{"title too long", map[string]any{"title": "This title is far longer than thirty two", "description": "x"}, http.StatusBadRequest, false},
		{"punctuation", map[string]any{"title": "Hello!", "description": "x"}, http.StatusBadRequest, false},
		{"missing description", map[string]any{"title": "Hello"}, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, testutil.NewJSONRequest(http.MethodPost, "/", tt.body))
			rec.AssertStatus(t, tt.status)
			if tt.status != http.StatusCreated {
				return
			}
			var got mutation
			rec.DecodeJSON(t, &got)
			if got.Highlight != tt.wantHighlight {
				t.Errorf("highlight: got %v, want %v", got.Highlight, tt.wantHighlight)
			}
		})
	}
}

func TestHighlight_RejectsAtCap(t *testing.T) {
	r, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		fixtures.CreateDakwah(ctx, fmt.Sprintf("Post %d", i), true, true)
	}
	extra := fixtures.CreateDakwah(ctx, "Extra", true, false)

	rec := serve(r, testutil.NewJSONRequest(http.MethodPatch, "/"+extra.ID.Hex()+"/highlight", map[string]bool{"highlight": true}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Maximum 5 highlighted posts allowed")
}

func TestHighlight_RequiresPublished(t *testing.T) {
	r, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	draft := fixtures.CreateDakwah(ctx, "Draft", false, false)

	rec := serve(r, testutil.NewJSONRequest(http.MethodPatch, "/"+draft.ID.Hex()+"/highlight", map[string]bool{"highlight": true}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Only published posts can be highlighted")
}

func TestHighlight_ToggleOff(t *testing.T) {
	r, fixtures, store := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateDakwah(ctx, "Post", true, true)

	rec := serve(r, testutil.NewJSONRequest(http.MethodPatch, "/"+p.ID.Hex()+"/highlight", map[string]bool{"highlight": false}))
	rec.AssertStatus(t, http.StatusOK)

	n, err := store.CountHighlighted(ctx, nil)
	if err != nil {
		t.Fatalf("CountHighlighted: %v", err)
	}
	if n != 0 {
		t.Errorf("highlighted: got %d, want 0", n)
	}
}

func TestEdit_UnpublishClearsHighlight(t *testing.T) {
	r, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateDakwah(ctx, "Post", true, true)

	rec := serve(r, testutil.NewJSONRequest(http.MethodPut, "/"+p.ID.Hex(), map[string]any{
		"title":       "Post",
		"description": "Updated",
		"published":   false,
	}))
	rec.AssertStatus(t, http.StatusOK)

	var got mutation
	rec.DecodeJSON(t, &got)
	if got.Highlight {
		t.Error("unpublished post should lose its highlight")
	}
}

func TestListHighlightedAndGet(t *testing.T) {
	r, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateDakwah(ctx, "A", true, true)
	fixtures.CreateDakwah(ctx, "B", true, false)
	fixtures.CreateDakwah(ctx, "C", false, false)

	tests := []struct {
		target string
		want   int
	}{
		{"/", 3},
		{"/?published=true", 2},
		{"/highlight", 1},
	}
	for _, tt := range tests {
		rec := serve(r, testutil.NewRequest(http.MethodGet, tt.target))
		rec.AssertStatus(t, http.StatusOK)
		var list []models.Dakwah
		rec.DecodeJSON(t, &list)
		if len(list) != tt.want {
			t.Errorf("GET %s: got %d posts, want %d", tt.target, len(list), tt.want)
		}
	}

	serve(r, testutil.NewRequest(http.MethodGet, "/"+a.ID.Hex())).AssertStatus(t, http.StatusOK)
	serve(r, testutil.NewRequest(http.MethodGet, "/000000000000000000000000")).AssertStatus(t, http.StatusNotFound)
}

func TestDelete(t *testing.T) {
	r, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateDakwah(ctx, "Post", true, true)

	serve(r, testutil.NewRequest(http.MethodDelete, "/"+p.ID.Hex())).AssertStatus(t, http.StatusOK)
	serve(r, testutil.NewRequest(http.MethodDelete, "/"+p.ID.Hex())).AssertStatus(t, http.StatusNotFound)
}
