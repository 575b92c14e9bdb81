package paging

import (
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		want  Page
	}{
		{"defaults", "/x", Page{Page: 1, Limit: DefaultLimit}},
		{"explicit", "/x?page=3&limit=20", Page{Page: 3, Limit: 20}},
		{"invalid page", "/x?page=zero", Page{Page: 1, Limit: DefaultLimit}},
		{"negative page", "/x?page=-2", Page{Page: 1, Limit: DefaultLimit}},
		{"zero limit", "/x?limit=0", Page{Page: 1, Limit: DefaultLimit}},
		{"capped limit", "/x?limit=5000", Page{Page: 1, Limit: MaxLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(httptest.NewRequest("GET", tt.url, nil), DefaultLimit)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestParse_GalleryDefault(t *testing.T) {
	got := Parse(httptest.NewRequest("GET", "/api/gallery/news", nil), GalleryLimit)
	if got.Limit != 9 {
		t.Errorf("Limit = %d, want 9", got.Limit)
	}
}

func TestSkipAndApply(t *testing.T) {
	p := Page{Page: 3, Limit: 9}
	if got := p.Skip(); got != 18 {
		t.Errorf("Skip() = %d, want 18", got)
	}

	find := p.Apply(options.Find())
	if find.Skip == nil || *find.Skip != 18 {
		t.Errorf("Apply skip = %v, want 18", find.Skip)
	}
	if find.Limit == nil || *find.Limit != 9 {
		t.Errorf("Apply limit = %v, want 9", find.Limit)
	}
}

func TestTotalPages(t *testing.T) {
	p := Page{Page: 1, Limit: 10}
	cases := map[int64]int64{0: 0, 1: 1, 10: 1, 11: 2, 95: 10}
	for total, want := range cases {
		if got := p.TotalPages(total); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", total, got, want)
		}
	}
}
