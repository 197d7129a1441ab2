package api

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{"", 20, 0, false},
		{"?limit=5", 5, 0, false},
		{"?limit=5&offset=10", 5, 10, false},
		{"?limit=500", 100, 0, false}, // clamped to max
		{"?limit=0", 0, 0, true},
		{"?limit=-1", 0, 0, true},
		{"?limit=abc", 0, 0, true},
		{"?offset=-1", 0, 0, true},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/v1/device-profiles"+tc.query, nil)
		limit, offset, err := parsePage(r, 20, 100)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.query)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tc.query, err)
			continue
		}
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Errorf("%q: got limit=%d offset=%d, want %d/%d", tc.query, limit, offset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestSetLinkHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/device-profiles?limit=10&offset=10", nil)

	w := httptest.NewRecorder()
	setLinkHeader(w, r, 10, 10, 35)
	link := w.Header().Get("Link")
	if !strings.Contains(link, `offset=20`) || !strings.Contains(link, `rel="next"`) {
		t.Errorf("missing next link: %s", link)
	}
	if !strings.Contains(link, `offset=0`) || !strings.Contains(link, `rel="prev"`) {
		t.Errorf("missing prev link: %s", link)
	}

	// First page of a short list carries no links at all.
	w = httptest.NewRecorder()
	setLinkHeader(w, httptest.NewRequest("GET", "/api/v1/device-profiles", nil), 10, 0, 5)
	if got := w.Header().Get("Link"); got != "" {
		t.Errorf("unexpected link header: %s", got)
	}
}

func TestSetLinkHeader_PrevClampsToZero(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/device-profiles?limit=10&offset=4", nil)
	w := httptest.NewRecorder()
	setLinkHeader(w, r, 10, 4, 100)
	link := w.Header().Get("Link")
	if !strings.Contains(link, "offset=0") {
		t.Errorf("prev offset should clamp to 0: %s", link)
	}
}
