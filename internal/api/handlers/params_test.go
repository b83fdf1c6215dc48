package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPagination(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		limit  int
		offset int
	}{
		{"defaults", "", 50, 0},
		{"explicit", "limit=10&offset=5", 10, 5},
		{"limit capped", "limit=1000000000", 200, 0},
		{"zero and negative ignored", "limit=0&offset=-2", 50, 0},
		{"junk ignored", "limit=abc&offset=xyz", 50, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
			limit, offset := pagination(r)
			if limit != tc.limit || offset != tc.offset {
				t.Fatalf("pagination = (%d, %d), want (%d, %d)", limit, offset, tc.limit, tc.offset)
			}
		})
	}
}
