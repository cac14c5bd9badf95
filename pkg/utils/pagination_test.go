package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Page
	}{
		{
			name: "no parameters uses defaults",
			url:  "/api/secrets",
			want: Page{Limit: DefaultPageLimit, Offset: 0},
		},
		{
			name: "explicit limit and offset",
			url:  "/api/secrets?limit=10&offset=20",
			want: Page{Limit: 10, Offset: 20},
		},
		{
			name: "limit clamped to the maximum",
			url:  "/api/secrets?limit=9999",
			want: Page{Limit: MaxPageLimit, Offset: 0},
		},
		{
			name: "non-numeric values fall back to defaults",
			url:  "/api/secrets?limit=all&offset=some",
			want: Page{Limit: DefaultPageLimit, Offset: 0},
		},
		{
			name: "negative values fall back to defaults",
			url:  "/api/secrets?limit=-5&offset=-1",
			want: Page{Limit: DefaultPageLimit, Offset: 0},
		},
		{
			name: "zero limit falls back to default",
			url:  "/api/secrets?limit=0",
			want: Page{Limit: DefaultPageLimit, Offset: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			assert.Equal(t, tt.want, ParsePage(req))
		})
	}
}
