// Package utils provides pagination parameter parsing for list endpoints.
package utils

import (
	"net/http"
	"strconv"
)

// Pagination bounds for list queries.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 500
)

// Page holds validated limit/offset parameters for a list query.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage extracts optional "limit" and "offset" query parameters from a
// request, applying defaults and clamping to sane bounds. Invalid or missing
// values fall back to the defaults rather than erroring — listing everything
// is the normal case for this API.
//
// Example:
//
//	page := utils.ParsePage(r)
//	secrets, err := svc.List(ctx, owner, page)
func ParsePage(r *http.Request) Page {
	page := Page{Limit: DefaultPageLimit, Offset: 0}

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page.Limit = n
		}
	}
	if page.Limit > MaxPageLimit {
		page.Limit = MaxPageLimit
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page.Offset = n
		}
	}

	return page
}
