package handlers

import (
	"net/http"
	"strconv"
)

const maxPageSize = 200

// pagination reads limit/offset query params with the usual defaults.
// limit is capped at maxPageSize.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
			if limit > maxPageSize {
				limit = maxPageSize
			}
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
