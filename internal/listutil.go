package internal

import (
	"net/http"
	"strconv"
	"strings"
)

// listParams holds the query parameters shared by all list endpoints.
// Pagination is offset-based: skip/limit, defaulting to 0/100.
type listParams struct {
	skip   int
	limit  int
	search string
}

func parseListParams(r *http.Request) listParams {
	values := r.URL.Query()

	skip := 0
	if s := strings.TrimSpace(values.Get("skip")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			skip = v
		}
	}

	limit := 100
	if s := strings.TrimSpace(values.Get("limit")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	return listParams{
		skip:   skip,
		limit:  limit,
		search: strings.TrimSpace(values.Get("search")),
	}
}

// queryInt64 parses an optional int64 query parameter, nil when absent or
// malformed.
func queryInt64(r *http.Request, name string) *int64 {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// queryBool parses an optional bool query parameter, nil when absent or
// malformed.
func queryBool(r *http.Request, name string) *bool {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}

// queryInt parses an optional int query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// pathID parses the {id} route parameter.
func pathID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
