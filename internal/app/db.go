package app

import (
	"net/url"
	"regexp"
	"strings"
)

// Helpers for the otelsql instrumentation around the ledger database.

const tracedQueryLimit = 512

var collapseWhitespace = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace flattens a query onto one line and caps its length so
// span attributes stay readable.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}
	flat := collapseWhitespace.ReplaceAllString(query, " ")
	if len(flat) > tracedQueryLimit {
		return flat[:tracedQueryLimit] + "..."
	}
	return flat
}

// normalizeDBURL appends disable_prepared_binary_result=yes when the deploy
// asks for it and the URL does not already carry a value. Some poolers reject
// binary result encoding on prepared statements.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}
	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") != "" {
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL digs the database name out of a URL or key=value DSN for the
// db.name span attribute. Empty when the string names none.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}
	for _, token := range strings.Fields(trimmed) {
		key, value, found := strings.Cut(token, "=")
		if !found || key != "dbname" {
			continue
		}
		if name := strings.Trim(strings.TrimSpace(value), `"'`); name != "" {
			return name
		}
	}
	return ""
}
