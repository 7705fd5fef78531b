// Package timeutil centralizes timestamp formatting so every
// component emits the same ISO-8601 UTC representation.
package timeutil

import "time"

// Format renders t as RFC3339Nano in UTC, or "" for the zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Parse accepts RFC3339 timestamps with or without fractional
// seconds. Returns the zero time when s is empty or malformed.
func Parse(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
