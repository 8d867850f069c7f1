package domain

import (
	"strings"
	"time"
)

// EpochZero is the sort key used for missing or unparseable timestamps.
var EpochZero = time.Unix(0, 0).UTC()

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses a backend timestamp string.
// The second return value is false when s is empty or matches no known layout.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// TimestampOrEpoch parses s, falling back to EpochZero.
func TimestampOrEpoch(s string) time.Time {
	if t, ok := ParseTimestamp(s); ok {
		return t
	}
	return EpochZero
}

// FormatTimestamp renders t the way the backend expects query bounds (ISO-8601, UTC, millis).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
