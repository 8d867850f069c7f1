package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// localLayouts are accepted for time flags without a zone; they are read in local time.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// now is replaced in tests.
var now = time.Now

// parseTimeFlag reads RFC 3339 timestamps, or zone-less layouts in local time.
func parseTimeFlag(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "now" {
		return now(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: --%s %q is not a timestamp (use RFC 3339 or YYYY-MM-DD[ HH:MM])",
		domain.ErrInvalidInput, name, value)
}

// startOfDay returns local midnight of t's day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// displayTime renders a backend timestamp in local time, or the raw value if unparseable.
func displayTime(raw string) string {
	t, ok := domain.ParseTimestamp(raw)
	if !ok {
		if raw == "" {
			return "-"
		}
		return raw
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
