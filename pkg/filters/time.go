package filters

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// layouts tried before falling back to dateparse
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
}

// EpochMillis parses a platform timestamp into epoch milliseconds. Zoneless
// input is read as UTC. Returns nil for absent, unparseable or zero instants.
func EpochMillis(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	t, ok := parseTime(raw)
	if !ok {
		return nil
	}

	ms := t.UnixMilli()
	if ms == 0 {
		return nil
	}
	return &ms
}

func parseTime(raw string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
