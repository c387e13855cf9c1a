package chat

import (
	"strings"
	"time"
)

// timeNow is a package-level variable for testability.
// Tests can replace this to control time in assertions.
var timeNow = time.Now

// stampLayout matches the ISO-8601 timestamps in the stored documents
// (microsecond precision, no zone).
const stampLayout = "2006-01-02T15:04:05.000000"

// compactLayout is used inside task/group/session IDs.
const compactLayout = "20060102150405"

func nowStamp() string {
	return timeNow().Format(stampLayout)
}

func nowCompact() string {
	return timeNow().Format(compactLayout)
}

// parseStampLayouts are tried in order by ParseStamp. Callers pass both
// our own stamps and whatever ISO-ish strings other tooling wrote.
var parseStampLayouts = []string{
	stampLayout,
	"2006-01-02T15:04:05.000000-07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseStamp parses an ISO-8601-ish timestamp. A trailing "Z" is treated
// as UTC. Returns false when nothing matches — callers ignore, rather
// than reject, malformed values.
func ParseStamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseStampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimeRange resolves a time_range argument to a lower bound. The
// keywords last_24_hours / last_7_days / last_30_days are relative to
// now; anything else is parsed as a timestamp. Returns false when the
// value is neither.
func ParseTimeRange(s string) (time.Time, bool) {
	now := timeNow()
	switch strings.TrimSpace(s) {
	case "last_24_hours":
		return now.Add(-24 * time.Hour), true
	case "last_7_days":
		return now.AddDate(0, 0, -7), true
	case "last_30_days":
		return now.AddDate(0, 0, -30), true
	}
	return ParseStamp(s)
}
