package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true)
// if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// GranularityDuration maps an OANDA-style granularity label ("M5", "H1",
// "D") to its duration. Unknown labels fall back to five minutes.
func GranularityDuration(g string) time.Duration {
	switch strings.ToUpper(g) {
	case "S5":
		return 5 * time.Second
	case "M1":
		return time.Minute
	case "M5":
		return 5 * time.Minute
	case "M15":
		return 15 * time.Minute
	case "M30":
		return 30 * time.Minute
	case "H1":
		return time.Hour
	case "H4":
		return 4 * time.Hour
	case "D":
		return 24 * time.Hour
	default:
		return 5 * time.Minute
	}
}

// AlignFromTo truncates a time range to the granularity's boundaries.
func AlignFromTo(from, to time.Time, granularity string) (time.Time, time.Time) {
	d := GranularityDuration(granularity)
	return from.Truncate(d), to.Truncate(d)
}
