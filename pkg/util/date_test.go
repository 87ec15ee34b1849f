package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2025-06-01T23:00:00Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2025, 6, 1, 23, 3, 17, 0, time.UTC)
	to := time.Date(2025, 6, 2, 1, 58, 59, 0, time.UTC)
	af, at := AlignFromTo(from, to, "M5")
	if af.Minute() != 0 || af.Second() != 0 {
		t.Fatalf("from not aligned: %v", af)
	}
	if at.Minute() != 55 || at.Second() != 0 {
		t.Fatalf("to not aligned: %v", at)
	}
}

func TestGranularityDurationFallback(t *testing.T) {
	if GranularityDuration("weird") != 5*time.Minute {
		t.Fatal("unknown granularity must fall back to five minutes")
	}
}
