package killzone

import (
	"testing"
	"time"

	"GoldDesk/internal/domain/models"
)

func utc(hour, min int) time.Time {
	return time.Date(2025, 6, 10, hour, min, 0, 0, time.UTC)
}

func TestSessionWraparound(t *testing.T) {
	m := NewStateMachine(DefaultSession(time.UTC))
	cases := []struct {
		hour, min int
		want      bool
	}{
		{23, 30, true},
		{0, 0, true},
		{5, 59, true},
		{6, 0, true},
		{23, 0, true},
		{12, 0, false},
		{7, 0, false},
		{22, 59, false},
	}
	for _, c := range cases {
		if got := m.InSession(utc(c.hour, c.min)); got != c.want {
			t.Errorf("InSession(%02d:%02d) = %v, want %v", c.hour, c.min, got, c.want)
		}
	}
}

func TestActiveWindowDeclarationOrder(t *testing.T) {
	m := NewStateMachine(DefaultSession(time.UTC))

	label, dir, ok := m.ActiveWindow(utc(23, 30))
	if !ok || label != "23:20-00:30" || dir != models.DirectionSell {
		t.Fatalf("23:30: got %q %v %v", label, dir, ok)
	}
	// 00:30 sits on the edge of two windows; the first declared wins
	label, dir, ok = m.ActiveWindow(utc(0, 30))
	if !ok || label != "23:20-00:30" || dir != models.DirectionSell {
		t.Fatalf("00:30: got %q %v %v", label, dir, ok)
	}
	label, dir, ok = m.ActiveWindow(utc(3, 30))
	if !ok || label != "03:00-04:00" || dir != models.DirectionBuy {
		t.Fatalf("03:30: got %q %v %v", label, dir, ok)
	}
	if _, _, ok := m.ActiveWindow(utc(12, 0)); ok {
		t.Fatal("12:00: expected not permitted")
	}
}

func TestActiveWindowObservationFallback(t *testing.T) {
	m := NewStateMachine(DefaultSession(time.UTC))
	label, dir, ok := m.ActiveWindow(utc(2, 0))
	if !ok || label != ObservationLabel || dir != models.DirectionBoth {
		t.Fatalf("02:00: got %q %v %v", label, dir, ok)
	}
}

func TestQuotaPerWindowPerDay(t *testing.T) {
	m := NewStateMachine(DefaultSession(time.UTC))
	const day = "2025-06-10"
	const label = "03:00-04:00"

	if !m.Allow(day, label) {
		t.Fatal("fresh day: expected quota available")
	}
	if !m.Issue(day, label) || !m.Issue(day, label) {
		t.Fatal("expected two issuances to succeed")
	}
	if m.Allow(day, label) {
		t.Fatal("quota spent: Allow must refuse")
	}
	if m.Issue(day, label) {
		t.Fatal("quota spent: Issue must refuse")
	}
	// other windows are unaffected
	if !m.Allow(day, "05:00-06:00") {
		t.Fatal("separate window must keep its own quota")
	}
	// a new day key resets all counts
	if !m.Issue("2025-06-11", label) {
		t.Fatal("new day: expected issuance to succeed again")
	}
	if got := m.Issued("2025-06-11", label); got != 1 {
		t.Fatalf("new day issued count = %d, want 1", got)
	}
}

func TestAllowDoesNotMutate(t *testing.T) {
	m := NewStateMachine(DefaultSession(time.UTC))
	for i := 0; i < 10; i++ {
		if !m.Allow("2025-06-10", "00:30-01:30") {
			t.Fatal("Allow must not consume quota")
		}
	}
	if got := m.Issued("2025-06-10", "00:30-01:30"); got != 0 {
		t.Fatalf("issued count after repeated Allow = %d, want 0", got)
	}
}

func TestWindowContainsWrap(t *testing.T) {
	w := Window{Start: TimeOfDay{23, 20}, End: TimeOfDay{0, 30}}
	cases := []struct {
		tod  TimeOfDay
		want bool
	}{
		{TimeOfDay{23, 20}, true},
		{TimeOfDay{23, 59}, true},
		{TimeOfDay{0, 0}, true},
		{TimeOfDay{0, 30}, true},
		{TimeOfDay{0, 31}, false},
		{TimeOfDay{23, 19}, false},
	}
	for _, c := range cases {
		if got := w.Contains(c.tod); got != c.want {
			t.Errorf("Contains(%s) = %v, want %v", c.tod, got, c.want)
		}
	}
}
