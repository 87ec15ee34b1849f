package killzone

import (
	"fmt"
	"sync"
	"time"

	"GoldDesk/internal/domain/models"
)

// TimeOfDay is a wall-clock minute within the trading location's day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: hh, Minute: mm}, nil
}

// Window is a fixed local-time interval with an expected direction bias.
// Windows may wrap past midnight. Configuration only, never mutated.
type Window struct {
	Start     TimeOfDay
	End       TimeOfDay
	Direction models.Direction
}

// Label is the window identity used for quota bookkeeping, "HH:MM-HH:MM".
func (w Window) Label() string { return w.Start.String() + "-" + w.End.String() }

// Contains reports whether t falls inside the window, inclusive on both
// edges, honoring midnight wraparound.
func (w Window) Contains(t TimeOfDay) bool {
	return inRange(t.minutes(), w.Start.minutes(), w.End.minutes())
}

// inRange: start > end means the interval wraps midnight, so membership is
// t >= start OR t <= end; otherwise plain start <= t <= end.
func inRange(t, start, end int) bool {
	if start > end {
		return t >= start || t <= end
	}
	return t >= start && t <= end
}

// ObservationLabel names the catch-all window used when the session is
// active but no declared window matches.
const ObservationLabel = "OBSERVATION"

// SessionConfig is the full kill-zone policy: overall session bounds, the
// declared windows in scan order, the per-window daily quota, and the
// trading location used to resolve wall-clock time.
type SessionConfig struct {
	Start    TimeOfDay
	End      TimeOfDay
	Windows  []Window
	Quota    int
	Location *time.Location
}

// DefaultSession is the XAUUSD Asia-session policy. Declaration order is a
// load-bearing tie-break for the engine's first-match scan.
func DefaultSession(loc *time.Location) SessionConfig {
	if loc == nil {
		loc = time.UTC
	}
	return SessionConfig{
		Start: TimeOfDay{23, 0},
		End:   TimeOfDay{6, 0},
		Windows: []Window{
			{Start: TimeOfDay{23, 20}, End: TimeOfDay{0, 30}, Direction: models.DirectionSell},
			{Start: TimeOfDay{0, 30}, End: TimeOfDay{1, 30}, Direction: models.DirectionBoth},
			{Start: TimeOfDay{3, 0}, End: TimeOfDay{4, 0}, Direction: models.DirectionBuy},
			{Start: TimeOfDay{5, 0}, End: TimeOfDay{6, 0}, Direction: models.DirectionSell},
		},
		Quota:    2,
		Location: loc,
	}
}

// StateMachine owns the only mutable state in the core: the current day key
// and per-window issued counts. The mutex makes the quota check and the
// issuance increment atomic under concurrent engine calls.
type StateMachine struct {
	cfg SessionConfig

	mu     sync.Mutex
	dayKey string
	issued map[string]int
}

func NewStateMachine(cfg SessionConfig) *StateMachine {
	if cfg.Quota <= 0 {
		cfg.Quota = 2
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &StateMachine{cfg: cfg, issued: make(map[string]int)}
}

func (m *StateMachine) Config() SessionConfig { return m.cfg }

func (m *StateMachine) clock(t time.Time) TimeOfDay {
	lt := t.In(m.cfg.Location)
	return TimeOfDay{lt.Hour(), lt.Minute()}
}

// InSession reports whether t falls inside the overall session range.
func (m *StateMachine) InSession(t time.Time) bool {
	return inRange(m.clock(t).minutes(), m.cfg.Start.minutes(), m.cfg.End.minutes())
}

// ActiveWindow resolves the window for t. Outside the session it returns
// ok=false. Inside, windows are scanned in declaration order and the first
// match wins; with no match the OBSERVATION catch-all applies.
func (m *StateMachine) ActiveWindow(t time.Time) (label string, dir models.Direction, ok bool) {
	if !m.InSession(t) {
		return "", models.DirectionNone, false
	}
	tod := m.clock(t)
	for _, w := range m.cfg.Windows {
		if w.Contains(tod) {
			return w.Label(), w.Direction, true
		}
	}
	return ObservationLabel, models.DirectionBoth, true
}

// ResetDay clears all window counts for a new day key. Called internally on
// day rollover; exposed so a long-lived owner can reset explicitly.
func (m *StateMachine) ResetDay(dayKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked(dayKey)
}

func (m *StateMachine) resetLocked(dayKey string) {
	if dayKey != m.dayKey {
		m.dayKey = dayKey
		m.issued = make(map[string]int)
	}
}

// Allow reports whether the window still has quota for the day without
// mutating counts. A differing day key resets state first.
func (m *StateMachine) Allow(dayKey, label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked(dayKey)
	return m.issued[label] < m.cfg.Quota
}

// Issue atomically re-checks the quota and increments the count. Returns
// false when the quota is already spent.
func (m *StateMachine) Issue(dayKey, label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked(dayKey)
	if m.issued[label] >= m.cfg.Quota {
		return false
	}
	m.issued[label]++
	return true
}

// Issued returns the current count for a window, for status reporting.
func (m *StateMachine) Issued(dayKey, label string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked(dayKey)
	return m.issued[label]
}

// DayKey formats t as the state machine's day key in the trading location.
func (m *StateMachine) DayKey(t time.Time) string {
	return t.In(m.cfg.Location).Format("2006-01-02")
}
