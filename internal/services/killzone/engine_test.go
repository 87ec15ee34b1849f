package killzone

import (
	"testing"
	"time"

	"GoldDesk/internal/domain/models"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultEngineConfig(), NewStateMachine(DefaultSession(time.UTC)))
}

func buyTick(at time.Time) Tick {
	return Tick{
		Price:      2005,
		Candle:     models.Candle{Time: at, Open: 2003, High: 2006, Low: 1998.5, Close: 2004},
		RecentHigh: 2008,
		RecentLow:  1998,
		At:         at,
		Step:       10,
	}
}

func TestAnalyzeBuySignal(t *testing.T) {
	e := newTestEngine()
	at := utc(3, 30) // buy window
	sig, err := e.Analyze(buyTick(at))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Direction != models.DirectionBuy {
		t.Fatalf("direction = %v, want buy", sig.Direction)
	}
	if sig.Entry != 2005 {
		t.Fatalf("entry = %v, want 2005", sig.Entry)
	}
	if sig.Level != 2000 {
		t.Fatalf("level = %v, want nearest rejected level 2000", sig.Level)
	}
	// stop = min(recentLow-2, level-35) = min(1996, 1965)
	if sig.Stop != 1965 {
		t.Fatalf("stop = %v, want 1965", sig.Stop)
	}
	if sig.Risk != 40 {
		t.Fatalf("risk = %v, want 40", sig.Risk)
	}
	if len(sig.Targets) != 4 {
		t.Fatalf("targets = %v, want 4 entries", sig.Targets)
	}
	for i, tgt := range sig.Targets {
		if tgt <= sig.Entry {
			t.Fatalf("target %d = %v not above entry", i, tgt)
		}
		if i > 0 && tgt <= sig.Targets[i-1] {
			t.Fatalf("targets not ascending: %v", sig.Targets)
		}
	}
	if sig.Window != "03:00-04:00" {
		t.Fatalf("window = %q", sig.Window)
	}
	// rejection: lower wick 4.5 against min wick 2
	if sig.Rejection != 2.25 {
		t.Fatalf("rejection strength = %v, want 2.25", sig.Rejection)
	}
}

func TestAnalyzeOutsideSession(t *testing.T) {
	e := newTestEngine()
	sig, err := e.Analyze(buyTick(utc(12, 0)))
	if err != nil || sig != nil {
		t.Fatalf("outside session: expected nil/nil, got %v %v", sig, err)
	}
}

func TestAnalyzeQuotaExhaustion(t *testing.T) {
	e := newTestEngine()
	at := utc(3, 30)
	for i := 0; i < 2; i++ {
		sig, err := e.Analyze(buyTick(at))
		if err != nil || sig == nil {
			t.Fatalf("issue %d: expected signal, got %v %v", i, sig, err)
		}
	}
	sig, err := e.Analyze(buyTick(at))
	if err != nil || sig != nil {
		t.Fatalf("third same-day tick must be refused, got %v %v", sig, err)
	}
	// next day, same window works again
	next := buyTick(at.AddDate(0, 0, 1))
	next.At = at.AddDate(0, 0, 1)
	sig, err = e.Analyze(next)
	if err != nil || sig == nil {
		t.Fatalf("next day: expected signal, got %v %v", sig, err)
	}
}

func TestAnalyzeForcedDirection(t *testing.T) {
	e := newTestEngine()
	at := utc(23, 30) // sell-biased window
	tick := buyTick(at)
	tick.Force = models.DirectionBuy
	sig, err := e.Analyze(tick)
	if err != nil || sig == nil {
		t.Fatalf("expected forced-buy signal, got %v %v", sig, err)
	}
	if sig.Direction != models.DirectionBuy {
		t.Fatalf("direction = %v, want forced buy", sig.Direction)
	}
	if sig.Window != "23:20-00:30" {
		t.Fatalf("window = %q", sig.Window)
	}
}

func TestAnalyzeNoRejectionNoSignal(t *testing.T) {
	e := newTestEngine()
	tick := buyTick(utc(3, 30))
	// bodyless candle, no wick anywhere near the levels
	tick.Candle = models.Candle{Open: 2004.8, High: 2005.2, Low: 2004.6, Close: 2005}
	sig, err := e.Analyze(tick)
	if err != nil || sig != nil {
		t.Fatalf("expected nil signal, got %v %v", sig, err)
	}
}

func TestAnalyzeMalformedCandle(t *testing.T) {
	e := newTestEngine()
	tick := buyTick(utc(3, 30))
	tick.Candle.High = tick.Candle.Low - 1
	if _, err := e.Analyze(tick); err == nil {
		t.Fatal("expected error for malformed candle")
	}
	tick = buyTick(utc(3, 30))
	tick.Price = -1
	if _, err := e.Analyze(tick); err == nil {
		t.Fatal("expected error for non-positive price")
	}
}

func TestStructuralStopBounds(t *testing.T) {
	e := newTestEngine()

	// risk below the tight limit rejects the candidate
	tight := Tick{Price: 1970, RecentLow: 1968}
	if _, _, ok := e.structuralStop(tight, 2000, models.DirectionBuy); ok {
		t.Fatal("expected tight-risk rejection")
	}

	// risk above the maximum widens the stop to the cap
	wide := Tick{Price: 2040, RecentLow: 2035}
	stop, risk, ok := e.structuralStop(wide, 2000, models.DirectionBuy)
	if !ok {
		t.Fatal("expected clamped candidate to qualify")
	}
	if risk != 65 || stop != 2040-65 {
		t.Fatalf("stop/risk = %v/%v, want 1975/65", stop, risk)
	}

	// sell mirror
	sell := Tick{Price: 1960, RecentHigh: 1965}
	stop, risk, ok = e.structuralStop(sell, 2000, models.DirectionSell)
	if !ok {
		t.Fatal("expected sell candidate")
	}
	if stop != 2025 || risk != 65 {
		t.Fatalf("sell stop/risk = %v/%v, want 2025/65", stop, risk)
	}
}

func TestTargetsFavorableSideOnly(t *testing.T) {
	e := newTestEngine()
	buy := e.targets(2005, 10, models.DirectionBuy)
	for _, tgt := range buy {
		if tgt <= 2005 {
			t.Fatalf("buy target %v on wrong side", tgt)
		}
	}
	sell := e.targets(2005, 10, models.DirectionSell)
	if len(sell) == 0 {
		t.Fatal("expected sell targets")
	}
	for _, tgt := range sell {
		if tgt >= 2005 {
			t.Fatalf("sell target %v on wrong side", tgt)
		}
	}
}
