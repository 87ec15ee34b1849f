package usecase

import (
	"context"
	"testing"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/services/killzone"
)

type fakeBroadcaster struct {
	signals []*models.Signal
}

func (b *fakeBroadcaster) BroadcastSignal(s *models.Signal) { b.signals = append(b.signals, s) }

func newSignalUsecase(bc Broadcaster) (*SignalUsecase, *fakeMetrics) {
	state := killzone.NewStateMachine(killzone.DefaultSession(time.UTC))
	engine := killzone.NewEngine(killzone.DefaultEngineConfig(), state)
	m := newFakeMetrics()
	return NewSignalUsecase(engine, m, testLogger(), bc), m
}

func buyRequest(at time.Time) *models.AnalyzeRequest {
	return &models.AnalyzeRequest{
		Price: 2005,
		Candle: models.Candle{
			Time: at, Open: 2003, High: 2006, Low: 1998.5, Close: 2004,
		},
		RecentHigh: 2010,
		RecentLow:  1998,
		At:         at.Format(time.RFC3339),
		Step:       10,
	}
}

func TestAnalyzeIssuesAndBroadcasts(t *testing.T) {
	bc := &fakeBroadcaster{}
	u, m := newSignalUsecase(bc)

	at := time.Date(2025, 6, 2, 3, 30, 0, 0, time.UTC) // buy window
	sig, err := u.Analyze(context.Background(), buyRequest(at))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Direction != models.DirectionBuy {
		t.Fatalf("expected BUY, got %s", sig.Direction)
	}
	if len(bc.signals) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(bc.signals))
	}
	if m.signals != 1 {
		t.Fatalf("expected 1 signal metric, got %d", m.signals)
	}
}

func TestAnalyzeOutsideSessionNoSignal(t *testing.T) {
	bc := &fakeBroadcaster{}
	u, _ := newSignalUsecase(bc)

	at := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	sig, err := u.Analyze(context.Background(), buyRequest(at))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if sig != nil {
		t.Fatal("expected no signal outside the session")
	}
	if len(bc.signals) != 0 {
		t.Fatal("expected no broadcast")
	}
}

func TestAnalyzeRejectsBadTimestamp(t *testing.T) {
	u, _ := newSignalUsecase(nil)
	req := buyRequest(time.Now())
	req.At = "yesterday"
	if _, err := u.Analyze(context.Background(), req); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestStatusInsideAndOutside(t *testing.T) {
	u, _ := newSignalUsecase(nil)

	in := u.Status(time.Date(2025, 6, 2, 3, 30, 0, 0, time.UTC))
	if !in.InSession || in.Window != "03:00-04:00" || in.Direction != models.DirectionBuy {
		t.Fatalf("unexpected status %+v", in)
	}
	if in.Quota != 2 || in.Issued != 0 {
		t.Fatalf("unexpected quota state %+v", in)
	}
	if len(in.Windows) != 4 || in.Windows[2].Window != "03:00-04:00" {
		t.Fatalf("unexpected window list %+v", in.Windows)
	}
	if in.Policy.StopMin != 35 || in.Policy.StopMax != 65 {
		t.Fatalf("unexpected policy %+v", in.Policy)
	}

	out := u.Status(time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))
	if out.InSession || out.Window != "" {
		t.Fatalf("expected out-of-session status, got %+v", out)
	}
}

func TestOnCandleFeedsEngine(t *testing.T) {
	bc := &fakeBroadcaster{}
	u, _ := newSignalUsecase(bc)

	at := time.Date(2025, 6, 2, 3, 30, 0, 0, time.UTC)
	// seed the rolling range with a wider candle so the structural stop has
	// an intraday low to anchor on
	u.OnCandle(context.Background(), models.Candle{
		Time: at.Add(-5 * time.Minute), Open: 2005, High: 2010, Low: 1998, Close: 2003,
	})
	u.OnCandle(context.Background(), models.Candle{
		Time: at, Open: 2003, High: 2006, Low: 1998.5, Close: 2004,
	})

	if len(bc.signals) == 0 {
		t.Fatal("expected a broadcast signal from the live tick")
	}
	if bc.signals[len(bc.signals)-1].Direction != models.DirectionBuy {
		t.Fatalf("expected BUY, got %s", bc.signals[len(bc.signals)-1].Direction)
	}
}

func TestRecentRangeExtremes(t *testing.T) {
	r := newRecentRange(3)
	if _, _, ok := r.extremes(); ok {
		t.Fatal("empty range must not report extremes")
	}
	for i, c := range []models.Candle{
		{High: 2010, Low: 1990},
		{High: 2020, Low: 1995},
		{High: 2005, Low: 1985},
		{High: 2000, Low: 1999}, // evicts the first
	} {
		r.push(c)
		_ = i
	}
	high, low, ok := r.extremes()
	if !ok {
		t.Fatal("expected extremes")
	}
	if high != 2020 || low != 1985 {
		t.Fatalf("unexpected extremes high=%v low=%v", high, low)
	}
}
