package patterns

import (
	"math"
	"testing"
	"time"

	"GoldDesk/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func sample(id string) models.TradeSample {
	return models.TradeSample{
		TradeID:   id,
		LocalTime: time.Date(2025, 6, 10, 3, 15, 0, 0, time.UTC),
		Direction: models.DirectionBuy,
		Timeframe: "M5",
		Entry:     2005,
		Stop:      1995,
		Target:    2025,
	}
}

func TestExtractVector(t *testing.T) {
	s := sample("t1")
	s.LevelKind = models.LevelSupport
	s.Touched = true
	s.Rejection = true
	s.ATR = fp(8)
	s.LevelValue = fp(2001)
	s.LevelStep = fp(10)

	feats, skipped := Extract([]models.TradeSample{s}, 10)
	if skipped != 0 || len(feats) != 1 {
		t.Fatalf("unexpected extract result: %d feats, %d skipped", len(feats), skipped)
	}
	v := feats[0].Vector
	if v[models.FeatHour] != 3 {
		t.Errorf("hour = %v, want 3", v[models.FeatHour])
	}
	if v[models.FeatTimeframeMin] != 5 {
		t.Errorf("timeframe = %v, want 5", v[models.FeatTimeframeMin])
	}
	if v[models.FeatDirection] != 1 {
		t.Errorf("direction sign = %v, want +1", v[models.FeatDirection])
	}
	if v[models.FeatLevelKind] != 1 {
		t.Errorf("level kind sign = %v, want +1", v[models.FeatLevelKind])
	}
	if v[models.FeatTouched] != 1 || v[models.FeatRejection] != 1 || v[models.FeatConfirmation] != 0 {
		t.Errorf("flags = %v/%v/%v", v[models.FeatTouched], v[models.FeatRejection], v[models.FeatConfirmation])
	}
	// risk 10, reward 20
	if v[models.FeatRR] != 2 {
		t.Errorf("rr = %v, want 2", v[models.FeatRR])
	}
	if v[models.FeatRiskATR] != 1.25 || v[models.FeatRewardATR] != 2.5 {
		t.Errorf("atr-normalized = %v/%v, want 1.25/2.5", v[models.FeatRiskATR], v[models.FeatRewardATR])
	}
	// entry 2005, step 10: nearest multiple 2010 (half rounds away from zero)
	if v[models.FeatEntryRoundDist] != 5 {
		t.Errorf("round dist = %v, want 5", v[models.FeatEntryRoundDist])
	}
	if v[models.FeatLevelDistATR] != 0.5 {
		t.Errorf("level dist / atr = %v, want 0.5", v[models.FeatLevelDistATR])
	}
	if !feats[0].HasRiskATR || !feats[0].HasRewardATR || !feats[0].HasLevelDist {
		t.Errorf("presence flags not set: %+v", feats[0])
	}
}

func TestExtractSkipsMalformedRows(t *testing.T) {
	bad := sample("bad")
	bad.Stop = 0
	feats, skipped := Extract([]models.TradeSample{sample("ok"), bad}, 10)
	if len(feats) != 1 || skipped != 1 {
		t.Fatalf("expected 1 kept 1 skipped, got %d/%d", len(feats), skipped)
	}
}

func TestExtractZeroRiskZeroRR(t *testing.T) {
	s := sample("flat")
	s.Stop = s.Entry
	feats, _ := Extract([]models.TradeSample{s}, 10)
	if feats[0].Vector[models.FeatRR] != 0 {
		t.Fatalf("zero risk must give rr 0, got %v", feats[0].Vector[models.FeatRR])
	}
}

func TestTimeframeMinutes(t *testing.T) {
	cases := map[string]int{
		"M5": 5, "m15": 15, "H1": 60, "H4": 240, "D1": 1440, "W1": 10080,
		"30": 30, "": 5, "bogus": 5,
	}
	for tf, want := range cases {
		if got := TimeframeMinutes(tf); got != want {
			t.Errorf("TimeframeMinutes(%q) = %d, want %d", tf, got, want)
		}
	}
}

func TestNearestPresencePenalty(t *testing.T) {
	target := sample("target")
	target.ATR = fp(20) // risk 10 / atr 20 = 0.5

	withATR := sample("with")
	withATR.ATR = fp(20)

	withoutATR := sample("without")

	feats, _ := Extract([]models.TradeSample{target, withATR, withoutATR}, 10)
	got := Nearest(feats, "target", 2, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(got))
	}
	if got[0].TradeID != "with" {
		t.Fatalf("trade with matching ATR presence must rank first, got %v", got)
	}
	if got[0].Distance != 0 {
		t.Fatalf("identical trade distance = %v, want 0", got[0].Distance)
	}
	// the ATR-less twin differs only by defaulted slots plus penalties
	diffRisk := 0.5 - 0.0
	diffReward := 1.0 - 0.0
	want := math.Sqrt(1.2*diffRisk*diffRisk + 1.2*diffReward*diffReward + 2.0 + 2.0)
	if math.Abs(got[1].Distance-want) > 1e-9 {
		t.Fatalf("penalized distance = %v, want %v", got[1].Distance, want)
	}
}

func TestNearestUnknownTargetAndExclusion(t *testing.T) {
	feats, _ := Extract([]models.TradeSample{sample("a"), sample("b")}, 10)
	if got := Nearest(feats, "missing", 5, nil); len(got) != 0 {
		t.Fatalf("unknown target: expected empty, got %v", got)
	}
	got := Nearest(feats, "a", 5, nil)
	if len(got) != 1 || got[0].TradeID != "b" {
		t.Fatalf("target must be excluded, got %v", got)
	}
}

func TestNearestStableOrderAndK(t *testing.T) {
	samples := []models.TradeSample{sample("t"), sample("n1"), sample("n2"), sample("n3")}
	feats, _ := Extract(samples, 10)
	got := Nearest(feats, "t", 2, nil)
	if len(got) != 2 {
		t.Fatalf("k=2: got %d", len(got))
	}
	// all distances tie at 0; stable sort keeps input order
	if got[0].TradeID != "n1" || got[1].TradeID != "n2" {
		t.Fatalf("tie-break must keep iteration order, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	a := sample("a")
	a.ResultR = fp(1.5)
	b := sample("b")
	b.ResultR = fp(-1)
	c := sample("c")
	trades := []models.TradeSample{a, b, c}
	feats, _ := Extract(trades, 10)

	s := Summarize(feats, trades)
	if s.N != 3 {
		t.Fatalf("n = %d, want 3", s.N)
	}
	if s.Wins != 1 || s.Losses != 1 {
		t.Fatalf("wins/losses = %d/%d, want 1/1", s.Wins, s.Losses)
	}
	if s.WinRate == nil || *s.WinRate != 0.5 {
		t.Fatalf("winrate = %v, want 0.5", s.WinRate)
	}
	if s.ResultRMean == nil || *s.ResultRMean != 0.25 {
		t.Fatalf("result mean = %v, want 0.25", s.ResultRMean)
	}
	if s.RRMedian == nil || *s.RRMedian != 2 {
		t.Fatalf("rr median = %v, want 2", s.RRMedian)
	}
	if s.RiskATRMedian != nil {
		t.Fatalf("no ATR data: risk median must be absent, got %v", *s.RiskATRMedian)
	}

	empty := Summarize(nil, nil)
	if empty.N != 0 || empty.RRMedian != nil {
		t.Fatalf("empty summary wrong: %+v", empty)
	}
}
