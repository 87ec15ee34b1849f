package plan

import (
	"math"
	"strings"
	"testing"

	"GoldDesk/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

// snapshotRow builds one H1-complete row opening at open with the given
// post-open extremes.
func snapshotRow(date string, open, h1High, h1Low, h1Close float64, atr *float64) models.DailySnapshot {
	return models.DailySnapshot{
		TradeDate: date,
		Open:      open,
		H1High:    fp(h1High),
		H1Low:     fp(h1Low),
		H1Close:   fp(h1Close),
		ATR14:     atr,
	}
}

func TestBuildEmptyHistory(t *testing.T) {
	p := Build(nil, Params{Reference: 2000, MinRR: 2})
	if p.Direction != models.DirectionNeutral {
		t.Fatalf("direction = %v, want neutral", p.Direction)
	}
	if p.Entry != 2000 || p.Stop != 2000 || p.TakeProfit != 2000 {
		t.Fatalf("expected plan centered on reference, got %+v", p)
	}
	if p.RR != 0 {
		t.Fatalf("rr = %v, want 0", p.RR)
	}
	if len(p.Notes) == 0 {
		t.Fatal("expected explanatory note")
	}
	if len(p.Stats) != 0 {
		t.Fatalf("stats = %v, want empty", p.Stats)
	}
}

func TestBuildCohortLongBias(t *testing.T) {
	var history []models.DailySnapshot
	for i := 0; i < 100; i++ {
		closeUp := 2003.0
		if i%5 == 0 { // 20 losers, win rate 0.8
			closeUp = 1999.0
		}
		history = append(history, snapshotRow("2025-01-01", 2000, 2005, 1997, closeUp, nil))
	}
	p := Build(history, Params{Reference: 2005, Step: 10, Proximity: 1.5, MinRR: 2})
	if p.Direction != models.DirectionBuy {
		t.Fatalf("direction = %v, want buy (cohort win rate 0.8)", p.Direction)
	}
	if p.Entry != 2005 {
		t.Fatalf("entry = %v, want raw reference (2005 not near round)", p.Entry)
	}
	// adverse median for a long is the down move: 2000-1997 = 3
	if p.StopDistance != 3 {
		t.Fatalf("stop distance = %v, want 3", p.StopDistance)
	}
	if p.Stop != 2002 {
		t.Fatalf("stop = %v, want 2002", p.Stop)
	}
	// tp pre-snap 2011, snapped up to 2020, rr 5 still above the floor
	if p.TakeProfit != 2020 {
		t.Fatalf("take profit = %v, want 2020", p.TakeProfit)
	}
	if p.RR < 2 {
		t.Fatalf("rr = %v below floor", p.RR)
	}
	if p.Stats["near_round_rows"] != 100 {
		t.Fatalf("cohort size = %v, want 100", p.Stats["near_round_rows"])
	}
}

func TestBuildCohortShortBias(t *testing.T) {
	var history []models.DailySnapshot
	for i := 0; i < 90; i++ {
		closeAt := 1998.0
		if i%5 == 0 { // win rate 0.2
			closeAt = 2002.0
		}
		history = append(history, snapshotRow("2025-01-01", 2000, 2004, 1995, closeAt, nil))
	}
	p := Build(history, Params{Reference: 2000.5, Step: 10, Proximity: 1.5, MinRR: 2})
	if p.Direction != models.DirectionSell {
		t.Fatalf("direction = %v, want sell", p.Direction)
	}
	// reference near round: entry snapped to 2000
	if p.Entry != 2000 {
		t.Fatalf("entry = %v, want snapped 2000", p.Entry)
	}
	if p.Stop <= p.Entry {
		t.Fatalf("short stop %v must sit above entry %v", p.Stop, p.Entry)
	}
	if p.TakeProfit >= p.Entry {
		t.Fatalf("short target %v must sit below entry %v", p.TakeProfit, p.Entry)
	}
}

func TestBuildFallbackMeanClose(t *testing.T) {
	// opens far from round numbers keep the cohort empty
	var history []models.DailySnapshot
	for i := 0; i < 60; i++ {
		history = append(history, snapshotRow("2025-01-01", 2005, 2010, 2002, 2008, nil))
	}
	p := Build(history, Params{Reference: 2005, Step: 10, Proximity: 1.5, MinRR: 2})
	if p.Direction != models.DirectionBuy {
		t.Fatalf("direction = %v, want buy from mean close fallback", p.Direction)
	}

	// balanced closes land inside the neutral band
	var flat []models.DailySnapshot
	for i := 0; i < 60; i++ {
		c := 2008.0
		if i%2 == 0 {
			c = 2002.0
		}
		flat = append(flat, snapshotRow("2025-01-01", 2005, 2010, 2002, c, nil))
	}
	p = Build(flat, Params{Reference: 2005, Step: 10, Proximity: 1.5, MinRR: 2})
	if p.Direction != models.DirectionNeutral {
		t.Fatalf("direction = %v, want neutral for balanced closes", p.Direction)
	}
}

func TestBuildATRNormalizedStop(t *testing.T) {
	var history []models.DailySnapshot
	for i := 0; i < 60; i++ {
		history = append(history, snapshotRow("2025-01-01", 2005, 2011, 2001, 2009, fp(8)))
	}
	history = append(history, snapshotRow("2025-01-02", 2005, 2011, 2001, 2009, fp(12)))
	p := Build(history, Params{Reference: 2005, Step: 10, Proximity: 1.5, MinRR: 2})
	if p.Stats["current_atr14"] != 12 {
		t.Fatalf("current atr = %v, want last positive 12", p.Stats["current_atr14"])
	}
	// buy bias; adverse median normalized = 4/8 = 0.5; stop = 0.5 * 12 = 6
	if p.Direction != models.DirectionBuy {
		t.Fatalf("direction = %v, want buy", p.Direction)
	}
	if math.Abs(p.StopDistance-6) > 1e-9 {
		t.Fatalf("stop distance = %v, want 6", p.StopDistance)
	}
	found := false
	for _, n := range p.Notes {
		if strings.Contains(n, "ATR14-normalized") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ATR stop note, got %v", p.Notes)
	}
}

func TestBuildRRFloorHolds(t *testing.T) {
	refs := []float64{1712.3, 2000, 2004.9, 2503.77, 3333}
	var history []models.DailySnapshot
	for i := 0; i < 120; i++ {
		atr := fp(float64(5 + i%7))
		history = append(history, snapshotRow("2025-01-01", 2000+float64(i%3), 2006, 1996.5, 2001, atr))
	}
	for _, ref := range refs {
		p := Build(history, Params{Reference: ref, Step: 10, Proximity: 1.5, MinRR: 2})
		if p.RR < 2.0-1e-6 {
			t.Fatalf("reference %v: rr = %v below floor after snapping", ref, p.RR)
		}
		if p.StopDistance > 0 {
			eff := math.Abs(p.TakeProfit-p.Entry) / math.Abs(p.Entry-p.Stop)
			if eff < 2.0-1e-6 {
				t.Fatalf("reference %v: effective rr %v below floor", ref, eff)
			}
		}
	}
}

func TestBuildSizing(t *testing.T) {
	var history []models.DailySnapshot
	for i := 0; i < 100; i++ {
		history = append(history, snapshotRow("2025-01-01", 2000, 2005, 1997, 2003, nil))
	}
	p := Build(history, Params{
		Reference: 2005, Step: 10, Proximity: 1.5, MinRR: 2,
		Balance: 10000, RiskPercent: 1, ContractSize: 100,
	})
	if p.RiskAmount == nil || *p.RiskAmount != 100 {
		t.Fatalf("risk amount = %v, want 100", p.RiskAmount)
	}
	if p.Lots == nil {
		t.Fatal("expected lot size")
	}
	want := 100.0 / (p.StopDistance * 100)
	if math.Abs(*p.Lots-want) > 1e-9 {
		t.Fatalf("lots = %v, want %v", *p.Lots, want)
	}

	// no balance/risk supplied: sizing omitted
	p = Build(history, Params{Reference: 2005, Step: 10, MinRR: 2})
	if p.Lots != nil || p.RiskAmount != nil {
		t.Fatalf("expected no sizing, got lots=%v risk=%v", p.Lots, p.RiskAmount)
	}
}

func TestSnapHelpers(t *testing.T) {
	if got := snapUp(2011, 10); got != 2020 {
		t.Fatalf("snapUp(2011) = %v", got)
	}
	if got := snapUp(2010, 10); got != 2010 {
		t.Fatalf("snapUp on exact multiple = %v, want unchanged", got)
	}
	if got := snapDown(1994, 10); got != 1990 {
		t.Fatalf("snapDown(1994) = %v", got)
	}
	if got := snapDown(1990, 10); got != 1990 {
		t.Fatalf("snapDown on exact multiple = %v, want unchanged", got)
	}
}
