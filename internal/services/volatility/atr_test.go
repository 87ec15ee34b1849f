package volatility

import (
	"math"
	"testing"
	"time"

	"GoldDesk/internal/domain/models"
)

func TestByDateConstantSeries(t *testing.T) {
	n := 20
	dates := make([]string, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		dates[i] = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02")
		high[i] = 100
		low[i] = 100
		closes[i] = 100
	}
	got := ByDate(dates, high, low, closes)
	if len(got) != n-Period+1 {
		t.Fatalf("expected %d entries, got %d", n-Period+1, len(got))
	}
	for d, v := range got {
		if v != 0 {
			t.Errorf("date %s: expected ATR 0, got %v", d, v)
		}
	}
}

func TestByDateInsufficientHistory(t *testing.T) {
	dates := []string{"2025-01-01", "2025-01-02"}
	got := ByDate(dates, []float64{10, 11}, []float64{9, 10}, []float64{9.5, 10.5})
	if len(got) != 0 {
		t.Fatalf("expected empty map for short history, got %v", got)
	}
}

func TestByDateWilderSmoothing(t *testing.T) {
	n := 16
	dates := make([]string, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		dates[i] = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02")
		high[i] = 102
		low[i] = 100
		closes[i] = 101
	}
	// bump one late true range so smoothing is exercised
	high[14] = 116 // tr = max(16, |116-101|, |100-101|) = 16
	got := ByDate(dates, high, low, closes)

	if v := got[dates[13]]; math.Abs(v-2) > 1e-9 {
		t.Fatalf("seed: expected 2, got %v", v)
	}
	want14 := (2.0*13 + 16.0) / 14
	if v := got[dates[14]]; math.Abs(v-want14) > 1e-9 {
		t.Fatalf("index 14: expected %v, got %v", want14, v)
	}
	// next close gap: prev close 101, so tr_15 = max(2, |102-101|, |100-101|) = 2
	want15 := (want14*13 + 2.0) / 14
	if v := got[dates[15]]; math.Abs(v-want15) > 1e-9 {
		t.Fatalf("index 15: expected %v, got %v", want15, v)
	}
}

func TestTrueRangesFirstDay(t *testing.T) {
	tr := TrueRanges([]float64{105, 110}, []float64{100, 104}, []float64{103, 108})
	if tr[0] != 5 {
		t.Fatalf("day 0: expected high-low 5, got %v", tr[0])
	}
	// max(110-104, |110-103|, |104-103|) = 7
	if tr[1] != 7 {
		t.Fatalf("day 1: expected 7, got %v", tr[1])
	}
}

func TestAggregateDaily(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	candles := []models.Candle{
		{Time: day.Add(1 * time.Hour), Open: 100, High: 102, Low: 99, Close: 101},
		{Time: day.Add(2 * time.Hour), Open: 101, High: 105, Low: 100, Close: 104},
		{Time: day.AddDate(0, 0, 1), Open: 104, High: 106, Low: 103, Close: 105},
		{Time: day.Add(3 * time.Hour), Open: 0, High: 1, Low: 2, Close: 1}, // malformed
	}
	bars, skipped := AggregateDaily(candles, time.UTC)
	if skipped != 1 {
		t.Fatalf("expected 1 skipped candle, got %d", skipped)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 daily bars, got %d", len(bars))
	}
	b := bars[0]
	if b.Open != 100 || b.High != 105 || b.Low != 99 || b.Close != 104 {
		t.Fatalf("unexpected first bar %+v", b)
	}
	if bars[1].Date != "2025-03-11" {
		t.Fatalf("expected ascending date order, got %+v", bars)
	}
}
