package volatility

import (
	"math"
	"sort"
	"time"

	"GoldDesk/internal/domain/models"
)

// Period is the Wilder smoothing period for the average true range.
const Period = 14

// TrueRanges computes the per-day true range series. Day 0 has no prior
// close, so its true range is high-low. Inputs must be ascending by date and
// of equal length; a nil slice is returned otherwise.
func TrueRanges(high, low, close []float64) []float64 {
	n := len(high)
	if n == 0 || len(low) != n || len(close) != n {
		return nil
	}
	out := make([]float64, n)
	out[0] = high[0] - low[0]
	for i := 1; i < n; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ByDate returns ATR(14) keyed by date label. The seed at index 13 is the
// arithmetic mean of the first 14 true ranges; later values use Wilder
// smoothing atr_i = (atr_{i-1}*13 + tr_i) / 14. Fewer than 14 days yields an
// empty map, which is a normal outcome and not an error.
func ByDate(dates []string, high, low, close []float64) map[string]float64 {
	out := make(map[string]float64)
	n := len(dates)
	if n < Period || len(high) != n || len(low) != n || len(close) != n {
		return out
	}
	tr := TrueRanges(high, low, close)

	sum := 0.0
	for i := 0; i < Period; i++ {
		sum += tr[i]
	}
	atr := sum / Period
	out[dates[Period-1]] = atr
	for i := Period; i < n; i++ {
		atr = (atr*(Period-1) + tr[i]) / Period
		out[dates[i]] = atr
	}
	return out
}

// DailyBar is one rolled-up day of intraday candles.
type DailyBar struct {
	Date  string
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// AggregateDaily rolls intraday candles into per-day OHLC bars, keyed by the
// calendar date in loc. Candles failing validation are skipped; the skip
// count is returned so callers can surface it. Output is ascending by date.
func AggregateDaily(candles []models.Candle, loc *time.Location) ([]DailyBar, int) {
	if loc == nil {
		loc = time.UTC
	}
	byDate := make(map[string]*DailyBar)
	skipped := 0
	for _, c := range candles {
		if err := c.Validate(); err != nil {
			skipped++
			continue
		}
		date := c.Time.In(loc).Format("2006-01-02")
		b, ok := byDate[date]
		if !ok {
			byDate[date] = &DailyBar{Date: date, Open: c.Open, High: c.High, Low: c.Low, Close: c.Close}
			continue
		}
		if c.High > b.High {
			b.High = c.High
		}
		if c.Low < b.Low {
			b.Low = c.Low
		}
		b.Close = c.Close
	}
	out := make([]DailyBar, 0, len(byDate))
	for _, b := range byDate {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, skipped
}

// FromDailyBars is a convenience over ByDate for rolled-up bars.
func FromDailyBars(bars []DailyBar) map[string]float64 {
	dates := make([]string, len(bars))
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		dates[i] = b.Date
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
	}
	return ByDate(dates, high, low, closes)
}
