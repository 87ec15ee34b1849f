package models

import (
	"fmt"
	"math"
	"time"
)

// Candle is a single OHLC record. Produced by the market-data collaborator,
// immutable once built.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Validate rejects malformed candles at the boundary: NaN or non-positive
// prices, or a high below the low. A bad candle fails its own computation,
// never the batch.
func (c Candle) Validate() error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("candle %s: non-finite price", c.Time.Format(time.RFC3339))
		}
		if v <= 0 {
			return fmt.Errorf("candle %s: non-positive price %.4f", c.Time.Format(time.RFC3339), v)
		}
	}
	if c.High < c.Low {
		return fmt.Errorf("candle %s: high %.4f below low %.4f", c.Time.Format(time.RFC3339), c.High, c.Low)
	}
	if c.High < math.Max(c.Open, c.Close) || c.Low > math.Min(c.Open, c.Close) {
		return fmt.Errorf("candle %s: body outside high/low range", c.Time.Format(time.RFC3339))
	}
	return nil
}

// Body wick helpers used by the rejection detector.

func (c Candle) LowerWick() float64 { return math.Min(c.Open, c.Close) - c.Low }
func (c Candle) UpperWick() float64 { return c.High - math.Max(c.Open, c.Close) }

// DailySnapshot is one day of XAUUSD Asia-open data. TradeDate is the unique
// key ("2006-01-02"). The 1-hour and 3-hour aggregates and ATR14 are optional;
// zero pointers mean the ingestion did not have enough candles for them.
type DailySnapshot struct {
	TradeDate string   `json:"trade_date"`
	OpenTime  string   `json:"open_time_local,omitempty"`
	Open      float64  `json:"open_price"`
	H1High    *float64 `json:"h1_high,omitempty"`
	H1Low     *float64 `json:"h1_low,omitempty"`
	H1Close   *float64 `json:"h1_close,omitempty"`
	H3High    *float64 `json:"h3_high,omitempty"`
	H3Low     *float64 `json:"h3_low,omitempty"`
	H3Close   *float64 `json:"h3_close,omitempty"`
	ATR14     *float64 `json:"atr14,omitempty"`
	Source    string   `json:"source,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// HasH1 reports whether the 1-hour post-open aggregates are complete. The
// plan builder restricts its statistics pass to such rows.
func (s DailySnapshot) HasH1() bool {
	return s.H1High != nil && s.H1Low != nil && s.H1Close != nil
}

// PsychLevel is a generated round-number price level. Not persisted.
type PsychLevel struct {
	Value    float64   `json:"value"`
	Step     float64   `json:"step"`
	Kind     LevelKind `json:"kind"`
	Strength int       `json:"strength"`
}

// Signal is the output of one successful engine tick. Immutable once
// returned; persisting it is the caller's business.
type Signal struct {
	Direction Direction `json:"direction"`
	Entry     float64   `json:"entry"`
	Stop      float64   `json:"stop"`
	Targets   []float64 `json:"targets"`
	Level     float64   `json:"level"`
	Rejection float64   `json:"rejection_strength"`
	Risk      float64   `json:"risk_points"`
	Window    string    `json:"window"`
	IssuedAt  time.Time `json:"issued_at"`
}

// EntryPlan is the batch heuristic output: one direction/entry/stop/target
// proposal plus the statistics that produced it.
type EntryPlan struct {
	Direction    Direction          `json:"direction"`
	Entry        float64            `json:"entry"`
	Stop         float64            `json:"stop"`
	TakeProfit   float64            `json:"take_profit"`
	RR           float64            `json:"rr"`
	StopDistance float64            `json:"stop_distance"`
	Lots         *float64           `json:"lots,omitempty"`
	RiskAmount   *float64           `json:"risk_amount,omitempty"`
	Notes        []string           `json:"notes"`
	Stats        map[string]float64 `json:"stats"`
}
