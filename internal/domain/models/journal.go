package models

import "time"

// TradeSample is one journaled trade, read back from storage for feature
// extraction. Optional annotations stay pointers so "absent" is
// distinguishable from zero.
type TradeSample struct {
	TradeID      string    `json:"trade_id"`
	TimestampUTC time.Time `json:"timestamp_utc"`
	LocalTime    time.Time `json:"local_time"`
	Symbol       string    `json:"symbol"`
	Direction    Direction `json:"direction"`
	Timeframe    string    `json:"timeframe"`
	Entry        float64   `json:"entry"`
	Stop         float64   `json:"stop"`
	Target       float64   `json:"target"`
	LevelValue   *float64  `json:"psych_level,omitempty"`
	LevelKind    LevelKind `json:"psych_level_kind"`
	LevelStep    *float64  `json:"psych_step,omitempty"`
	Touched      bool      `json:"touched_level"`
	Rejection    bool      `json:"rejection"`
	Confirmation bool      `json:"confirmation"`
	ATR          *float64  `json:"atr,omitempty"`
	ResultR      *float64  `json:"result_r,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// FeatureDim is the fixed width of a trade feature vector.
const FeatureDim = 12

// TradeFeatures is the numeric projection of one TradeSample. The Has*
// flags record which optional inputs were present; the ranker penalizes
// presence disagreement so defaulted zeros cannot pass for similarity.
type TradeFeatures struct {
	TradeID string              `json:"trade_id"`
	Vector  [FeatureDim]float64 `json:"vector"`

	HasRiskATR   bool `json:"has_risk_atr"`
	HasRewardATR bool `json:"has_reward_atr"`
	HasLevelDist bool `json:"has_level_dist_atr"`
}

// Feature vector slot indexes, in extraction order.
const (
	FeatHour = iota
	FeatTimeframeMin
	FeatDirection
	FeatLevelKind
	FeatTouched
	FeatRejection
	FeatConfirmation
	FeatRR
	FeatRiskATR
	FeatRewardATR
	FeatEntryRoundDist
	FeatLevelDistATR
)

// Neighbor is one ranked similarity hit.
type Neighbor struct {
	TradeID  string  `json:"trade_id"`
	Distance float64 `json:"distance"`
}
