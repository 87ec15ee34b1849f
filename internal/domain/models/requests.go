package models

// Requests for the HTTP endpoints. Defined in domain for consistency and
// reuse; binding, defaults, and validation happen in pkg/http.

type AnalyzeRequest struct {
	Price      float64 `json:"price" validate:"required,gt=0"`
	Candle     Candle  `json:"candle" validate:"required"`
	RecentHigh float64 `json:"recent_high" validate:"required,gt=0"`
	RecentLow  float64 `json:"recent_low" validate:"required,gt=0"`
	At         string  `json:"at"`      // RFC3339; empty means now
	DayKey     string  `json:"day_key"` // empty means derived from At
	Force      string  `json:"force" validate:"omitempty,oneof=BUY SELL buy sell"`
	Step       float64 `json:"step" validate:"gte=0"`
}

type PlanRequest struct {
	Reference    float64 `query:"reference" json:"reference" validate:"required,gt=0"`
	Step         float64 `query:"step" json:"step" default:"10" validate:"gt=0"`
	Proximity    float64 `query:"proximity" json:"proximity" default:"1.5" validate:"gt=0"`
	MinRR        float64 `query:"min_rr" json:"min_rr" default:"2" validate:"gte=0.5,lte=10"`
	Balance      float64 `query:"balance" json:"balance" validate:"gte=0"`
	RiskPercent  float64 `query:"risk_percent" json:"risk_percent" validate:"gte=0,lte=100"`
	ContractSize float64 `query:"contract_size" json:"contract_size" default:"100" validate:"gt=0"`
	Days         int     `query:"days" json:"days" default:"365" validate:"gte=30,lte=3650"`
}

type SimilarRequest struct {
	TradeID     string  `query:"trade_id" json:"trade_id" validate:"required"`
	K           int     `query:"k" json:"k" default:"8" validate:"gte=1,lte=100"`
	DefaultStep float64 `query:"default_step" json:"default_step" default:"10" validate:"gt=0"`
	AsiaOnly    bool    `query:"asia_only" json:"asia_only"`
}

type KillzoneStatusRequest struct {
	At string `query:"at" json:"at"` // RFC3339; empty means now
}

type UpsertTradeRequest struct {
	TradeID      string   `json:"trade_id" validate:"required"`
	TimestampUTC string   `json:"timestamp_utc" validate:"required"`
	LocalTime    string   `json:"local_time"`
	Symbol       string   `json:"symbol" default:"XAUUSD"`
	Direction    string   `json:"direction" validate:"required,oneof=BUY SELL LONG SHORT buy sell long short"`
	Timeframe    string   `json:"timeframe" default:"M5"`
	Entry        float64  `json:"entry" validate:"required,gt=0"`
	Stop         float64  `json:"stop" validate:"required,gt=0"`
	Target       float64  `json:"target" validate:"required,gt=0"`
	LevelValue   *float64 `json:"psych_level" validate:"omitempty,gt=0"`
	LevelKind    string   `json:"psych_level_kind" validate:"omitempty,oneof=support resistance both"`
	LevelStep    *float64 `json:"psych_step" validate:"omitempty,gt=0"`
	Touched      bool     `json:"touched_level"`
	Rejection    bool     `json:"rejection"`
	Confirmation bool     `json:"confirmation"`
	ATR          *float64 `json:"atr" validate:"omitempty,gt=0"`
	ResultR      *float64 `json:"result_r"`
	Notes        string   `json:"notes"`
}

type ListTradesRequest struct {
	Limit int `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=2000"`
}

type RebuildRequest struct {
	Years      int    `json:"years" default:"5" validate:"gte=1,lte=20"`
	AnchorTime string `json:"anchor_time" default:"23:00" validate:"required"`
	UseUTC     bool   `json:"use_utc"`
}

type CandlesRequest struct {
	From  string `query:"from" json:"from" validate:"required"`
	To    string `query:"to" json:"to" validate:"required"`
	Limit int    `query:"limit" json:"limit" default:"5000" validate:"gte=1,lte=100000"`
}
