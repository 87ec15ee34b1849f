package killzone

import (
	"fmt"
	"math"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/services/levels"
)

// EngineConfig carries the signal policy constants. These are tuned policy,
// not derived values; defaults come from DefaultEngineConfig and must reach
// here through configuration, never as silent literals.
type EngineConfig struct {
	StopMin        float64 // structural stop offset below/above the level
	StopMax        float64 // widest permitted risk in price units
	TightStopLimit float64 // candidates with risk below this are rejected
	TargetCount    int
	MinWick        float64
	TouchTolerance float64
	MinRejection   float64
	ScanLevels     int // nearest levels considered per tick
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		StopMin:        35,
		StopMax:        65,
		TightStopLimit: 10,
		TargetCount:    4,
		MinWick:        2.0,
		TouchTolerance: 0.5,
		MinRejection:   1.5,
		ScanLevels:     5,
	}
}

// Tick is one engine invocation: the live price, a representative candle,
// the recent swing extremes, and the evaluation instant. Force and Step are
// optional caller overrides.
type Tick struct {
	Price      float64
	Candle     models.Candle
	RecentHigh float64
	RecentLow  float64
	At         time.Time
	DayKey     string // empty derives from At in the trading location
	Force      models.Direction
	Step       float64 // 0 infers from price
}

// Engine is the per-tick decision function. All of its collaborators are
// pure; the only mutation is window quota accounting on the StateMachine.
type Engine struct {
	cfg   EngineConfig
	state *StateMachine
}

func NewEngine(cfg EngineConfig, state *StateMachine) *Engine {
	if cfg.TargetCount <= 0 {
		cfg.TargetCount = 4
	}
	if cfg.ScanLevels <= 0 {
		cfg.ScanLevels = 5
	}
	return &Engine{cfg: cfg, state: state}
}

func (e *Engine) State() *StateMachine { return e.state }

func (e *Engine) Config() EngineConfig { return e.cfg }

// Analyze runs one tick. A nil signal with nil error is the normal "no
// setup" outcome; errors are reserved for malformed input.
//
// The scan is first-match, not best-match: levels by proximity, then
// directions in declaration order. That tie-break is intentional policy and
// must not be replaced by a strength sort.
func (e *Engine) Analyze(t Tick) (*models.Signal, error) {
	if t.Price <= 0 || math.IsNaN(t.Price) {
		return nil, fmt.Errorf("analyze: non-positive price %v", t.Price)
	}
	if err := t.Candle.Validate(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	label, windowDir, ok := e.state.ActiveWindow(t.At)
	if !ok {
		return nil, nil
	}
	dayKey := t.DayKey
	if dayKey == "" {
		dayKey = e.state.DayKey(t.At)
	}
	if !e.state.Allow(dayKey, label) {
		return nil, nil
	}

	directions := expandDirections(t.Force, windowDir)
	if len(directions) == 0 {
		return nil, nil
	}

	lvls := levels.Generate(t.Price, t.Step)
	if len(lvls) > e.cfg.ScanLevels {
		lvls = lvls[:e.cfg.ScanLevels]
	}
	for _, lvl := range lvls {
		for _, dir := range directions {
			rej := levels.Detect(t.Candle, lvl.Value, dir, e.cfg.MinWick, e.cfg.TouchTolerance)
			if !rej.Rejected || rej.Strength < e.cfg.MinRejection {
				continue
			}
			stop, risk, ok := e.structuralStop(t, lvl.Value, dir)
			if !ok {
				continue
			}
			targets := e.targets(t.Price, lvl.Step, dir)
			if len(targets) == 0 {
				continue
			}
			if !e.state.Issue(dayKey, label) {
				return nil, nil
			}
			return &models.Signal{
				Direction: dir,
				Entry:     round2(t.Price),
				Stop:      round2(stop),
				Targets:   targets,
				Level:     round2(lvl.Value),
				Rejection: rej.Strength,
				Risk:      round2(risk),
				Window:    label,
				IssuedAt:  t.At,
			}, nil
		}
	}
	return nil, nil
}

// structuralStop places the stop beyond both the recent swing and the
// level band, then clamps the risk. Risk below the tight limit rejects the
// candidate outright; risk above the maximum widens the stop to the cap.
func (e *Engine) structuralStop(t Tick, level float64, dir models.Direction) (stop, risk float64, ok bool) {
	switch dir {
	case models.DirectionBuy:
		stop = math.Min(t.RecentLow-2, level-e.cfg.StopMin)
	case models.DirectionSell:
		stop = math.Max(t.RecentHigh+2, level+e.cfg.StopMin)
	default:
		return 0, 0, false
	}
	risk = math.Abs(t.Price - stop)
	if risk < e.cfg.TightStopLimit {
		return 0, 0, false
	}
	if risk > e.cfg.StopMax {
		risk = e.cfg.StopMax
		if dir == models.DirectionBuy {
			stop = t.Price - e.cfg.StopMax
		} else {
			stop = t.Price + e.cfg.StopMax
		}
	}
	return stop, risk, true
}

// targets walks round-number multiples away from the entry on the favorable
// side, nearest first, discarding any on the wrong side.
func (e *Engine) targets(price, step float64, dir models.Direction) []float64 {
	if step <= 0 {
		step = levels.StepFor(price)
	}
	base := levels.NearestRound(price, step)
	out := make([]float64, 0, e.cfg.TargetCount)
	for i := 1; len(out) < e.cfg.TargetCount && i <= e.cfg.TargetCount; i++ {
		var candidate float64
		if dir == models.DirectionBuy {
			candidate = base + float64(i)*step
			if candidate <= price {
				continue
			}
		} else {
			candidate = base - float64(i)*step
			if candidate >= price {
				continue
			}
		}
		out = append(out, round2(candidate))
	}
	return out
}

// expandDirections resolves the candidate direction set: a valid forced
// direction wins, otherwise the window bias, with "both" expanding to buy
// then sell in that declaration order.
func expandDirections(force, windowDir models.Direction) []models.Direction {
	dir := windowDir
	if force == models.DirectionBuy || force == models.DirectionSell {
		dir = force
	}
	switch dir {
	case models.DirectionBuy:
		return []models.Direction{models.DirectionBuy}
	case models.DirectionSell:
		return []models.Direction{models.DirectionSell}
	case models.DirectionBoth:
		return []models.Direction{models.DirectionBuy, models.DirectionSell}
	default:
		return nil
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
