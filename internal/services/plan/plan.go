// Package plan builds a heuristic entry/stop/target proposal from the
// Asia-open daily history. It is a deterministic suggestion layer, not
// financial advice, and never the Signal Engine's concern.
package plan

import (
	"fmt"
	"math"
	"sort"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/services/levels"
)

// Params carries the policy knobs for one plan. Thresholds are tuned domain
// policy with the documented defaults; Normalize fills zero values.
type Params struct {
	Reference    float64
	Step         float64
	Proximity    float64 // distance that counts as "near" a round number
	MinRR        float64
	Balance      float64 // 0 disables sizing
	RiskPercent  float64 // 0 disables sizing
	ContractSize float64

	CohortMin   int     // round-number cohort size needed for the win-rate vote
	WinRateBuy  float64 // cohort win rate at or above which the bias is long
	WinRateSell float64 // cohort win rate at or below which the bias is short
	MeanBias    float64 // fallback mean close-direction threshold
	MinStopPts  float64 // absolute floor on the stop distance
}

func (p *Params) Normalize() {
	if p.Step <= 0 {
		p.Step = 10
	}
	if p.Proximity <= 0 {
		p.Proximity = 1.5
	}
	if p.MinRR <= 0 {
		p.MinRR = 2
	}
	if p.ContractSize <= 0 {
		p.ContractSize = 100
	}
	if p.CohortMin <= 0 {
		p.CohortMin = 80
	}
	if p.WinRateBuy <= 0 {
		p.WinRateBuy = 0.55
	}
	if p.WinRateSell <= 0 {
		p.WinRateSell = 0.45
	}
	if p.MeanBias <= 0 {
		p.MeanBias = 0.05
	}
	if p.MinStopPts <= 0 {
		p.MinStopPts = 0.5
	}
}

// Build produces one EntryPlan from the daily snapshot history. History
// order matters only for the current-ATR pick, which takes the last
// positive ATR14 in the given order (callers pass rows ascending by date).
// An empty history yields the neutral degenerate plan, not an error.
func Build(history []models.DailySnapshot, p Params) models.EntryPlan {
	p.Normalize()
	if len(history) == 0 {
		return models.EntryPlan{
			Direction:  models.DirectionNeutral,
			Entry:      p.Reference,
			Stop:       p.Reference,
			TakeProfit: p.Reference,
			RR:         0,
			Notes:      []string{"No stored history to compute patterns from."},
			Stats:      map[string]float64{},
		}
	}

	notes := make([]string, 0, 4)

	rowsH1 := make([]models.DailySnapshot, 0, len(history))
	for _, r := range history {
		if r.Open > 0 && r.HasH1() {
			rowsH1 = append(rowsH1, r)
		}
	}
	if len(rowsH1) < 50 {
		notes = append(notes, "Few rows with H1 aggregates; statistics are weak.")
	}

	var upMoves, downMoves, upMovesATR, downMovesATR []float64
	var closeDirSum, closeDirN float64
	for _, r := range rowsH1 {
		up := *r.H1High - r.Open
		down := r.Open - *r.H1Low
		upMoves = append(upMoves, up)
		downMoves = append(downMoves, down)
		if r.ATR14 != nil && *r.ATR14 > 0 {
			upMovesATR = append(upMovesATR, up / *r.ATR14)
			downMovesATR = append(downMovesATR, down / *r.ATR14)
		}
		if *r.H1Close > r.Open {
			closeDirSum++
		} else {
			closeDirSum--
		}
		closeDirN++
	}

	medUp, hasMedUp := median(upMoves)
	medDown, hasMedDown := median(downMoves)
	medUpATR, hasMedUpATR := median(upMovesATR)
	medDownATR, hasMedDownATR := median(downMovesATR)

	// Most recent positive ATR marks the current volatility regime.
	currentATR := 0.0
	hasATR := false
	for _, r := range history {
		if r.ATR14 != nil && *r.ATR14 > 0 {
			currentATR = *r.ATR14
			hasATR = true
		}
	}
	if !hasATR && len(rowsH1) > 0 {
		switch {
		case hasMedUp && hasMedDown:
			currentATR, hasATR = math.Max(medUp, medDown)*2, true
		case hasMedUp:
			currentATR, hasATR = medUp*2, true
		case hasMedDown:
			currentATR, hasATR = medDown*2, true
		}
	}

	nearest := levels.NearestRound(p.Reference, p.Step)
	nearRound := math.Abs(p.Reference-nearest) <= p.Proximity

	// Round-number bias cohort: days opening near a round step multiple.
	var cohort int
	var cohortWins int
	for _, r := range rowsH1 {
		if math.Abs(r.Open-levels.NearestRound(r.Open, p.Step)) <= p.Proximity {
			cohort++
			if *r.H1Close > r.Open {
				cohortWins++
			}
		}
	}
	winRate := 0.0
	hasWinRate := cohort > 0
	if hasWinRate {
		winRate = float64(cohortWins) / float64(cohort)
	}

	direction := models.DirectionNeutral
	if hasWinRate && cohort >= p.CohortMin {
		if winRate >= p.WinRateBuy {
			direction = models.DirectionBuy
		} else if winRate <= p.WinRateSell {
			direction = models.DirectionSell
		}
	} else if closeDirN > 0 {
		// Overall close-direction fallback. The threshold here is
		// intentionally different from the cohort bands.
		overall := closeDirSum / closeDirN
		if overall >= p.MeanBias {
			direction = models.DirectionBuy
		} else if overall <= -p.MeanBias {
			direction = models.DirectionSell
		}
	}

	entry := p.Reference
	if nearRound {
		entry = nearest
		notes = append(notes, fmt.Sprintf("Entry anchored to round number %.2f", nearest))
	}

	// Stop distance preference chain: ATR-normalized adverse median, raw
	// adverse median, then a conservative default.
	var baseStop float64
	switch {
	case hasATR && hasMedUpATR && hasMedDownATR:
		norm := math.Max(medUpATR, medDownATR)
		if direction == models.DirectionBuy {
			norm = medDownATR
		} else if direction == models.DirectionSell {
			norm = medUpATR
		}
		baseStop = norm * currentATR
		notes = append(notes, "Stop from ATR14-normalized median adverse move.")
	case hasMedUp && hasMedDown:
		baseStop = math.Max(medUp, medDown)
		if direction == models.DirectionBuy {
			baseStop = medDown
		} else if direction == models.DirectionSell {
			baseStop = medUp
		}
	case hasMedUp:
		baseStop = medUp
	case hasMedDown:
		baseStop = medDown
	default:
		baseStop = math.Max(1.0, p.Step*0.1)
		notes = append(notes, "Default stop; not enough H1 history.")
	}
	stopDistance := math.Max(baseStop, p.MinStopPts)

	var stop, takeProfit float64
	switch direction {
	case models.DirectionBuy:
		stop = entry - stopDistance
		takeProfit = entry + stopDistance*p.MinRR
	case models.DirectionSell:
		stop = entry + stopDistance
		takeProfit = entry - stopDistance*p.MinRR
	default:
		// neutral still proposes a symmetric bracket
		stop = entry - stopDistance
		takeProfit = entry + stopDistance*p.MinRR
	}

	// Snap the target to a favorable round number, then re-verify the RR
	// floor; a snap that violates it is discarded.
	if direction == models.DirectionBuy {
		takeProfit = snapUp(takeProfit, p.Step)
	} else if direction == models.DirectionSell {
		takeProfit = snapDown(takeProfit, p.Step)
	}
	effectiveRR := 0.0
	if math.Abs(entry-stop) > 0 {
		effectiveRR = math.Abs(takeProfit-entry) / math.Abs(entry-stop)
	}
	if effectiveRR+1e-9 < p.MinRR {
		if direction == models.DirectionBuy {
			takeProfit = entry + stopDistance*p.MinRR
		} else if direction == models.DirectionSell {
			takeProfit = entry - stopDistance*p.MinRR
		}
		effectiveRR = p.MinRR
	}

	var lots, riskAmount *float64
	if p.Balance > 0 && p.RiskPercent > 0 {
		ra := p.Balance * p.RiskPercent / 100
		riskAmount = &ra
		if denom := stopDistance * p.ContractSize; denom > 0 {
			l := ra / denom
			lots = &l
		}
	}

	stats := map[string]float64{
		"history_rows":         float64(len(history)),
		"h1_rows":              float64(len(rowsH1)),
		"near_round_rows":      float64(cohort),
		"current_atr14":        currentATR,
		"reference_price":      p.Reference,
		"nearest_round":        nearest,
		"reference_near_round": boolToFloat(nearRound),
	}
	if hasWinRate {
		stats["near_round_long_winrate"] = winRate
	}
	if hasMedUp {
		stats["median_up_h1"] = medUp
	}
	if hasMedDown {
		stats["median_down_h1"] = medDown
	}
	if hasMedUpATR {
		stats["median_up_h1_atr"] = medUpATR
	}
	if hasMedDownATR {
		stats["median_down_h1_atr"] = medDownATR
	}

	if direction == models.DirectionNeutral {
		notes = append(notes, "Neutral bias; treat as checklist, not as a trigger.")
	} else {
		notes = append(notes, "Plan generated heuristically from stored history.")
	}
	if hasATR && currentATR > 0 {
		notes = append(notes, fmt.Sprintf("ATR14 context: stop distance = %.2f ATR.", stopDistance/currentATR))
	}

	return models.EntryPlan{
		Direction:    direction,
		Entry:        entry,
		Stop:         stop,
		TakeProfit:   takeProfit,
		RR:           effectiveRR,
		StopDistance: stopDistance,
		Lots:         lots,
		RiskAmount:   riskAmount,
		Notes:        notes,
		Stats:        stats,
	}
}

// snapUp rounds price up to the next step multiple; exact multiples stay.
func snapUp(price, step float64) float64 {
	if step <= 0 {
		return price
	}
	k := price / step
	t := math.Trunc(k)
	if k == t {
		return t * step
	}
	return (t + 1) * step
}

// snapDown truncates price to the previous step multiple.
func snapDown(price, step float64) float64 {
	if step <= 0 {
		return price
	}
	return math.Trunc(price/step) * step
}

// median returns the middle value with the conventional even-length mean.
// The second return reports whether the input had any values.
func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], true
	}
	return (s[mid-1] + s[mid]) / 2, true
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
