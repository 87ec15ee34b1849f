// Package patterns turns journaled trades into numeric feature vectors and
// ranks them by weighted similarity.
package patterns

import (
	"math"
	"strconv"
	"strings"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/services/levels"
)

// Extract maps trade samples to feature vectors. Rows with a non-positive
// entry, stop, or target are excluded and counted, never silently dropped.
// defaultStep is used for the round-distance slot when a trade carries no
// step annotation.
func Extract(trades []models.TradeSample, defaultStep float64) ([]models.TradeFeatures, int) {
	out := make([]models.TradeFeatures, 0, len(trades))
	skipped := 0
	for _, t := range trades {
		if t.Entry <= 0 || t.Stop <= 0 || t.Target <= 0 {
			skipped++
			continue
		}
		out = append(out, extractOne(t, defaultStep))
	}
	return out, skipped
}

func extractOne(t models.TradeSample, defaultStep float64) models.TradeFeatures {
	f := models.TradeFeatures{TradeID: t.TradeID}

	at := t.LocalTime
	if at.IsZero() {
		at = t.TimestampUTC
	}
	f.Vector[models.FeatHour] = float64(at.Hour())
	f.Vector[models.FeatTimeframeMin] = float64(TimeframeMinutes(t.Timeframe))

	sign := -1.0
	if t.Direction == models.DirectionBuy {
		sign = 1
	}
	f.Vector[models.FeatDirection] = sign
	f.Vector[models.FeatLevelKind] = t.LevelKind.Sign()
	f.Vector[models.FeatTouched] = boolToFloat(t.Touched)
	f.Vector[models.FeatRejection] = boolToFloat(t.Rejection)
	f.Vector[models.FeatConfirmation] = boolToFloat(t.Confirmation)

	risk := math.Abs(t.Entry - t.Stop)
	reward := math.Abs(t.Target - t.Entry)
	if risk > 0 {
		f.Vector[models.FeatRR] = reward / risk
	}

	var atr float64
	if t.ATR != nil && *t.ATR > 0 {
		atr = *t.ATR
		f.Vector[models.FeatRiskATR] = risk / atr
		f.Vector[models.FeatRewardATR] = reward / atr
		f.HasRiskATR = true
		f.HasRewardATR = true
	}

	step := defaultStep
	if t.LevelStep != nil && *t.LevelStep > 0 {
		step = *t.LevelStep
	}
	if step > 0 {
		f.Vector[models.FeatEntryRoundDist] = math.Abs(t.Entry - levels.NearestRound(t.Entry, step))
	}

	if t.LevelValue != nil && *t.LevelValue > 0 && atr > 0 {
		f.Vector[models.FeatLevelDistATR] = math.Abs(t.Entry-*t.LevelValue) / atr
		f.HasLevelDist = true
	}
	return f
}

// TimeframeMinutes converts a chart timeframe label to minutes. Unknown
// labels fall back to 5 (the house default chart).
func TimeframeMinutes(tf string) int {
	tf = strings.ToUpper(strings.TrimSpace(tf))
	if tf == "" {
		return 5
	}
	if n, err := strconv.Atoi(tf); err == nil && n > 0 {
		return n
	}
	unit := tf[0]
	n, err := strconv.Atoi(tf[1:])
	if err != nil || n <= 0 {
		return 5
	}
	switch unit {
	case 'M':
		return n
	case 'H':
		return n * 60
	case 'D':
		return n * 1440
	case 'W':
		return n * 10080
	default:
		return 5
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
