package levels

import (
	"math"
	"sort"

	"GoldDesk/internal/domain/models"
)

const (
	offsetSpan = 40 // step multiples generated on each side of the base
	maxLevels  = 20
)

// StepFor infers the rounding step from the price regime. The bands are
// domain policy for XAUUSD and are reproduced exactly, not re-derived.
func StepFor(price float64) float64 {
	switch {
	case price < 4800:
		return 50
	case price < 5000:
		return 10
	default:
		return 20
	}
}

// strengthFor grades a level by how round it is.
func strengthFor(value float64) int {
	v := math.Round(value)
	switch {
	case math.Mod(v, 100) == 0:
		return 5
	case math.Mod(v, 50) == 0:
		return 4
	case math.Mod(v, 20) == 0:
		return 3
	case math.Mod(v, 10) == 0:
		return 2
	default:
		return 1
	}
}

// Generate produces the psychological levels around reference, nearest
// first. A non-positive step means "infer from the reference price". The
// result is capped at 20 levels, sorted ascending by distance to the
// reference; ties keep offset order. Non-positive reference yields nil.
func Generate(reference, step float64) []models.PsychLevel {
	if reference <= 0 || math.IsNaN(reference) {
		return nil
	}
	if step <= 0 {
		step = StepFor(reference)
	}
	base := math.Round(reference/step) * step

	out := make([]models.PsychLevel, 0, 2*offsetSpan+1)
	for off := -offsetSpan; off <= offsetSpan; off++ {
		value := base + float64(off)*step
		if value <= 0 {
			continue
		}
		kind := models.LevelBoth
		if value < reference {
			kind = models.LevelSupport
		} else if value > reference {
			kind = models.LevelResistance
		}
		out = append(out, models.PsychLevel{
			Value:    value,
			Step:     step,
			Kind:     kind,
			Strength: strengthFor(value),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value-reference) < math.Abs(out[j].Value-reference)
	})
	if len(out) > maxLevels {
		out = out[:maxLevels]
	}
	return out
}

// NearestRound returns the closest multiple of step to price.
func NearestRound(price, step float64) float64 {
	if step <= 0 {
		return price
	}
	return math.Round(price/step) * step
}
