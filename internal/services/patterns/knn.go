package patterns

import (
	"math"
	"sort"

	"GoldDesk/internal/domain/models"
)

// DefaultWeights emphasize RR, ATR-normalized risk/reward, and level
// distance over the categorical flags. One weight per feature slot.
func DefaultWeights() [models.FeatureDim]float64 {
	return [models.FeatureDim]float64{0.6, 0.2, 0.6, 0.5, 0.3, 0.3, 0.3, 0.8, 1.2, 1.2, 0.4, 1.0}
}

// Presence penalties: when exactly one of target/candidate carries a real
// ATR-dependent value while the other defaulted to 0, absence of data must
// not read as similarity.
const (
	penaltyRiskATR   = 2.0
	penaltyRewardATR = 2.0
	penaltyLevelDist = 1.0
)

// Nearest ranks every other trade by weighted Euclidean distance to the
// target, ascending, and returns the k closest. Ties keep the input
// iteration order. An unknown target id yields an empty result.
func Nearest(features []models.TradeFeatures, targetID string, k int, weights *[models.FeatureDim]float64) []models.Neighbor {
	if k <= 0 {
		return nil
	}
	w := DefaultWeights()
	if weights != nil {
		w = *weights
	}

	var target *models.TradeFeatures
	for i := range features {
		if features[i].TradeID == targetID {
			target = &features[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	out := make([]models.Neighbor, 0, len(features))
	for i := range features {
		f := &features[i]
		if f.TradeID == targetID {
			continue
		}
		d2 := 0.0
		for j := 0; j < models.FeatureDim; j++ {
			diff := target.Vector[j] - f.Vector[j]
			d2 += w[j] * diff * diff
		}
		if target.HasRiskATR != f.HasRiskATR {
			d2 += penaltyRiskATR
		}
		if target.HasRewardATR != f.HasRewardATR {
			d2 += penaltyRewardATR
		}
		if target.HasLevelDist != f.HasLevelDist {
			d2 += penaltyLevelDist
		}
		out = append(out, models.Neighbor{TradeID: f.TradeID, Distance: math.Sqrt(d2)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out
}
