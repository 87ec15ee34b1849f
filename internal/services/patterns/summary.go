package patterns

import (
	"sort"

	"GoldDesk/internal/domain/models"
)

// Summary aggregates the journal's feature population for reporting.
// Pointer fields are absent when no underlying data existed.
type Summary struct {
	N               int      `json:"n"`
	RRMedian        *float64 `json:"rr_median,omitempty"`
	RiskATRMedian   *float64 `json:"risk_atr_median,omitempty"`
	RewardATRMedian *float64 `json:"reward_atr_median,omitempty"`
	Wins            int      `json:"wins"`
	Losses          int      `json:"losses"`
	WinRate         *float64 `json:"winrate,omitempty"`
	ResultRMean     *float64 `json:"result_r_mean,omitempty"`
}

// Summarize computes population medians over the extracted features plus
// win/loss tallies over the realized results carried by the raw samples.
func Summarize(features []models.TradeFeatures, trades []models.TradeSample) Summary {
	s := Summary{N: len(features)}
	if len(features) == 0 {
		return s
	}

	var rr, riskATR, rewardATR []float64
	for _, f := range features {
		if v := f.Vector[models.FeatRR]; v > 0 {
			rr = append(rr, v)
		}
		if f.HasRiskATR {
			riskATR = append(riskATR, f.Vector[models.FeatRiskATR])
		}
		if f.HasRewardATR {
			rewardATR = append(rewardATR, f.Vector[models.FeatRewardATR])
		}
	}
	s.RRMedian = medianPtr(rr)
	s.RiskATRMedian = medianPtr(riskATR)
	s.RewardATRMedian = medianPtr(rewardATR)

	kept := make(map[string]struct{}, len(features))
	for _, f := range features {
		kept[f.TradeID] = struct{}{}
	}
	var resultSum float64
	var resultN int
	for _, t := range trades {
		if _, ok := kept[t.TradeID]; !ok {
			continue
		}
		if t.ResultR == nil {
			continue
		}
		resultN++
		resultSum += *t.ResultR
		if *t.ResultR > 0 {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	if s.Wins+s.Losses > 0 {
		wr := float64(s.Wins) / float64(s.Wins+s.Losses)
		s.WinRate = &wr
	}
	if resultN > 0 {
		m := resultSum / float64(resultN)
		s.ResultRMean = &m
	}
	return s
}

func medianPtr(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	var m float64
	if len(s)%2 == 1 {
		m = s[mid]
	} else {
		m = (s[mid-1] + s[mid]) / 2
	}
	return &m
}
