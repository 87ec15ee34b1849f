package levels

import (
	"math"

	"GoldDesk/internal/domain/models"
)

// maxRejectionStrength caps the wick ratio so one outsized candle cannot
// dominate downstream scoring.
const maxRejectionStrength = 3.0

// Rejection is the outcome of testing one candle against one level.
type Rejection struct {
	Rejected bool
	Strength float64
}

// Detect tests a candle for a wick rejection of level in the given
// direction. For a buy the low must touch within tolerance above the level
// and the lower wick must reach minWick; sells mirror with the upper wick.
// Any other direction, or a malformed candle, is no rejection. Pure
// function.
func Detect(c models.Candle, level float64, dir models.Direction, minWick, tolerance float64) Rejection {
	if c.Validate() != nil || minWick <= 0 {
		return Rejection{}
	}
	switch dir {
	case models.DirectionBuy:
		if c.Low <= level+tolerance {
			if wick := c.LowerWick(); wick >= minWick {
				return Rejection{Rejected: true, Strength: math.Min(wick/minWick, maxRejectionStrength)}
			}
		}
	case models.DirectionSell:
		if c.High >= level-tolerance {
			if wick := c.UpperWick(); wick >= minWick {
				return Rejection{Rejected: true, Strength: math.Min(wick/minWick, maxRejectionStrength)}
			}
		}
	}
	return Rejection{}
}
