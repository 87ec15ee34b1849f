package models

import "fmt"

// Direction is the trade side. A closed set: string labels only appear at
// the serialization boundary.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionBuy
	DirectionSell
	DirectionBoth
	DirectionNeutral
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "BUY"
	case DirectionSell:
		return "SELL"
	case DirectionBoth:
		return "BOTH"
	case DirectionNeutral:
		return "NEUTRAL"
	default:
		return "NONE"
	}
}

// ParseDirection maps a wire label back to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "BUY", "buy", "LONG", "long":
		return DirectionBuy, nil
	case "SELL", "sell", "SHORT", "short":
		return DirectionSell, nil
	case "BOTH", "both":
		return DirectionBoth, nil
	case "NEUTRAL", "neutral":
		return DirectionNeutral, nil
	case "", "NONE", "none":
		return DirectionNone, nil
	default:
		return DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Sign returns +1 for buy, -1 for sell, 0 otherwise. Used by feature
// extraction.
func (d Direction) Sign() float64 {
	switch d {
	case DirectionBuy:
		return 1
	case DirectionSell:
		return -1
	default:
		return 0
	}
}

// LevelKind classifies a psychological level relative to a reference price.
type LevelKind int

const (
	LevelUnknown LevelKind = iota
	LevelSupport
	LevelResistance
	LevelBoth
)

func (k LevelKind) String() string {
	switch k {
	case LevelSupport:
		return "support"
	case LevelResistance:
		return "resistance"
	case LevelBoth:
		return "both"
	default:
		return "unknown"
	}
}

func ParseLevelKind(s string) LevelKind {
	switch s {
	case "support", "SUPPORT":
		return LevelSupport
	case "resistance", "RESISTANCE":
		return LevelResistance
	case "both", "BOTH":
		return LevelBoth
	default:
		return LevelUnknown
	}
}

func (k LevelKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *LevelKind) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*k = ParseLevelKind(s)
	return nil
}

// Sign returns +1 for support, -1 for resistance, 0 otherwise.
func (k LevelKind) Sign() float64 {
	switch k {
	case LevelSupport:
		return 1
	case LevelResistance:
		return -1
	default:
		return 0
	}
}
