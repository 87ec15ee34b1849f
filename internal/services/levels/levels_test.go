package levels

import (
	"math"
	"testing"

	"GoldDesk/internal/domain/models"
)

func TestStepBands(t *testing.T) {
	cases := []struct {
		price float64
		want  float64
	}{
		{2000, 50},
		{4799.99, 50},
		{4800, 10},
		{4999.99, 10},
		{5000, 20},
		{6500, 20},
	}
	for _, c := range cases {
		if got := StepFor(c.price); got != c.want {
			t.Errorf("StepFor(%v) = %v, want %v", c.price, got, c.want)
		}
	}
}

func TestGenerateAroundReference(t *testing.T) {
	ref := 2005.0
	got := Generate(ref, 10)
	if len(got) != 20 {
		t.Fatalf("expected 20 levels, got %d", len(got))
	}
	// sorted strictly ascending by distance to the reference
	for i := 1; i < len(got); i++ {
		di := math.Abs(got[i-1].Value - ref)
		dj := math.Abs(got[i].Value - ref)
		if dj < di {
			t.Fatalf("levels not sorted by proximity at %d: %v then %v", i, got[i-1].Value, got[i].Value)
		}
	}
	var base, above *models.PsychLevel
	for i := range got {
		switch got[i].Value {
		case 2000:
			base = &got[i]
		case 2010:
			above = &got[i]
		}
	}
	if base == nil || above == nil {
		t.Fatalf("expected base 2000 and 2010 in output")
	}
	if base.Strength != 5 {
		t.Errorf("2000 strength = %d, want 5", base.Strength)
	}
	if base.Kind != models.LevelSupport {
		t.Errorf("2000 kind = %v, want support", base.Kind)
	}
	if above.Strength != 2 {
		t.Errorf("2010 strength = %d, want 2", above.Strength)
	}
	if above.Kind != models.LevelResistance {
		t.Errorf("2010 kind = %v, want resistance", above.Kind)
	}
}

func TestGenerateInferredStepAndEquality(t *testing.T) {
	got := Generate(2000, 0)
	if len(got) == 0 {
		t.Fatal("expected levels")
	}
	if got[0].Step != 50 {
		t.Fatalf("expected inferred step 50, got %v", got[0].Step)
	}
	if got[0].Value != 2000 || got[0].Kind != models.LevelBoth {
		t.Fatalf("expected reference level tagged both, got %+v", got[0])
	}
}

func TestGenerateDropsNonPositive(t *testing.T) {
	for _, l := range Generate(30, 50) {
		if l.Value <= 0 {
			t.Fatalf("non-positive level %v leaked", l.Value)
		}
	}
	if Generate(-5, 10) != nil {
		t.Fatal("expected nil for non-positive reference")
	}
}

func TestDetectBuyRejection(t *testing.T) {
	c := models.Candle{Open: 100, High: 103, Low: 95, Close: 101}
	r := Detect(c, 96, models.DirectionBuy, 2, 0.5)
	if !r.Rejected {
		t.Fatal("expected rejection: low 95 touches 96+0.5 and lower wick 5 >= 2")
	}
	if r.Strength != 2.5 {
		t.Fatalf("strength = %v, want 2.5", r.Strength)
	}
}

func TestDetectSellRejection(t *testing.T) {
	c := models.Candle{Open: 101, High: 105, Low: 97, Close: 100}
	r := Detect(c, 104.5, models.DirectionSell, 2, 0.5)
	if !r.Rejected {
		t.Fatal("expected sell rejection: high 105 >= 104.5-0.5, upper wick 4 >= 2")
	}
	if r.Strength != 2 {
		t.Fatalf("strength = %v, want 2", r.Strength)
	}
}

func TestDetectStrengthCap(t *testing.T) {
	c := models.Candle{Open: 100, High: 101, Low: 80, Close: 100.5}
	r := Detect(c, 81, models.DirectionBuy, 2, 0.5)
	if !r.Rejected || r.Strength != 3 {
		t.Fatalf("expected capped strength 3, got %+v", r)
	}
}

func TestDetectNoTouchNoWick(t *testing.T) {
	c := models.Candle{Open: 100, High: 103, Low: 99, Close: 101}
	if r := Detect(c, 90, models.DirectionBuy, 2, 0.5); r.Rejected {
		t.Fatalf("no touch: expected no rejection, got %+v", r)
	}
	shallow := models.Candle{Open: 100, High: 103, Low: 99.5, Close: 101}
	if r := Detect(shallow, 99.6, models.DirectionBuy, 2, 0.5); r.Rejected {
		t.Fatalf("wick below minimum: expected no rejection, got %+v", r)
	}
	if r := Detect(c, 96, models.DirectionBoth, 2, 0.5); r.Rejected || r.Strength != 0 {
		t.Fatalf("direction both: expected zero result, got %+v", r)
	}
}

func TestDetectMalformedCandle(t *testing.T) {
	c := models.Candle{Open: 100, High: 95, Low: 99, Close: 100}
	if r := Detect(c, 96, models.DirectionBuy, 2, 0.5); r.Rejected {
		t.Fatalf("malformed candle: expected no rejection, got %+v", r)
	}
}
