package caseopen

import (
	"math/big"
	"testing"

	"tcsgo-engine/internal/model"
)

// scriptedSource replays a fixed list of draws, reduced mod max.
type scriptedSource struct {
	draws []int64
	i     int
}

func (s *scriptedSource) Draw(max *big.Int) (*big.Int, error) {
	v := big.NewInt(s.draws[s.i%len(s.draws)])
	s.i++
	return v.Mod(v, max), nil
}

// lcgSource is a deterministic pseudo-random source for distribution tests.
type lcgSource struct {
	state uint64
}

func (s *lcgSource) Draw(max *big.Int) (*big.Int, error) {
	s.state = s.state*6364136223846793005 + 1442695040888963407
	v := new(big.Int).SetUint64(s.state >> 11)
	return v.Mod(v, max), nil
}

func twoTierDef() *model.CaseDefinition {
	return &model.CaseDefinition{
		Unit: model.Unit{Scale: 100},
		Case: model.CaseBody{
			ID:   "test-case",
			Name: "Test Case",
			Tiers: []model.CaseTier{
				{
					Name:   "common",
					Rarity: "Mil-Spec",
					Weight: 80,
					Items: []model.CaseItem{
						{ItemID: "common-item", DisplayName: "Common Item", Rarity: "Mil-Spec", Weight: 100},
					},
				},
				{
					Name:   "rare",
					Rarity: "Covert",
					Weight: 20,
					Items: []model.CaseItem{
						{ItemID: "rare-item", DisplayName: "Rare Item", Rarity: "Covert", Weight: 100},
					},
				},
			},
		},
	}
}

func TestDrawTierBoundaries(t *testing.T) {
	def := twoTierDef()

	tests := []struct {
		draw int64
		want string
	}{
		{draw: 0, want: "common"},
		{draw: 1, want: "common"},
		{draw: 79, want: "common"},
		{draw: 80, want: "rare"},
		{draw: 99, want: "rare"},
	}

	for _, tc := range tests {
		src := &scriptedSource{draws: []int64{tc.draw, 0, 0, 0}}
		res, err := Open(def, src)
		if err != nil {
			t.Fatalf("draw=%d unexpected error: %v", tc.draw, err)
		}
		if res.Tier != tc.want {
			t.Fatalf("draw=%d got tier %q want %q", tc.draw, res.Tier, tc.want)
		}
	}
}

func TestDrawTierMalformedFallsBackToFirst(t *testing.T) {
	def := twoTierDef()
	// Weights cover only 50 of the 100-unit scale; a high draw selects nothing.
	def.Case.Tiers[0].Weight = 30
	def.Case.Tiers[1].Weight = 20

	src := &scriptedSource{draws: []int64{99, 0, 0, 0}}
	res, err := Open(def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tier != "common" {
		t.Fatalf("expected fallback to first tier, got %q", res.Tier)
	}
}

func TestDrawTierNoTiers(t *testing.T) {
	def := &model.CaseDefinition{Unit: model.Unit{Scale: 100}}
	if _, err := Open(def, &scriptedSource{draws: []int64{0}}); err != ErrNoTiers {
		t.Fatalf("expected ErrNoTiers, got %v", err)
	}
}

func TestJackpotPoolGating(t *testing.T) {
	def := twoTierDef()
	def.Case.Tiers[1].Name = "gold"
	def.Case.GoldPool = &model.ItemPool{
		Items: []model.CaseItem{
			{ItemID: "knife", DisplayName: "Knife", Rarity: "Gold", Weight: 100},
		},
	}

	// Draw lands in the gold tier; the item must come from the gold pool.
	src := &scriptedSource{draws: []int64{90, 0, 0, 0}}
	res, err := Open(def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Item.ItemID != "knife" {
		t.Fatalf("expected gold pool item, got %q", res.Item.ItemID)
	}

	// With no gold pool the tier's own (non-empty) list is used.
	def.Case.GoldPool = nil
	def.Case.Tiers[1].Items = []model.CaseItem{
		{ItemID: "fallback", DisplayName: "Fallback", Rarity: "Gold", Weight: 100},
	}
	src = &scriptedSource{draws: []int64{90, 0, 0, 0}}
	res, err = Open(def, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Item.ItemID != "fallback" {
		t.Fatalf("expected tier item, got %q", res.Item.ItemID)
	}
}

func TestStatTrakGating(t *testing.T) {
	def := twoTierDef()
	def.Case.Tiers[0].Items[0].StatTrakWeights = &model.StatTrakWeights{StatTrak: 10, Normal: 90}

	// Case does not support StatTrak: always false even for eligible items.
	def.Case.SupportsStatTrak = false
	res, err := Open(def, &scriptedSource{draws: []int64{0, 0, 0, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatTrak {
		t.Fatal("StatTrak rolled on a case without StatTrak support")
	}

	// Supported case, draw below the StatTrak weight → StatTrak.
	def.Case.SupportsStatTrak = true
	res, err = Open(def, &scriptedSource{draws: []int64{0, 0, 9, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.StatTrak {
		t.Fatal("expected StatTrak for draw below weight")
	}

	// Draw at the weight boundary → not StatTrak.
	res, err = Open(def, &scriptedSource{draws: []int64{0, 0, 10, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatTrak {
		t.Fatal("expected non-StatTrak for draw at weight")
	}

	// Both weights zero → never StatTrak.
	def.Case.Tiers[0].Items[0].StatTrakWeights = &model.StatTrakWeights{}
	res, err = Open(def, &scriptedSource{draws: []int64{0, 0, 0, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatTrak {
		t.Fatal("StatTrak rolled with zero weights")
	}

	// Ineligible item → never StatTrak.
	def.Case.Tiers[0].Items[0].StatTrakWeights = nil
	res, err = Open(def, &scriptedSource{draws: []int64{0, 0, 0, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatTrak {
		t.Fatal("StatTrak rolled on an ineligible item")
	}
}

func TestDrawWearBuckets(t *testing.T) {
	tests := []struct {
		draw int64
		want model.Wear
	}{
		{draw: 0, want: model.FactoryNew},
		{draw: 1000, want: model.FactoryNew},
		{draw: 1001, want: model.MinimalWear},
		{draw: 3500, want: model.MinimalWear},
		{draw: 3501, want: model.FieldTested},
		{draw: 7500, want: model.FieldTested},
		{draw: 7501, want: model.WellWorn},
		{draw: 9000, want: model.WellWorn},
		{draw: 9001, want: model.BattleScarred},
		{draw: 9999, want: model.BattleScarred},
	}

	for _, tc := range tests {
		src := &scriptedSource{draws: []int64{tc.draw}}
		wear, err := DrawWear(src)
		if err != nil {
			t.Fatalf("draw=%d unexpected error: %v", tc.draw, err)
		}
		if wear != tc.want {
			t.Fatalf("draw=%d got %q want %q", tc.draw, wear, tc.want)
		}
	}
}

func TestWearDistribution(t *testing.T) {
	const samples = 100000
	src := &lcgSource{state: 42}

	counts := make(map[model.Wear]int)
	for i := 0; i < samples; i++ {
		wear, err := DrawWear(src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts[wear]++
	}

	want := map[model.Wear]float64{
		model.FactoryNew:    0.10,
		model.MinimalWear:   0.25,
		model.FieldTested:   0.40,
		model.WellWorn:      0.15,
		model.BattleScarred: 0.10,
	}

	const tolerance = 0.02
	for wear, expected := range want {
		got := float64(counts[wear]) / samples
		if got < expected-tolerance || got > expected+tolerance {
			t.Errorf("wear %q: got %.4f want %.2f±%.2f", wear, got, expected, tolerance)
		}
	}
}

func TestOpenIsPure(t *testing.T) {
	def := twoTierDef()
	def.Case.SupportsStatTrak = true
	def.Case.Tiers[0].Items[0].StatTrakWeights = &model.StatTrakWeights{StatTrak: 10, Normal: 90}

	a, err := Open(def, &scriptedSource{draws: []int64{40, 0, 5, 5000}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Open(def, &scriptedSource{draws: []int64{40, 0, 5, 5000}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *a != *b {
		t.Fatalf("same draws produced different results: %+v vs %+v", a, b)
	}
}
