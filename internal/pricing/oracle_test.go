package pricing

import (
	"testing"

	"tcsgo-engine/internal/model"
)

func testTable() *model.PriceTable {
	return &model.PriceTable{
		ItemVariantPrices: map[string]model.VariantPrice{
			"ak47-redline|Field-Tested|0|None": {Fiat: 12.34},
			"ak47-redline|Field-Tested|1|None": {Fiat: 30.00},
		},
		RarityFallbackFiat: map[string]float64{
			"Mil-Spec": 1.00,
			"Covert":   20.00,
		},
		WearMultipliers: map[model.Wear]float64{
			model.FactoryNew:    1.5,
			model.MinimalWear:   1.2,
			model.FieldTested:   1.0,
			model.WellWorn:      0.8,
			model.BattleScarred: 0.6,
		},
		StatTrakMultiplier: 2.5,
		CadToCoins:         100,
		MarketFeePercent:   10,
	}
}

func TestVariantKey(t *testing.T) {
	got := VariantKey("ak47-redline", model.FieldTested, true)
	want := "ak47-redline|Field-Tested|1|None"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestValueExactVariant(t *testing.T) {
	o := New(testTable())

	snap := o.Value("ak47-redline", "Covert", model.FieldTested, false)
	if snap.FiatValue != 12.34 {
		t.Fatalf("fiat: got %v want 12.34", snap.FiatValue)
	}
	if snap.CoinValue != 1234 {
		t.Fatalf("coins: got %d want 1234", snap.CoinValue)
	}

	// The StatTrak variant has its own entry; no multiplier math applies.
	snap = o.Value("ak47-redline", "Covert", model.FieldTested, true)
	if snap.FiatValue != 30.00 || snap.CoinValue != 3000 {
		t.Fatalf("statTrak variant: got %+v", snap)
	}
}

func TestValueRarityFallback(t *testing.T) {
	o := New(testTable())

	tests := []struct {
		name      string
		rarity    string
		wear      model.Wear
		statTrak  bool
		wantFiat  float64
		wantCoins int64
	}{
		{name: "base", rarity: "Covert", wear: model.FieldTested, wantFiat: 20.00, wantCoins: 2000},
		{name: "wear_multiplier", rarity: "Covert", wear: model.FactoryNew, wantFiat: 30.00, wantCoins: 3000},
		{name: "statTrak_multiplier", rarity: "Covert", wear: model.BattleScarred, statTrak: true, wantFiat: 30.00, wantCoins: 3000},
		{name: "cheap_rarity_rounding", rarity: "Mil-Spec", wear: model.WellWorn, wantFiat: 0.80, wantCoins: 80},
		{name: "unknown_rarity", rarity: "Contraband", wear: model.FieldTested, wantFiat: 0, wantCoins: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := o.Value("no-such-item", tc.rarity, tc.wear, tc.statTrak)
			if snap.FiatValue != tc.wantFiat {
				t.Fatalf("fiat: got %v want %v", snap.FiatValue, tc.wantFiat)
			}
			if snap.CoinValue != tc.wantCoins {
				t.Fatalf("coins: got %d want %d", snap.CoinValue, tc.wantCoins)
			}
		})
	}
}

func TestValueRounding(t *testing.T) {
	table := testTable()
	table.RarityFallbackFiat["Odd"] = 1.234
	o := New(table)

	// 1.234 * 1.0 rounds to 1.23 fiat, then 1.23 * 100 = 123 coins.
	snap := o.Value("x", "Odd", model.FieldTested, false)
	if snap.FiatValue != 1.23 {
		t.Fatalf("fiat: got %v want 1.23", snap.FiatValue)
	}
	if snap.CoinValue != 123 {
		t.Fatalf("coins: got %d want 123", snap.CoinValue)
	}
}
