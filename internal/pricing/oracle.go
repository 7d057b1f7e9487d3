package pricing

import (
	"fmt"
	"math"

	"tcsgo-engine/internal/model"
)

// Oracle resolves the fiat/coin value of an item variant from the price
// table. Values it returns are snapshotted into the owned item at
// acquisition and never recomputed afterwards.
type Oracle struct {
	table *model.PriceTable
}

// New creates an oracle over a loaded price table.
func New(table *model.PriceTable) *Oracle {
	return &Oracle{table: table}
}

// VariantKey builds the price-table lookup key for an item variant.
func VariantKey(itemID string, wear model.Wear, statTrak bool) string {
	st := 0
	if statTrak {
		st = 1
	}
	return fmt.Sprintf("%s|%s|%d|None", itemID, wear, st)
}

// Value resolves an item variant's price: the exact variant entry when one
// exists, otherwise the rarity fallback scaled by wear and StatTrak
// multipliers. Fiat rounds to 2 decimals, coins to the nearest integer.
func (o *Oracle) Value(itemID, rarity string, wear model.Wear, statTrak bool) model.PriceSnapshot {
	fiat, ok := o.variantFiat(itemID, wear, statTrak)
	if !ok {
		fiat = o.fallbackFiat(rarity, wear, statTrak)
	}

	fiat = roundFiat(fiat)
	coins := int64(math.Round(fiat * o.table.CadToCoins))
	return model.PriceSnapshot{FiatValue: fiat, CoinValue: coins}
}

// FeePercent returns the market fee applied when an item is sold.
func (o *Oracle) FeePercent() float64 {
	return o.table.MarketFeePercent
}

func (o *Oracle) variantFiat(itemID string, wear model.Wear, statTrak bool) (float64, bool) {
	entry, ok := o.table.ItemVariantPrices[VariantKey(itemID, wear, statTrak)]
	if !ok || entry.Fiat <= 0 {
		return 0, false
	}
	return entry.Fiat, true
}

func (o *Oracle) fallbackFiat(rarity string, wear model.Wear, statTrak bool) float64 {
	base := o.table.RarityFallbackFiat[rarity]
	mult, ok := o.table.WearMultipliers[wear]
	if !ok {
		mult = 1
	}
	fiat := base * mult
	if statTrak {
		fiat *= o.table.StatTrakMultiplier
	}
	return fiat
}

// roundFiat keeps 2 decimals, matching the CAD rounding of the price feed.
func roundFiat(v float64) float64 {
	return math.Round(v*100) / 100
}
