package caseopen

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"tcsgo-engine/internal/model"
)

// Source draws a uniform random integer in [0, max). Injected so that
// case-opening outcomes are reproducible in tests.
type Source interface {
	Draw(max *big.Int) (*big.Int, error)
}

// CryptoSource is the production source, backed by crypto/rand.
type CryptoSource struct{}

// Draw returns a uniform integer in [0, max).
func (CryptoSource) Draw(max *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, max)
}

// Result is the outcome of opening one case. The four draws are correlated
// only through the tier gating the item pool.
type Result struct {
	Item     model.CaseItem
	Tier     string
	StatTrak bool
	Wear     model.Wear
}

// WearScale is the constant total of the wear table weights.
const WearScale = 10000

// wearWeights is the fixed 5-bucket wear roll, in canonical bucket order.
var wearWeights = []struct {
	Wear   model.Wear
	Weight int64
}{
	{model.FactoryNew, 1000},
	{model.MinimalWear, 2500},
	{model.FieldTested, 4000},
	{model.WellWorn, 1500},
	{model.BattleScarred, 1000},
}

// ErrNoTiers is returned when a case definition has no tiers at all.
var ErrNoTiers = errors.New("case definition has no tiers")

// ErrEmptyPool is returned when the selected pool has no items.
var ErrEmptyPool = errors.New("selected tier has no items")

// Open runs the four-stage weighted draw against a case definition.
// It is a pure function of (def, src): no hidden state, no ambient RNG.
// All cumulative weight comparisons use big.Int so large unit scales never
// hit floating-point drift.
func Open(def *model.CaseDefinition, src Source) (*Result, error) {
	tier, err := drawTier(def, src)
	if err != nil {
		return nil, err
	}

	item, err := drawItem(def, tier, src)
	if err != nil {
		return nil, err
	}

	statTrak, err := drawStatTrak(def, item, src)
	if err != nil {
		return nil, err
	}

	wear, err := DrawWear(src)
	if err != nil {
		return nil, err
	}

	return &Result{Item: item, Tier: tier.Name, StatTrak: statTrak, Wear: wear}, nil
}

// drawTier walks tiers in declared order; the first tier whose cumulative
// weight strictly exceeds the draw wins. A malformed table (weights not
// covering the draw) deterministically falls back to the first tier.
func drawTier(def *model.CaseDefinition, src Source) (*model.CaseTier, error) {
	tiers := def.Case.Tiers
	if len(tiers) == 0 {
		return nil, ErrNoTiers
	}

	scale := big.NewInt(def.Unit.Scale)
	if scale.Sign() <= 0 {
		return &tiers[0], nil
	}

	draw, err := src.Draw(scale)
	if err != nil {
		return nil, err
	}

	cum := new(big.Int)
	for i := range tiers {
		cum.Add(cum, big.NewInt(tiers[i].Weight))
		if cum.Cmp(draw) > 0 {
			return &tiers[i], nil
		}
	}
	return &tiers[0], nil
}

// drawItem selects from the jackpot pool when the gold tier came up and the
// pool is present and non-empty, otherwise from the tier's own item list.
func drawItem(def *model.CaseDefinition, tier *model.CaseTier, src Source) (model.CaseItem, error) {
	items := tier.Items
	if isJackpot(tier) && def.Case.GoldPool != nil && len(def.Case.GoldPool.Items) > 0 {
		items = def.Case.GoldPool.Items
	}
	if len(items) == 0 {
		return model.CaseItem{}, ErrEmptyPool
	}

	total := new(big.Int)
	for i := range items {
		total.Add(total, big.NewInt(items[i].Weight))
	}
	if total.Sign() <= 0 {
		return items[0], nil
	}

	draw, err := src.Draw(total)
	if err != nil {
		return model.CaseItem{}, err
	}

	cum := new(big.Int)
	for i := range items {
		cum.Add(cum, big.NewInt(items[i].Weight))
		if cum.Cmp(draw) > 0 {
			return items[i], nil
		}
	}
	return items[0], nil
}

// drawStatTrak is a weighted coin flip, possible only when the item is
// eligible and the case declares StatTrak support. Both weights zero means
// never StatTrak.
func drawStatTrak(def *model.CaseDefinition, item model.CaseItem, src Source) (bool, error) {
	if !def.Case.SupportsStatTrak || item.StatTrakWeights == nil {
		return false, nil
	}

	w := item.StatTrakWeights
	total := w.StatTrak + w.Normal
	if total <= 0 {
		return false, nil
	}

	draw, err := src.Draw(big.NewInt(total))
	if err != nil {
		return false, err
	}
	return draw.Cmp(big.NewInt(w.StatTrak)) < 0, nil
}

// DrawWear is an independent categorical draw over the fixed wear table:
// the first bucket whose cumulative weight meets or exceeds the draw wins.
func DrawWear(src Source) (model.Wear, error) {
	draw, err := src.Draw(big.NewInt(WearScale))
	if err != nil {
		return "", err
	}

	cum := new(big.Int)
	for _, bucket := range wearWeights {
		cum.Add(cum, big.NewInt(bucket.Weight))
		if cum.Cmp(draw) >= 0 {
			return bucket.Wear, nil
		}
	}
	return wearWeights[len(wearWeights)-1].Wear, nil
}

// isJackpot reports whether a tier is the distinguished gold tier.
func isJackpot(tier *model.CaseTier) bool {
	return strings.EqualFold(tier.Name, "gold")
}
