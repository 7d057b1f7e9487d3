package model

// CaseDefinition is one case-odds document. Weights are declared against
// Unit.Scale; the tier weights must sum to at most the scale.
type CaseDefinition struct {
	Unit Unit     `json:"unit"`
	Case CaseBody `json:"case"`
}

// Unit declares the integer base all odds weights are expressed in.
type Unit struct {
	Scale int64 `json:"scale"`
}

// CaseBody holds the case's tiers in declared order, the distinguished
// jackpot pool, and whether the case can produce StatTrak variants.
type CaseBody struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Tiers            []CaseTier `json:"tiers"`
	GoldPool         *ItemPool  `json:"goldPool,omitempty"`
	SupportsStatTrak bool       `json:"supportsStatTrak"`
}

// CaseTier is a weighted rarity bucket with its item pool.
type CaseTier struct {
	Name   string     `json:"name"`
	Rarity string     `json:"rarity"`
	Weight int64      `json:"weight"`
	Items  []CaseItem `json:"items"`
}

// ItemPool is a standalone item pool (the jackpot/gold pool).
type ItemPool struct {
	Items []CaseItem `json:"items"`
}

// CaseItem is one drawable item with its weight and optional StatTrak
// eligibility weights. A nil StatTrakWeights means not eligible.
type CaseItem struct {
	ItemID          string           `json:"itemId"`
	DisplayName     string           `json:"name"`
	Rarity          string           `json:"rarity"`
	Weight          int64            `json:"weight"`
	StatTrakWeights *StatTrakWeights `json:"statTrakWeights,omitempty"`
}

// StatTrakWeights is the weighted coin flip between the StatTrak and
// non-StatTrak variant of an eligible item.
type StatTrakWeights struct {
	StatTrak int64 `json:"st"`
	Normal   int64 `json:"nonSt"`
}
