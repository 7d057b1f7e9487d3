package model

// PriceTable is the external read-only pricing document. Variant keys use
// the refresher's format: "<itemId>|<wear>|<statTrak01>|<variant>".
type PriceTable struct {
	ItemVariantPrices   map[string]VariantPrice `json:"itemVariantPrices"`
	RarityFallbackFiat  map[string]float64      `json:"rarityFallbackPrices"`
	WearMultipliers     map[Wear]float64        `json:"wearMultipliers"`
	StatTrakMultiplier  float64                 `json:"statTrakMultiplier"`
	CadToCoins          float64                 `json:"cadToCoins"`
	MarketFeePercent    float64                 `json:"marketFeePercent"`
}

// VariantPrice is one exact (item, wear, statTrak) price entry.
type VariantPrice struct {
	Fiat float64 `json:"cad"`
}

// AliasTable maps chat-facing case aliases to case ids.
type AliasTable struct {
	Aliases map[string]CaseAlias `json:"aliases"`
}

// CaseAlias is one alias entry.
type CaseAlias struct {
	CaseID      string `json:"caseId"`
	DisplayName string `json:"displayName"`
}
