package model

// Wear is an item's cosmetic condition category. The string values match
// the price-table key format, so they marshal as-is.
type Wear string

const (
	FactoryNew    Wear = "Factory New"
	MinimalWear   Wear = "Minimal Wear"
	FieldTested   Wear = "Field-Tested"
	WellWorn      Wear = "Well-Worn"
	BattleScarred Wear = "Battle-Scarred"
)

// WearOrder is the canonical bucket order used for wear rolls and display.
var WearOrder = []Wear{FactoryNew, MinimalWear, FieldTested, WellWorn, BattleScarred}
