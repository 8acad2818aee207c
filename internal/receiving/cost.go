package receiving

import "github.com/shopspring/decimal"

// RecomputeCost returns the weighted average cost of oldQty units at oldCost merged with newQty
// units at newCost, rounded to 2 places. Stock that is empty or negative carries no weight.
func RecomputeCost(oldCost decimal.Decimal, oldQty int64, newCost decimal.Decimal, newQty int64) decimal.Decimal {
	if oldQty <= 0 {
		return newCost.Round(2)
	}
	if newQty <= 0 {
		return oldCost.Round(2)
	}
	value := oldCost.Mul(decimal.NewFromInt(oldQty)).Add(newCost.Mul(decimal.NewFromInt(newQty)))
	return value.Div(decimal.NewFromInt(oldQty + newQty)).Round(2)
}
