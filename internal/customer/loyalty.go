package customer

import (
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

var pointValue = decimal.NewFromInt(10)

// PointsFor is one point per full 10 currency units.
func PointsFor(amount decimal.Decimal) int64 {
	if amount.IsNegative() {
		return 0
	}
	return amount.Div(pointValue).Floor().IntPart()
}

func TierFor(points int64) model.LoyaltyTier {
	switch {
	case points >= 10000:
		return model.TierPlatinum
	case points >= 5000:
		return model.TierGold
	case points >= 1000:
		return model.TierSilver
	default:
		return model.TierBronze
	}
}

// Earn credits points and re-tiers the customer.
func Earn(c *model.Customer, points int64) {
	c.LoyaltyPoints += points
	c.LoyaltyTier = TierFor(c.LoyaltyPoints)
}

// Revoke takes points back without going below zero.
func Revoke(c *model.Customer, points int64) {
	c.LoyaltyPoints = max(c.LoyaltyPoints-points, 0)
	c.LoyaltyTier = TierFor(c.LoyaltyPoints)
}
