package pricing

import (
	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/money"
)

// CalculateDeposit resolves the listing's deposit policy. Fixed deposits are
// held per unit; percentage deposits apply to the priced subtotal, which
// already covers every unit and any package discount.
func CalculateDeposit(policy listings.DepositPolicy, subtotal money.Money, quantity int) money.Money {
	if policy.Value <= 0 {
		return money.Zero(subtotal.Currency)
	}
	switch policy.Type {
	case listings.DepositPercentage:
		percent := policy.Value
		if percent > listings.MaxDepositPercent {
			percent = listings.MaxDepositPercent
		}
		return subtotal.Portion(money.Percent(percent))
	default:
		return policy.FixedAmount(subtotal.Currency).Multiply(int64(quantity))
	}
}
