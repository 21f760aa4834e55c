package pricing

import (
	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

const (
	WeeklyThresholdDays  = 7
	MonthlyThresholdDays = 30
)

// SelectRate picks the tier for a duration. Weekly and monthly rates are flat
// package prices for the whole window; monthly wins when both apply.
func SelectRate(rates listings.Rates, days int) (Tier, money.Money) {
	if days >= MonthlyThresholdDays && rates.HasMonthly() {
		return TierMonthly, rates.Monthly
	}
	if days >= WeeklyThresholdDays && rates.HasWeekly() {
		return TierWeekly, rates.Weekly
	}
	return TierDaily, rates.Daily
}

type unitPrice struct {
	tier        Tier
	rate        money.Money
	weekendDays int
	subtotal    money.Money
}

// priceUnit prices one unit of the listing over the window.
func priceUnit(rates listings.Rates, window daterange.DateRange) unitPrice {
	days := window.Days()
	tier, rate := SelectRate(rates, days)
	if tier != TierDaily {
		return unitPrice{tier: tier, rate: rate, subtotal: rate}
	}
	if rates.WeekendMultiplier <= 1 {
		return unitPrice{tier: tier, rate: rate, subtotal: rate.Multiply(int64(days))}
	}
	weekend := 0
	start := daterange.Truncate(window.Start)
	for i := 0; i < days; i++ {
		if availability.IsWeekend(start.AddDate(0, 0, i)) {
			weekend++
		}
	}
	weekdayTotal := rate.Multiply(int64(days - weekend))
	weekendTotal := rate.Scale(rates.WeekendMultiplier).Multiply(int64(weekend))
	subtotal, _ := weekdayTotal.Add(weekendTotal)
	return unitPrice{tier: tier, rate: rate, weekendDays: weekend, subtotal: subtotal}
}
