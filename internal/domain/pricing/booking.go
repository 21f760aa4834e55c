package pricing

import (
	"errors"
	"fmt"

	"rentbook/internal/domain/cancellation"
	"rentbook/internal/domain/eligibility"
	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

var ErrTotalDrift = errors.New("pricing: total does not match its components")

// BookingRequest is the ephemeral input of a quote; it is never persisted as is.
type BookingRequest struct {
	Range       daterange.DateRange
	Quantity    int
	Delivery    listings.DeliveryChoice
	Destination listings.Coordinates
	Renter      eligibility.Renter
	// Reserved is the number of units already held by other bookings
	// overlapping Range.
	Reserved int
}

type Tier string

const (
	TierDaily   Tier = "daily"
	TierWeekly  Tier = "weekly"
	TierMonthly Tier = "monthly"
)

// PricedBooking is the engine output. Total is derived from the components
// by RecalculateTotal and is never set on its own.
type PricedBooking struct {
	ListingID          listings.ListingID
	Currency           string
	Range              daterange.DateRange
	Days               int
	Quantity           int
	Delivery           listings.DeliveryChoice
	Tier               Tier
	UnitRate           money.Money
	WeekendDays        int
	Subtotal           money.Money
	ServiceFee         money.Money
	DeliveryFee        money.Money
	DeliveryDistanceKm float64
	Deposit            money.Money
	Total              money.Money
	InstantlyBookable  bool
	CancellationPolicy cancellation.Policy
}

func (p *PricedBooking) RecalculateTotal() error {
	total, err := money.Sum(p.Currency, p.Subtotal, p.ServiceFee, p.DeliveryFee, p.Deposit)
	if err != nil {
		return fmt.Errorf("pricing: total: %w", err)
	}
	p.Total = total
	return nil
}

// Verify checks the structural invariants of a priced booking.
func (p PricedBooking) Verify() error {
	if p.Days <= 0 {
		return errors.New("pricing: days must be positive")
	}
	if p.Quantity < 1 {
		return errors.New("pricing: quantity must be positive")
	}
	for _, m := range []money.Money{p.Subtotal, p.ServiceFee, p.DeliveryFee, p.Deposit} {
		if m.IsNegative() {
			return money.ErrNegativeAmount
		}
	}
	want, err := money.Sum(p.Currency, p.Subtotal, p.ServiceFee, p.DeliveryFee, p.Deposit)
	if err != nil {
		return err
	}
	if want != p.Total {
		return ErrTotalDrift
	}
	return nil
}

// RefundableBase is the part of the total governed by the cancellation policy.
func (p PricedBooking) RefundableBase() money.Money {
	base, _ := p.Subtotal.Add(p.ServiceFee)
	return base
}

// DueExcludingDeposit is the charge without the refundable hold.
func (p PricedBooking) DueExcludingDeposit() money.Money {
	due, _ := p.Total.Sub(p.Deposit)
	return due
}
