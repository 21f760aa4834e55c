package pricing

import (
	"context"
	"errors"
	"time"

	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/eligibility"
	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/money"
)

var ErrListingMissing = errors.New("pricing: listing missing")

// Engine turns a listing and a booking request into a PricedBooking.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	// ServiceFee is the platform fee rate; zero means DefaultServiceFee.
	ServiceFee money.BasisPoints
	Gate       availability.Gate
	// Distances resolves per_km delivery; nil falls back to Haversine.
	Distances DistanceCalculator
}

// Price validates the request and prices it. Business rejections are
// returned as *Rejection; any other error is an infrastructure failure of the
// distance lookup or a malformed listing.
//
// Order: listing state, date range, eligibility, quantity, availability, then
// tiered rate, fees and deposit.
func (e Engine) Price(ctx context.Context, listing *listings.Listing, req BookingRequest, now time.Time) (PricedBooking, error) {
	if listing == nil {
		return PricedBooking{}, ErrListingMissing
	}
	if !listing.Bookable() {
		return PricedBooking{}, &Rejection{Code: CodeListingUnavailable}
	}
	if err := req.Range.Validate(); err != nil {
		return PricedBooking{}, &Rejection{Code: CodeInvalidDateRange, Cause: err}
	}
	if err := eligibility.Check(listing, req.Renter, req.Delivery); err != nil {
		return PricedBooking{}, fromEligibility(err)
	}
	if req.Quantity < 1 {
		return PricedBooking{}, &Rejection{Code: CodeInvalidQuantity, Requested: req.Quantity, Available: listing.Quantity}
	}
	if available := availableUnits(listing, req); req.Quantity > available {
		return PricedBooking{}, &Rejection{Code: CodeQuantityExceeded, Requested: req.Quantity, Available: available}
	}
	if err := e.Gate.Check(listing.Availability, req.Range, now); err != nil {
		return PricedBooking{}, fromAvailability(err)
	}

	unit := priceUnit(listing.Rates, req.Range)
	subtotal := unit.subtotal.Multiply(int64(req.Quantity))
	delivery, err := e.deliveryFee(ctx, listing, req)
	if err != nil {
		return PricedBooking{}, err
	}
	priced := PricedBooking{
		ListingID:          listing.ID,
		Currency:           listing.Currency,
		Range:              req.Range,
		Days:               req.Range.Days(),
		Quantity:           req.Quantity,
		Delivery:           req.Delivery,
		Tier:               unit.tier,
		UnitRate:           unit.rate,
		WeekendDays:        unit.weekendDays,
		Subtotal:           subtotal,
		ServiceFee:         ServiceFee(subtotal, e.serviceFee()),
		DeliveryFee:        delivery.fee,
		DeliveryDistanceKm: delivery.distanceKm,
		Deposit:            CalculateDeposit(listing.Deposit, subtotal, req.Quantity),
		InstantlyBookable:  listing.InstantBook,
		CancellationPolicy: listing.CancellationPolicy,
	}
	if err := priced.RecalculateTotal(); err != nil {
		return PricedBooking{}, err
	}
	return priced, nil
}

func (e Engine) serviceFee() money.BasisPoints {
	if e.ServiceFee <= 0 {
		return DefaultServiceFee
	}
	return e.ServiceFee
}

func availableUnits(listing *listings.Listing, req BookingRequest) int {
	available := listing.Quantity - req.Reserved
	if available < 0 {
		return 0
	}
	return available
}
