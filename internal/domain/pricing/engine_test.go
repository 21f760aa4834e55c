package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/cancellation"
	"rentbook/internal/domain/eligibility"
	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

var now = time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func usd(amount int64) money.Money { return money.Must(amount, "USD") }

func newListing(t *testing.T, mutate func(d *listings.Details)) *listings.Listing {
	t.Helper()
	details := listings.Details{
		Title:              "Trail bike",
		Currency:           "USD",
		Quantity:           3,
		Rates:              listings.Rates{Daily: usd(10000)},
		Deposit:            listings.DepositPolicy{Type: listings.DepositFixed, Value: 50000},
		CancellationPolicy: cancellation.Moderate,
	}
	if mutate != nil {
		mutate(&details)
	}
	l, err := listings.NewListing(listings.CreateListingParams{ID: "lst-1", Host: "host-1", Details: details, Now: now})
	require.NoError(t, err)
	require.NoError(t, l.Activate(now))
	return l
}

func request(t *testing.T, start, end time.Time) pricing.BookingRequest {
	t.Helper()
	dr, err := daterange.New(start, end)
	require.NoError(t, err)
	return pricing.BookingRequest{Range: dr, Quantity: 1, Delivery: listings.DeliveryNone, Renter: eligibility.Renter{ID: "renter-1"}}
}

func TestPriceThreeDayFixedDeposit(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) {
		d.Delivery = listings.DeliveryOptions{PickupAvailable: true}
	})
	req := request(t, date(2024, 1, 1), date(2024, 1, 4))
	req.Delivery = listings.DeliveryPickup

	priced, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	require.NoError(t, err)

	assert.Equal(t, 3, priced.Days)
	assert.Equal(t, pricing.TierDaily, priced.Tier)
	assert.Equal(t, usd(10000), priced.UnitRate)
	assert.Equal(t, usd(30000), priced.Subtotal)
	assert.Equal(t, usd(3000), priced.ServiceFee)
	assert.Equal(t, usd(0), priced.DeliveryFee)
	assert.Equal(t, usd(50000), priced.Deposit)
	assert.Equal(t, usd(83000), priced.Total)
	assert.Equal(t, usd(33000), priced.DueExcludingDeposit())
	assert.Equal(t, cancellation.Moderate, priced.CancellationPolicy)
	assert.NoError(t, priced.Verify())
}

func TestWeeklyRateIsAPackagePrice(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) {
		d.Rates.Weekly = usd(60000)
	})
	priced, err := pricing.Engine{}.Price(context.Background(), listing, request(t, date(2024, 1, 1), date(2024, 1, 8)), now)
	require.NoError(t, err)

	assert.Equal(t, 7, priced.Days)
	assert.Equal(t, pricing.TierWeekly, priced.Tier)
	assert.Equal(t, usd(60000), priced.Subtotal)

	// Thirteen days is still one weekly package, never two.
	priced, err = pricing.Engine{}.Price(context.Background(), listing, request(t, date(2024, 1, 1), date(2024, 1, 14)), now)
	require.NoError(t, err)
	assert.Equal(t, usd(60000), priced.Subtotal)
}

func TestMonthlyBeatsWeekly(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) {
		d.Rates.Weekly = usd(60000)
		d.Rates.Monthly = usd(200000)
	})
	priced, err := pricing.Engine{}.Price(context.Background(), listing, request(t, date(2024, 1, 1), date(2024, 1, 31)), now)
	require.NoError(t, err)
	assert.Equal(t, 30, priced.Days)
	assert.Equal(t, pricing.TierMonthly, priced.Tier)
	assert.Equal(t, usd(200000), priced.Subtotal)

	priced, err = pricing.Engine{}.Price(context.Background(), listing, request(t, date(2024, 1, 1), date(2024, 1, 30)), now)
	require.NoError(t, err)
	assert.Equal(t, pricing.TierWeekly, priced.Tier)
}

func TestSelectRateIgnoresDerivedDiscount(t *testing.T) {
	rates := listings.Rates{Daily: usd(10000), Weekly: usd(60000)}
	assert.Equal(t, 14, rates.WeeklyDiscountPercent())
	tier, rate := pricing.SelectRate(rates, 7)
	assert.Equal(t, pricing.TierWeekly, tier)
	assert.Equal(t, usd(60000), rate)
}

func TestPercentageDepositUsesPricedSubtotal(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) {
		d.Rates.Weekly = usd(60000)
		d.Deposit = listings.DepositPolicy{Type: listings.DepositPercentage, Value: 20}
	})
	req := request(t, date(2024, 1, 1), date(2024, 1, 8))
	req.Quantity = 2

	priced, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	require.NoError(t, err)
	assert.Equal(t, usd(120000), priced.Subtotal)
	assert.Equal(t, usd(24000), priced.Deposit)
}

func TestFixedDepositScalesWithQuantity(t *testing.T) {
	listing := newListing(t, nil)
	req := request(t, date(2024, 1, 1), date(2024, 1, 3))
	req.Quantity = 3

	priced, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	require.NoError(t, err)
	assert.Equal(t, usd(60000), priced.Subtotal)
	assert.Equal(t, usd(150000), priced.Deposit)
}

func TestPercentageDepositIsMonotonicInSubtotal(t *testing.T) {
	policy := listings.DepositPolicy{Type: listings.DepositPercentage, Value: 15}
	prev := int64(-1)
	for amount := int64(0); amount <= 100000; amount += 777 {
		got := pricing.CalculateDeposit(policy, usd(amount), 1)
		assert.GreaterOrEqual(t, got.Amount, prev)
		assert.LessOrEqual(t, got.Amount, amount)
		prev = got.Amount
	}
}

func TestKYCBlocksRegardlessOfDates(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) { d.RequiresKYC = true })
	req := request(t, date(2024, 1, 1), date(2024, 1, 4))
	req.Renter.KYC = eligibility.KYCPending

	_, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, pricing.ErrEligibilityBlocked)
	assert.ErrorIs(t, err, eligibility.ErrKYCRequired)

	var rej *pricing.Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, eligibility.KYCPending, rej.KYC)
	assert.Equal(t, "kyc_required", rej.Reason())
}

func TestInvalidDateRange(t *testing.T) {
	listing := newListing(t, nil)
	req := pricing.BookingRequest{
		Range:    daterange.DateRange{Start: date(2024, 1, 4), End: date(2024, 1, 4)},
		Quantity: 1,
	}
	_, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	assert.ErrorIs(t, err, pricing.ErrInvalidDateRange)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestQuantityBounds(t *testing.T) {
	listing := newListing(t, nil)
	req := request(t, date(2024, 1, 1), date(2024, 1, 4))

	req.Quantity = 4
	_, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	assert.ErrorIs(t, err, pricing.ErrQuantityExceeded)

	req.Quantity = 0
	_, err = pricing.Engine{}.Price(context.Background(), listing, req, now)
	assert.ErrorIs(t, err, pricing.ErrInvalidQuantity)
}

func TestDeliveryChoiceRequired(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) {
		d.Delivery = listings.DeliveryOptions{PickupAvailable: true, DeliveryAvailable: true, FeeType: listings.DeliveryFeeFixed, Fee: usd(2500)}
	})
	req := request(t, date(2024, 1, 1), date(2024, 1, 4))

	_, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	assert.ErrorIs(t, err, pricing.ErrDeliveryRequired)

	req.Delivery = listings.DeliveryDelivery
	priced, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	require.NoError(t, err)
	assert.Equal(t, usd(2500), priced.DeliveryFee)
	assert.Equal(t, usd(30000+3000+2500+50000), priced.Total)
}

type fixedDistance float64

func (d fixedDistance) DistanceKm(context.Context, listings.Coordinates, listings.Coordinates) (float64, error) {
	return float64(d), nil
}

func TestPerKmDeliveryDelegatesDistance(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) {
		d.Delivery = listings.DeliveryOptions{
			DeliveryAvailable: true,
			FeeType:           listings.DeliveryFeePerKm,
			Fee:               usd(200),
			RadiusKm:          10,
			Origin:            listings.Coordinates{Lat: -33.92, Lon: 18.42},
		}
	})
	req := request(t, date(2024, 1, 1), date(2024, 1, 2))
	req.Delivery = listings.DeliveryDelivery

	_, err := pricing.Engine{Distances: fixedDistance(7.2)}.Price(context.Background(), listing, req, now)
	assert.ErrorIs(t, err, pricing.ErrDestinationRequired)

	req.Destination = listings.Coordinates{Lat: -33.95, Lon: 18.47}
	priced, err := pricing.Engine{Distances: fixedDistance(7.2)}.Price(context.Background(), listing, req, now)
	require.NoError(t, err)
	assert.Equal(t, usd(1600), priced.DeliveryFee)
	assert.InDelta(t, 7.2, priced.DeliveryDistanceKm, 0.0001)

	_, err = pricing.Engine{Distances: fixedDistance(12)}.Price(context.Background(), listing, req, now)
	assert.ErrorIs(t, err, pricing.ErrDeliveryOutOfRange)
}

func TestHaversine(t *testing.T) {
	km, err := pricing.Haversine{}.DistanceKm(context.Background(), listings.Coordinates{}, listings.Coordinates{Lat: 1})
	require.NoError(t, err)
	assert.InDelta(t, 111.19, km, 0.01)
}

func TestWeekendMultiplierAppliesToDailyTier(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) { d.Rates.WeekendMultiplier = 1.5 })
	// Friday to Monday: Fri, Sat, Sun.
	priced, err := pricing.Engine{}.Price(context.Background(), listing, request(t, date(2024, 1, 5), date(2024, 1, 8)), now)
	require.NoError(t, err)
	assert.Equal(t, 2, priced.WeekendDays)
	assert.Equal(t, usd(40000), priced.Subtotal)
}

func TestAvailabilityRejectionKeepsReason(t *testing.T) {
	blackout, err := availability.ExplicitBlackout(daterange.OfDays(date(2024, 1, 3), 1), "")
	require.NoError(t, err)
	listing := newListing(t, func(d *listings.Details) {
		d.Availability.Blackouts = []availability.Blackout{blackout}
	})

	_, err = pricing.Engine{}.Price(context.Background(), listing, request(t, date(2024, 1, 1), date(2024, 1, 4)), now)
	assert.ErrorIs(t, err, pricing.ErrAvailability)
	assert.ErrorIs(t, err, availability.ErrBlackout)
	var rej *pricing.Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "blackout_overlap", rej.Reason())
}

func TestInactiveListingIsRejected(t *testing.T) {
	l, err := listings.NewListing(listings.CreateListingParams{
		ID: "draft", Host: "h", Now: now,
		Details: listings.Details{Title: "Tent", Currency: "USD", Quantity: 1, Rates: listings.Rates{Daily: usd(100)}},
	})
	require.NoError(t, err)
	_, err = pricing.Engine{}.Price(context.Background(), l, request(t, date(2024, 1, 1), date(2024, 1, 2)), now)
	assert.ErrorIs(t, err, pricing.ErrListingUnavailable)
}

func TestServiceFeeIsConfigurable(t *testing.T) {
	listing := newListing(t, nil)
	priced, err := pricing.Engine{ServiceFee: 1250}.Price(context.Background(), listing, request(t, date(2024, 1, 1), date(2024, 1, 4)), now)
	require.NoError(t, err)
	assert.Equal(t, usd(3750), priced.ServiceFee)
}

func TestTotalIsAlwaysTheSumOfComponents(t *testing.T) {
	listing := newListing(t, func(d *listings.Details) {
		d.Rates = listings.Rates{Daily: usd(3333), Weekly: usd(19999), Monthly: usd(70001), WeekendMultiplier: 1.25}
		d.Deposit = listings.DepositPolicy{Type: listings.DepositPercentage, Value: 33}
		d.Delivery = listings.DeliveryOptions{DeliveryAvailable: true, FeeType: listings.DeliveryFeeFixed, Fee: usd(999)}
	})
	for days := 1; days <= 45; days++ {
		for qty := 1; qty <= 3; qty++ {
			req := request(t, date(2024, 1, 1), date(2024, 1, 1).AddDate(0, 0, days))
			req.Quantity = qty
			req.Delivery = listings.DeliveryDelivery
			priced, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
			require.NoError(t, err)
			require.NoError(t, priced.Verify())
			assert.Equal(t, days, priced.Days)
			sum := priced.Subtotal.Amount + priced.ServiceFee.Amount + priced.DeliveryFee.Amount + priced.Deposit.Amount
			assert.Equal(t, sum, priced.Total.Amount)
		}
	}
}

func TestVerifyDetectsDrift(t *testing.T) {
	listing := newListing(t, nil)
	priced, err := pricing.Engine{}.Price(context.Background(), listing, request(t, date(2024, 1, 1), date(2024, 1, 4)), now)
	require.NoError(t, err)
	priced.Total = usd(1)
	assert.ErrorIs(t, priced.Verify(), pricing.ErrTotalDrift)
}

func TestReservedUnitsReduceAvailability(t *testing.T) {
	listing := newListing(t, nil)
	req := request(t, date(2024, 1, 1), date(2024, 1, 4))
	req.Quantity = 2
	req.Reserved = 2

	_, err := pricing.Engine{}.Price(context.Background(), listing, req, now)
	var rej *pricing.Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, pricing.CodeQuantityExceeded, rej.Code)
	assert.Equal(t, 1, rej.Available)
}
