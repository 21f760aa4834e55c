package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/money"
)

// DefaultServiceFee is the platform fee on the subtotal (10%).
const DefaultServiceFee = money.BasisPoints(1000)

var ErrDistanceCalculatorMissing = errors.New("pricing: distance calculator missing")

// DistanceCalculator supplies the kilometres between the listing and the
// renter's delivery address for per_km delivery fees.
type DistanceCalculator interface {
	DistanceKm(ctx context.Context, from, to listings.Coordinates) (float64, error)
}

// ServiceFee applies rate to the subtotal.
func ServiceFee(subtotal money.Money, rate money.BasisPoints) money.Money {
	return subtotal.Portion(rate)
}

type deliveryQuote struct {
	fee        money.Money
	distanceKm float64
}

func (e Engine) deliveryFee(ctx context.Context, listing *listings.Listing, req BookingRequest) (deliveryQuote, error) {
	zero := deliveryQuote{fee: money.Zero(listing.Currency)}
	if req.Delivery != listings.DeliveryDelivery {
		return zero, nil
	}
	opts := listing.Delivery
	if opts.FeeType != listings.DeliveryFeePerKm {
		if opts.Fee.Amount == 0 {
			return zero, nil
		}
		return deliveryQuote{fee: opts.Fee}, nil
	}
	if req.Destination.IsZero() {
		return deliveryQuote{}, &Rejection{Code: CodeDestinationRequired}
	}
	calc := e.Distances
	if calc == nil {
		calc = Haversine{}
	}
	km, err := calc.DistanceKm(ctx, opts.Origin, req.Destination)
	if err != nil {
		return deliveryQuote{}, fmt.Errorf("pricing: delivery distance: %w", err)
	}
	if opts.RadiusKm > 0 && km > opts.RadiusKm {
		return deliveryQuote{}, &Rejection{Code: CodeDeliveryOutOfRange, DistanceKm: km, RadiusKm: opts.RadiusKm}
	}
	started := int64(math.Ceil(km))
	return deliveryQuote{fee: money.Money{Amount: opts.Fee.Amount * started, Currency: listing.Currency}, distanceKm: km}, nil
}

const earthRadiusKm = 6371.0

// Haversine is the great-circle distance; used when no routing service is configured.
type Haversine struct{}

func (Haversine) DistanceKm(_ context.Context, from, to listings.Coordinates) (float64, error) {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(to.Lat - from.Lat)
	dLon := rad(to.Lon - from.Lon)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(from.Lat))*math.Cos(rad(to.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a)), nil
}
