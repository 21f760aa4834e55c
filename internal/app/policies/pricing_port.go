package policies

import (
	"context"
	"time"

	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
)

// PricingPort prices a request against a listing snapshot; pricing.Engine
// satisfies it.
type PricingPort interface {
	Price(ctx context.Context, listing *domainlistings.Listing, req domainpricing.BookingRequest, now time.Time) (domainpricing.PricedBooking, error)
}

var _ PricingPort = domainpricing.Engine{}
