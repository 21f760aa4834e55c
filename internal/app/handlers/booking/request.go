package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentbook/internal/app/dto"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domaineligibility "rentbook/internal/domain/eligibility"
	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
)

var (
	ErrListingRequired = errors.New("booking: listing id required")
	ErrBookingRequired = errors.New("booking: booking id required")
	ErrPriceChanged    = errors.New("booking: price changed since it was quoted")
)

// RequestParams is the renter input shared by quote and submit.
type RequestParams struct {
	ListingID   string
	RenterID    string
	Start       time.Time
	End         time.Time
	Quantity    int
	Delivery    string
	Destination *dto.Coordinates
}

func (p RequestParams) validate() error {
	if strings.TrimSpace(p.ListingID) == "" {
		return ErrListingRequired
	}
	return nil
}

// prepare loads the listing and assembles a pricing request from server-side
// data: the renter's KYC comes from the directory, never from the client.
func prepare(ctx context.Context, unit uow.UnitOfWork, p RequestParams) (*domainlistings.Listing, domainpricing.BookingRequest, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(p.ListingID))
	if err != nil {
		return nil, domainpricing.BookingRequest{}, err
	}
	choice, err := domainlistings.ParseDeliveryChoice(p.Delivery)
	if err != nil {
		return nil, domainpricing.BookingRequest{}, err
	}
	renter, err := lookupRenter(ctx, unit.Renters(), p.RenterID)
	if err != nil {
		return nil, domainpricing.BookingRequest{}, err
	}
	req := domainpricing.BookingRequest{
		Range:    daterange.DateRange{Start: p.Start.UTC(), End: p.End.UTC()},
		Quantity: p.Quantity,
		Delivery: choice,
		Renter:   renter,
	}
	if p.Destination != nil {
		req.Destination = domainlistings.Coordinates{Lat: p.Destination.Lat, Lon: p.Destination.Lon}
	}
	if req.Range.Validate() == nil {
		held, err := unit.Bookings().Overlapping(ctx, listing.ID, req.Range)
		if err != nil {
			return nil, domainpricing.BookingRequest{}, err
		}
		req.Reserved = domainbooking.ReservedUnits(held, req.Range)
	}
	return listing, req, nil
}

// lookupRenter treats unknown and anonymous renters as not verified.
func lookupRenter(ctx context.Context, dir domaineligibility.Directory, id string) (domaineligibility.Renter, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domaineligibility.Renter{KYC: domaineligibility.KYCNotStarted}, nil
	}
	renter, err := dir.Renter(ctx, id)
	if errors.Is(err, domaineligibility.ErrRenterNotFound) {
		return domaineligibility.Renter{ID: id, KYC: domaineligibility.KYCNotStarted}, nil
	}
	return renter, err
}
