package listings

import (
	"context"

	"rentbook/internal/app/dto"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainlistings "rentbook/internal/domain/listings"
)

type GetListingQuery struct {
	ListingID string
}

func (GetListingQuery) Key() string { return "listing.get" }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.Listing, error) {
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	defer release()
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Listing{}, err
	}
	return dto.MapListing(listing), nil
}

var _ queries.Handler[GetListingQuery, dto.Listing] = (*GetListingHandler)(nil)
