package booking

import (
	"context"

	"rentbook/internal/app/dto"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
)

type QuoteQuery struct {
	RequestParams
}

func (QuoteQuery) Key() string { return "booking.quote" }

func (q QuoteQuery) Validate() error { return q.validate() }

// QuoteHandler prices a prospective booking without persisting anything.
type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    policies.PricingPort
	Clock      policies.Clock
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.Quote, error) {
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	defer release()

	listing, req, err := prepare(ctx, unit, q.RequestParams)
	if err != nil {
		return dto.Quote{}, err
	}
	priced, err := h.Pricing.Price(ctx, listing, req, h.Clock.Now())
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(priced), nil
}

var _ queries.Handler[QuoteQuery, dto.Quote] = (*QuoteHandler)(nil)
