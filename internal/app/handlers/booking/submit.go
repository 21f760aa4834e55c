package booking

import (
	"context"
	"strings"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
)

type SubmitBookingCommand struct {
	RequestParams
	BookingID string
	// ExpectedTotal is the total the renter saw; when set, submission fails
	// with ErrPriceChanged if the server-side price differs.
	ExpectedTotal   *int64
	IdempotencyKeyV string
}

func (SubmitBookingCommand) Key() string { return "booking.submit" }

func (c SubmitBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c SubmitBookingCommand) IdempotencyScope() string { return strings.TrimSpace(c.RenterID) }

func (c SubmitBookingCommand) ResultPrototype() any { return &dto.Booking{} }

func (c SubmitBookingCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return ErrBookingRequired
	}
	if strings.TrimSpace(c.RenterID) == "" {
		return domainbooking.ErrRenterRequired
	}
	return c.validate()
}

// SubmitBookingHandler re-prices the request server-side and persists the
// result as a booking. Client-computed prices are never trusted.
type SubmitBookingHandler struct {
	Pricing policies.PricingPort
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   policies.Clock
}

func (h *SubmitBookingHandler) Handle(ctx context.Context, cmd SubmitBookingCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	listing, req, err := prepare(ctx, unit, cmd.RequestParams)
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()
	priced, err := h.Pricing.Price(ctx, listing, req, now)
	if err != nil {
		return nil, err
	}
	if cmd.ExpectedTotal != nil && *cmd.ExpectedTotal != priced.Total.Amount {
		return nil, ErrPriceChanged
	}
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.BookingID),
		HostID:    listing.Host,
		RenterID:  cmd.RenterID,
		Price:     priced,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	// Saving the listing bumps its version; concurrent submissions for one
	// listing then conflict on commit.
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.Drain()); err != nil {
		return nil, err
	}
	out := dto.MapBooking(b)
	return &out, nil
}

var (
	_ commands.Handler[SubmitBookingCommand, *dto.Booking] = (*SubmitBookingHandler)(nil)
	_ middleware.IdempotentCommand                         = SubmitBookingCommand{}
)
