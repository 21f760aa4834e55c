package booking

import (
	"context"
	"strings"

	"rentbook/internal/app/dto"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
)

type GetBookingQuery struct {
	BookingID string
	UserID    string
}

func (GetBookingQuery) Key() string { return "booking.get" }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	defer release()
	b, err := loadForParticipant(ctx, unit, q.BookingID, q.UserID)
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(b), nil
}

// ListRenterBookingsQuery returns the caller's bookings, newest first.
type ListRenterBookingsQuery struct {
	RenterID string
}

func (ListRenterBookingsQuery) Key() string { return "booking.list_renter" }

func (q ListRenterBookingsQuery) Validate() error {
	if strings.TrimSpace(q.RenterID) == "" {
		return domainbooking.ErrRenterRequired
	}
	return nil
}

type ListRenterBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRenterBookingsHandler) Handle(ctx context.Context, q ListRenterBookingsQuery) ([]dto.Booking, error) {
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer release()
	items, err := unit.Bookings().ListByRenter(ctx, q.RenterID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Booking, 0, len(items))
	for _, b := range items {
		out = append(out, dto.MapBooking(b))
	}
	return out, nil
}

var (
	_ queries.Handler[GetBookingQuery, dto.Booking]           = (*GetBookingHandler)(nil)
	_ queries.Handler[ListRenterBookingsQuery, []dto.Booking] = (*ListRenterBookingsHandler)(nil)
)
