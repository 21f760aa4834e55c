package booking

import (
	"context"
	"strings"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
)

type CancelBookingCommand struct {
	BookingID string
	UserID    string
	Reason    string
}

func (CancelBookingCommand) Key() string { return "booking.cancel" }

func (c CancelBookingCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return ErrBookingRequired
	}
	return nil
}

type CancelBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   policies.Clock
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	b, err := loadForParticipant(ctx, unit, cmd.BookingID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := b.Cancel(cmd.Reason, h.Clock.Now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.Drain()); err != nil {
		return nil, err
	}
	out := dto.MapBooking(b)
	return &out, nil
}

func loadForParticipant(ctx context.Context, unit uow.UnitOfWork, id, userID string) (*domainbooking.Booking, error) {
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
	if err != nil {
		return nil, err
	}
	if !b.Involves(userID) {
		return nil, domainbooking.ErrNotParticipant
	}
	return b, nil
}

var _ commands.Handler[CancelBookingCommand, *dto.Booking] = (*CancelBookingHandler)(nil)
