package booking

import (
	"context"
	"errors"
	"strings"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
)

type Decision string

const (
	DecisionConfirm        Decision = "confirm"
	DecisionDecline        Decision = "decline"
	DecisionComplete       Decision = "complete"
	DecisionReleaseDeposit Decision = "release_deposit"
)

var ErrUnknownDecision = errors.New("booking: unknown host decision")

// HostDecisionCommand moves a booking through the lister-owned transitions.
type HostDecisionCommand struct {
	BookingID string
	HostID    string
	Decision  Decision
	Reason    string
}

func (HostDecisionCommand) Key() string { return "booking.host_decision" }

func (c HostDecisionCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return ErrBookingRequired
	}
	switch c.Decision {
	case DecisionConfirm, DecisionDecline, DecisionComplete, DecisionReleaseDeposit:
		return nil
	default:
		return ErrUnknownDecision
	}
}

type HostDecisionHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   policies.Clock
}

func (h *HostDecisionHandler) Handle(ctx context.Context, cmd HostDecisionCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if cmd.HostID == "" || string(b.HostID) != cmd.HostID {
		return nil, domainbooking.ErrNotParticipant
	}
	now := h.Clock.Now()
	switch cmd.Decision {
	case DecisionConfirm:
		err = b.Confirm(now)
	case DecisionDecline:
		err = b.Decline(cmd.Reason, now)
	case DecisionComplete:
		err = b.Complete(now)
	case DecisionReleaseDeposit:
		err = b.ReleaseDeposit(now)
	}
	if err != nil {
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

var _ commands.Handler[HostDecisionCommand, *dto.Booking] = (*HostDecisionHandler)(nil)
