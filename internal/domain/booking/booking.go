package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentbook/internal/domain/cancellation"
	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/events"
	"rentbook/internal/domain/shared/money"
)

var (
	ErrBookingNotFound = errors.New("booking: not found")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrRenterRequired  = errors.New("booking: renter id required")
	ErrNotParticipant  = errors.New("booking: caller is not a participant")
)

type BookingID string

type State string

const (
	StatePending   State = "PENDING"
	StateConfirmed State = "CONFIRMED"
	StateDeclined  State = "DECLINED"
	StateCancelled State = "CANCELLED"
	StateCompleted State = "COMPLETED"
)

// Booking is the persisted form of an accepted PricedBooking.
type Booking struct {
	ID              BookingID
	ListingID       listings.ListingID
	HostID          listings.HostID
	RenterID        string
	Price           pricing.PricedBooking
	State           State
	Cancellation    *CancellationOutcome
	DepositReleased bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByRenter(ctx context.Context, renterID string) ([]*Booking, error)
	// Overlapping returns pending and confirmed bookings of the listing whose
	// window intersects dr.
	Overlapping(ctx context.Context, listingID listings.ListingID, dr daterange.DateRange) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	HostID    listings.HostID
	RenterID  string
	Price     pricing.PricedBooking
	CreatedAt time.Time
}

// NewBooking accepts a server-side priced booking. Instant-book listings are
// confirmed right away; the rest wait for the lister.
func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.RenterID) == "" {
		return nil, ErrRenterRequired
	}
	if err := params.Price.Verify(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		ListingID: params.Price.ListingID,
		HostID:    params.HostID,
		RenterID:  params.RenterID,
		Price:     params.Price,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingRequested{
		BookingID: b.ID,
		ListingID: b.ListingID,
		RenterID:  b.RenterID,
		Start:     b.Price.Range.Start,
		End:       b.Price.Range.End,
		Quantity:  b.Price.Quantity,
		Total:     b.Price.Total,
		Deposit:   b.Price.Deposit,
		At:        now,
	})
	if params.Price.InstantlyBookable {
		b.confirm(now)
	}
	return b, nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.confirm(now.UTC())
	return nil
}

func (b *Booking) confirm(now time.Time) {
	b.State = StateConfirmed
	b.UpdatedAt = now
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Total: b.Price.Total, At: now})
}

func (b *Booking) Decline(reason string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateDeclined
	b.UpdatedAt = now.UTC()
	b.Record(BookingDeclined{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// CancellationOutcome splits the booking money after a cancellation.
type CancellationOutcome struct {
	Refund cancellation.Refund
	// Refunded and Retained partition Subtotal+ServiceFee.
	Refunded money.Money
	Retained money.Money
	// DepositReleased is the hold returned with the cancellation; zero when the
	// rental already started and the deposit waits for the item's return.
	DepositReleased money.Money
	CancelledAt     time.Time
	Reason          string
}

// PreviewCancellation computes the outcome of cancelling at now without changing state.
func (b *Booking) PreviewCancellation(now time.Time) (CancellationOutcome, error) {
	switch b.State {
	case StatePending, StateConfirmed:
	default:
		return CancellationOutcome{}, ErrInvalidState
	}
	refund, err := cancellation.Resolve(b.Price.CancellationPolicy, now, b.Price.Range.Start)
	if err != nil {
		return CancellationOutcome{}, err
	}
	base := b.Price.RefundableBase()
	refunded := base.Portion(money.Percent(int64(refund.Percent)))
	retained, err := base.Sub(refunded)
	if err != nil {
		return CancellationOutcome{}, err
	}
	deposit := money.Zero(b.Price.Currency)
	if now.Before(b.Price.Range.Start) {
		deposit = b.Price.Deposit
	}
	return CancellationOutcome{
		Refund:          refund,
		Refunded:        refunded,
		Retained:        retained,
		DepositReleased: deposit,
		CancelledAt:     now.UTC(),
	}, nil
}

func (b *Booking) Cancel(reason string, now time.Time) (CancellationOutcome, error) {
	outcome, err := b.PreviewCancellation(now)
	if err != nil {
		return CancellationOutcome{}, err
	}
	outcome.Reason = strings.TrimSpace(reason)
	b.State = StateCancelled
	b.Cancellation = &outcome
	b.DepositReleased = !outcome.DepositReleased.IsZero() || b.Price.Deposit.IsZero()
	b.UpdatedAt = outcome.CancelledAt
	b.Record(BookingCancelled{
		BookingID:     b.ID,
		RefundPercent: outcome.Refund.Percent,
		Refunded:      outcome.Refunded,
		Retained:      outcome.Retained,
		Reason:        outcome.Reason,
		At:            b.UpdatedAt,
	})
	if !outcome.DepositReleased.IsZero() {
		b.Record(DepositReleased{BookingID: b.ID, Amount: outcome.DepositReleased, At: b.UpdatedAt})
	}
	return outcome, nil
}

// Complete marks the item as returned and releases the deposit.
func (b *Booking) Complete(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, At: b.UpdatedAt})
	b.releaseDeposit(b.UpdatedAt)
	return nil
}

// ReleaseDeposit returns a deposit still held after a cancellation during the
// rental, once the item is back. Releasing twice is a no-op.
func (b *Booking) ReleaseDeposit(now time.Time) error {
	if b.State != StateCancelled && b.State != StateCompleted {
		return ErrInvalidState
	}
	b.releaseDeposit(now.UTC())
	return nil
}

func (b *Booking) releaseDeposit(now time.Time) {
	if b.DepositReleased {
		return
	}
	b.DepositReleased = true
	if b.Price.Deposit.IsZero() {
		return
	}
	b.UpdatedAt = now
	b.Record(DepositReleased{BookingID: b.ID, Amount: b.Price.Deposit, At: now})
}

// Involves reports whether the user is the renter or the host of the booking.
func (b *Booking) Involves(userID string) bool {
	return userID != "" && (userID == b.RenterID || userID == string(b.HostID))
}

// Holds reports whether the booking still reserves its units.
func (b *Booking) Holds() bool {
	return b.State == StatePending || b.State == StateConfirmed
}

// ReservedUnits is the peak number of units held by bs on any day of window.
func ReservedUnits(bs []*Booking, window daterange.DateRange) int {
	peak := 0
	window.EachDay(func(day time.Time) bool {
		held := 0
		for _, b := range bs {
			if b.Holds() && b.Price.Range.Overlaps(daterange.OfDays(day, 1)) {
				held += b.Price.Quantity
			}
		}
		if held > peak {
			peak = held
		}
		return true
	})
	return peak
}
