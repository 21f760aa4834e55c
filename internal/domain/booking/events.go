package booking

import (
	"time"

	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID BookingID          `json:"booking_id"`
	ListingID listings.ListingID `json:"listing_id"`
	RenterID  string             `json:"renter_id"`
	Start     time.Time          `json:"start"`
	End       time.Time          `json:"end"`
	Quantity  int                `json:"quantity"`
	Total     money.Money        `json:"total"`
	Deposit   money.Money        `json:"deposit"`
	At        time.Time          `json:"occurred_at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID          `json:"booking_id"`
	ListingID listings.ListingID `json:"listing_id"`
	Total     money.Money        `json:"total"`
	At        time.Time          `json:"occurred_at"`
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingDeclined struct {
	BookingID BookingID `json:"booking_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"occurred_at"`
}

func (e BookingDeclined) EventName() string     { return "booking.declined" }
func (e BookingDeclined) AggregateID() string   { return string(e.BookingID) }
func (e BookingDeclined) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID     BookingID   `json:"booking_id"`
	RefundPercent int         `json:"refund_percent"`
	Refunded      money.Money `json:"refunded"`
	Retained      money.Money `json:"retained"`
	Reason        string      `json:"reason"`
	At            time.Time   `json:"occurred_at"`
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID `json:"booking_id"`
	At        time.Time `json:"occurred_at"`
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type DepositReleased struct {
	BookingID BookingID   `json:"booking_id"`
	Amount    money.Money `json:"amount"`
	At        time.Time   `json:"occurred_at"`
}

func (e DepositReleased) EventName() string     { return "booking.deposit_released" }
func (e DepositReleased) AggregateID() string   { return string(e.BookingID) }
func (e DepositReleased) OccurredAt() time.Time { return e.At }
