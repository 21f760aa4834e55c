package dto

import (
	"time"

	domainbooking "rentbook/internal/domain/booking"
)

type Booking struct {
	ID              string        `json:"id"`
	ListingID       string        `json:"listing_id"`
	HostID          string        `json:"host_id"`
	RenterID        string        `json:"renter_id"`
	State           string        `json:"state"`
	Quote           Quote         `json:"quote"`
	Cancellation    *Cancellation `json:"cancellation,omitempty"`
	DepositReleased bool          `json:"deposit_released"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Cancellation is both the refund preview and the settled outcome.
type Cancellation struct {
	RefundPercent   int       `json:"refund_percent"`
	Reason          string    `json:"reason"`
	NoticeHours     float64   `json:"notice_hours"`
	Refunded        MoneyDTO  `json:"refunded"`
	Retained        MoneyDTO  `json:"retained"`
	DepositReleased MoneyDTO  `json:"deposit_released"`
	CancelledAt     time.Time `json:"cancelled_at"`
	Note            string    `json:"note,omitempty"`
}

func MapCancellation(o domainbooking.CancellationOutcome) Cancellation {
	return Cancellation{
		RefundPercent:   o.Refund.Percent,
		Reason:          string(o.Refund.Reason),
		NoticeHours:     o.Refund.NoticeGiven.Hours(),
		Refunded:        MapMoney(o.Refunded),
		Retained:        MapMoney(o.Retained),
		DepositReleased: MapMoney(o.DepositReleased),
		CancelledAt:     o.CancelledAt,
		Note:            o.Reason,
	}
}

func MapBooking(b *domainbooking.Booking) Booking {
	out := Booking{
		ID:              string(b.ID),
		ListingID:       string(b.ListingID),
		HostID:          string(b.HostID),
		RenterID:        b.RenterID,
		State:           string(b.State),
		Quote:           MapQuote(b.Price),
		DepositReleased: b.DepositReleased,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Cancellation != nil {
		c := MapCancellation(*b.Cancellation)
		out.Cancellation = &c
	}
	return out
}
