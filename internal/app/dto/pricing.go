package dto

import (
	"time"

	domainpricing "rentbook/internal/domain/pricing"
)

// Quote is the price breakdown shown before and stored with a booking.
type Quote struct {
	ListingID           string    `json:"listing_id"`
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	Days                int       `json:"days"`
	Quantity            int       `json:"quantity"`
	Delivery            string    `json:"delivery,omitempty"`
	Tier                string    `json:"tier"`
	UnitRate            MoneyDTO  `json:"unit_rate"`
	WeekendDays         int       `json:"weekend_days,omitempty"`
	Subtotal            MoneyDTO  `json:"subtotal"`
	ServiceFee          MoneyDTO  `json:"service_fee"`
	DeliveryFee         MoneyDTO  `json:"delivery_fee"`
	DeliveryDistanceKm  float64   `json:"delivery_distance_km,omitempty"`
	Deposit             MoneyDTO  `json:"deposit"`
	Total               MoneyDTO  `json:"total"`
	DueExcludingDeposit MoneyDTO  `json:"due_excluding_deposit"`
	InstantBook         bool      `json:"instant_book"`
	CancellationPolicy  string    `json:"cancellation_policy"`
}

func MapQuote(p domainpricing.PricedBooking) Quote {
	return Quote{
		ListingID:           string(p.ListingID),
		Start:               p.Range.Start,
		End:                 p.Range.End,
		Days:                p.Days,
		Quantity:            p.Quantity,
		Delivery:            string(p.Delivery),
		Tier:                string(p.Tier),
		UnitRate:            MapMoney(p.UnitRate),
		WeekendDays:         p.WeekendDays,
		Subtotal:            MapMoney(p.Subtotal),
		ServiceFee:          MapMoney(p.ServiceFee),
		DeliveryFee:         MapMoney(p.DeliveryFee),
		DeliveryDistanceKm:  p.DeliveryDistanceKm,
		Deposit:             MapMoney(p.Deposit),
		Total:               MapMoney(p.Total),
		DueExcludingDeposit: MapMoney(p.DueExcludingDeposit()),
		InstantBook:         p.InstantlyBookable,
		CancellationPolicy:  string(p.CancellationPolicy),
	}
}
