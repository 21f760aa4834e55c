package listings

import (
	"errors"
	"strings"

	"rentbook/internal/domain/shared/money"
)

var (
	ErrDeliveryFeeType = errors.New("listings: unknown delivery fee type")
	ErrDeliveryFee     = errors.New("listings: delivery fee must not be negative")
	ErrDeliveryChoice  = errors.New("listings: unknown delivery choice")
)

type DeliveryFeeType string

const (
	DeliveryFeeFixed DeliveryFeeType = "fixed"
	DeliveryFeePerKm DeliveryFeeType = "per_km"
)

type DeliveryChoice string

const (
	DeliveryNone     DeliveryChoice = ""
	DeliveryPickup   DeliveryChoice = "pickup"
	DeliveryDelivery DeliveryChoice = "delivery"
)

func ParseDeliveryChoice(raw string) (DeliveryChoice, error) {
	switch DeliveryChoice(strings.ToLower(strings.TrimSpace(raw))) {
	case DeliveryNone:
		return DeliveryNone, nil
	case DeliveryPickup:
		return DeliveryPickup, nil
	case DeliveryDelivery:
		return DeliveryDelivery, nil
	default:
		return "", ErrDeliveryChoice
	}
}

type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// DeliveryOptions is the lister's hand-over configuration. Fee is a flat
// amount for fixed mode and the price per started kilometre for per_km.
type DeliveryOptions struct {
	PickupAvailable   bool
	DeliveryAvailable bool
	FeeType           DeliveryFeeType
	Fee               money.Money
	// RadiusKm of zero means no delivery radius limit.
	RadiusKm float64
	Origin   Coordinates
}

// Offered reports whether the renter has to pick a hand-over option.
func (d DeliveryOptions) Offered() bool {
	return d.PickupAvailable || d.DeliveryAvailable
}

func (d DeliveryOptions) Supports(choice DeliveryChoice) bool {
	switch choice {
	case DeliveryPickup:
		return d.PickupAvailable
	case DeliveryDelivery:
		return d.DeliveryAvailable
	default:
		return false
	}
}

func (d DeliveryOptions) Validate(currency string) error {
	switch d.FeeType {
	case "", DeliveryFeeFixed, DeliveryFeePerKm:
	default:
		return ErrDeliveryFeeType
	}
	if d.Fee.Amount < 0 || d.RadiusKm < 0 {
		return ErrDeliveryFee
	}
	if d.Fee.Amount != 0 && d.Fee.Currency != currency {
		return ErrCurrency
	}
	return nil
}
