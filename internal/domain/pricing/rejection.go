package pricing

import (
	"errors"
	"fmt"

	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/eligibility"
)

type Code string

const (
	CodeListingUnavailable  Code = "listing_unavailable"
	CodeInvalidDateRange    Code = "invalid_date_range"
	CodeEligibilityBlocked  Code = "eligibility_blocked"
	CodeDeliveryRequired    Code = "delivery_choice_required"
	CodeDeliveryUnavailable Code = "delivery_option_unavailable"
	CodeDestinationRequired Code = "delivery_destination_required"
	CodeDeliveryOutOfRange  Code = "delivery_out_of_range"
	CodeInvalidQuantity     Code = "invalid_quantity"
	CodeQuantityExceeded    Code = "quantity_exceeds_available"
	CodeAvailability        Code = "availability_rejected"
)

// Rejection is the expected negative outcome of pricing a request. Gate
// rejections are kept as Cause so errors.Is matches their sentinels too.
type Rejection struct {
	Code       Code
	Cause      error
	KYC        eligibility.KYCStatus
	Requested  int
	Available  int
	DistanceKm float64
	RadiusKm   float64
}

var (
	ErrListingUnavailable  = &Rejection{Code: CodeListingUnavailable}
	ErrInvalidDateRange    = &Rejection{Code: CodeInvalidDateRange}
	ErrEligibilityBlocked  = &Rejection{Code: CodeEligibilityBlocked}
	ErrDeliveryRequired    = &Rejection{Code: CodeDeliveryRequired}
	ErrDeliveryUnavailable = &Rejection{Code: CodeDeliveryUnavailable}
	ErrDestinationRequired = &Rejection{Code: CodeDestinationRequired}
	ErrDeliveryOutOfRange  = &Rejection{Code: CodeDeliveryOutOfRange}
	ErrInvalidQuantity     = &Rejection{Code: CodeInvalidQuantity}
	ErrQuantityExceeded    = &Rejection{Code: CodeQuantityExceeded}
	ErrAvailability        = &Rejection{Code: CodeAvailability}
)

func (r *Rejection) Error() string {
	switch r.Code {
	case CodeQuantityExceeded:
		return fmt.Sprintf("pricing: requested %d units, %d available", r.Requested, r.Available)
	case CodeInvalidQuantity:
		return fmt.Sprintf("pricing: quantity must be at least 1, got %d", r.Requested)
	case CodeDeliveryOutOfRange:
		return fmt.Sprintf("pricing: delivery distance %.1f km exceeds radius %.1f km", r.DistanceKm, r.RadiusKm)
	case CodeDestinationRequired:
		return "pricing: delivery destination is required for distance-based fees"
	case CodeListingUnavailable:
		return "pricing: listing is not bookable"
	case CodeInvalidDateRange:
		return "pricing: end date must be after start date"
	}
	if r.Cause != nil {
		return r.Cause.Error()
	}
	return "pricing: rejected (" + string(r.Code) + ")"
}

func (r *Rejection) Unwrap() error { return r.Cause }

func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Code == r.Code
}

// Reason is the fine-grained machine reason: the gate reason when one
// exists, the code otherwise.
func (r *Rejection) Reason() string {
	var ar *availability.Rejection
	if errors.As(r.Cause, &ar) {
		return string(ar.Reason)
	}
	var er *eligibility.Rejection
	if errors.As(r.Cause, &er) {
		return string(er.Reason)
	}
	return string(r.Code)
}

// IsRejection reports whether err is a business rejection rather than a failure.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

func fromEligibility(err error) error {
	var er *eligibility.Rejection
	if !errors.As(err, &er) {
		return err
	}
	switch er.Reason {
	case eligibility.ReasonDeliveryRequired:
		return &Rejection{Code: CodeDeliveryRequired, Cause: err}
	case eligibility.ReasonDeliveryNotOffered:
		return &Rejection{Code: CodeDeliveryUnavailable, Cause: err}
	default:
		return &Rejection{Code: CodeEligibilityBlocked, Cause: err, KYC: er.KYC}
	}
}

func fromAvailability(err error) error {
	var ar *availability.Rejection
	if !errors.As(err, &ar) {
		return err
	}
	return &Rejection{Code: CodeAvailability, Cause: err}
}
