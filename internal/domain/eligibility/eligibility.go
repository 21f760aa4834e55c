package eligibility

import (
	"errors"
	"fmt"
	"strings"

	"rentbook/internal/domain/listings"
)

var ErrUnknownKYCStatus = errors.New("eligibility: unknown kyc status")

type KYCStatus string

const (
	KYCNotStarted KYCStatus = "NOT_STARTED"
	KYCPending    KYCStatus = "PENDING"
	KYCVerified   KYCStatus = "VERIFIED"
	KYCApproved   KYCStatus = "APPROVED"
	KYCRejected   KYCStatus = "REJECTED"
)

// ParseKYCStatus normalizes casing; an empty value is NOT_STARTED.
func ParseKYCStatus(raw string) (KYCStatus, error) {
	s := KYCStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case "":
		return KYCNotStarted, nil
	case KYCNotStarted, KYCPending, KYCVerified, KYCApproved, KYCRejected:
		return s, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKYCStatus, raw)
	}
}

func (s KYCStatus) Passed() bool {
	return s == KYCVerified || s == KYCApproved
}

// Renter is the eligibility snapshot supplied by the profile service.
type Renter struct {
	ID  string
	KYC KYCStatus
}

type Reason string

const (
	ReasonKYCRequired        Reason = "kyc_required"
	ReasonDeliveryRequired   Reason = "delivery_choice_required"
	ReasonDeliveryNotOffered Reason = "delivery_option_unavailable"
)

type Rejection struct {
	Reason Reason
	KYC    KYCStatus
	Choice listings.DeliveryChoice
}

var (
	ErrKYCRequired        = &Rejection{Reason: ReasonKYCRequired}
	ErrDeliveryRequired   = &Rejection{Reason: ReasonDeliveryRequired}
	ErrDeliveryNotOffered = &Rejection{Reason: ReasonDeliveryNotOffered}
)

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonKYCRequired:
		return fmt.Sprintf("eligibility: listing requires verified identity, status is %s", r.KYC)
	case ReasonDeliveryRequired:
		return "eligibility: a pickup or delivery choice is required"
	case ReasonDeliveryNotOffered:
		return fmt.Sprintf("eligibility: listing does not offer %s", r.Choice)
	default:
		return "eligibility: blocked"
	}
}

func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}

// Check blocks renters without passed KYC on listings that require it, then
// insists on an explicit hand-over choice the listing actually offers. A
// listing offering no hand-over accepts only an empty choice.
func Check(listing *listings.Listing, renter Renter, choice listings.DeliveryChoice) error {
	if listing.RequiresKYC && !renter.KYC.Passed() {
		status := renter.KYC
		if status == "" {
			status = KYCNotStarted
		}
		return &Rejection{Reason: ReasonKYCRequired, KYC: status}
	}
	if choice == listings.DeliveryNone {
		if listing.Delivery.Offered() {
			return &Rejection{Reason: ReasonDeliveryRequired}
		}
		return nil
	}
	if !listing.Delivery.Supports(choice) {
		return &Rejection{Reason: ReasonDeliveryNotOffered, Choice: choice}
	}
	return nil
}
