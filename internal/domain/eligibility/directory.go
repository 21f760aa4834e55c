package eligibility

import (
	"context"
	"errors"
)

var ErrRenterNotFound = errors.New("eligibility: renter not found")

// Directory stores the KYC snapshot of renters. Pricing only ever reads it;
// the status itself is owned by the identity verification flow.
type Directory interface {
	Renter(ctx context.Context, id string) (Renter, error)
	Save(ctx context.Context, renter Renter) error
}
