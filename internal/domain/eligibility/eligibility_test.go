package eligibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rentbook/internal/domain/eligibility"
	"rentbook/internal/domain/listings"
)

func TestCheckKYC(t *testing.T) {
	listing := &listings.Listing{RequiresKYC: true}

	for _, status := range []eligibility.KYCStatus{eligibility.KYCNotStarted, eligibility.KYCPending, eligibility.KYCRejected, ""} {
		err := eligibility.Check(listing, eligibility.Renter{ID: "r1", KYC: status}, listings.DeliveryNone)
		assert.ErrorIs(t, err, eligibility.ErrKYCRequired, "status %q", status)
	}
	for _, status := range []eligibility.KYCStatus{eligibility.KYCVerified, eligibility.KYCApproved} {
		assert.NoError(t, eligibility.Check(listing, eligibility.Renter{ID: "r1", KYC: status}, listings.DeliveryNone))
	}

	open := &listings.Listing{}
	assert.NoError(t, eligibility.Check(open, eligibility.Renter{ID: "r1", KYC: eligibility.KYCPending}, listings.DeliveryNone))
}

func TestCheckReportsKYCStatus(t *testing.T) {
	err := eligibility.Check(&listings.Listing{RequiresKYC: true}, eligibility.Renter{KYC: eligibility.KYCPending}, listings.DeliveryNone)
	rej, ok := err.(*eligibility.Rejection)
	if assert.True(t, ok) {
		assert.Equal(t, eligibility.KYCPending, rej.KYC)
	}
}

func TestCheckDeliveryChoice(t *testing.T) {
	listing := &listings.Listing{Delivery: listings.DeliveryOptions{PickupAvailable: true}}
	renter := eligibility.Renter{ID: "r1"}

	assert.ErrorIs(t, eligibility.Check(listing, renter, listings.DeliveryNone), eligibility.ErrDeliveryRequired)
	assert.ErrorIs(t, eligibility.Check(listing, renter, listings.DeliveryDelivery), eligibility.ErrDeliveryNotOffered)
	assert.NoError(t, eligibility.Check(listing, renter, listings.DeliveryPickup))
}

func TestKYCBlocksBeforeDelivery(t *testing.T) {
	listing := &listings.Listing{RequiresKYC: true, Delivery: listings.DeliveryOptions{PickupAvailable: true}}
	err := eligibility.Check(listing, eligibility.Renter{KYC: eligibility.KYCPending}, listings.DeliveryNone)
	assert.ErrorIs(t, err, eligibility.ErrKYCRequired)
}

func TestParseKYCStatus(t *testing.T) {
	s, err := eligibility.ParseKYCStatus("approved")
	assert.NoError(t, err)
	assert.Equal(t, eligibility.KYCApproved, s)

	_, err = eligibility.ParseKYCStatus("maybe")
	assert.Error(t, err)
}

func TestCheckWithoutHandOverOptions(t *testing.T) {
	listing := &listings.Listing{}
	renter := eligibility.Renter{ID: "r1"}

	assert.NoError(t, eligibility.Check(listing, renter, listings.DeliveryNone))
	assert.ErrorIs(t, eligibility.Check(listing, renter, listings.DeliveryDelivery), eligibility.ErrDeliveryNotOffered)
	assert.ErrorIs(t, eligibility.Check(listing, renter, listings.DeliveryPickup), eligibility.ErrDeliveryNotOffered)
}
