package renters

import (
	"context"
	"strings"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/uow"
	domaineligibility "rentbook/internal/domain/eligibility"
)

// SetKYCCommand records the verification status reported by the identity
// provider for a renter.
type SetKYCCommand struct {
	RenterID string
	Status   string
}

func (SetKYCCommand) Key() string { return "renter.set_kyc" }

func (c SetKYCCommand) Validate() error {
	if strings.TrimSpace(c.RenterID) == "" {
		return ErrRenterRequired
	}
	_, err := domaineligibility.ParseKYCStatus(c.Status)
	return err
}

type SetKYCResult struct {
	RenterID string `json:"renter_id"`
	KYC      string `json:"kyc_status"`
}

type SetKYCHandler struct{}

func (SetKYCHandler) Handle(ctx context.Context, cmd SetKYCCommand) (*SetKYCResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	status, err := domaineligibility.ParseKYCStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	renter := domaineligibility.Renter{ID: strings.TrimSpace(cmd.RenterID), KYC: status}
	if err := unit.Renters().Save(ctx, renter); err != nil {
		return nil, err
	}
	return &SetKYCResult{RenterID: renter.ID, KYC: string(renter.KYC)}, nil
}

var _ commands.Handler[SetKYCCommand, *SetKYCResult] = SetKYCHandler{}
