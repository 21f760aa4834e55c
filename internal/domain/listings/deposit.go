package listings

import (
	"errors"
	"strings"

	"rentbook/internal/domain/shared/money"
)

var (
	ErrDepositType  = errors.New("listings: unknown deposit type")
	ErrDepositValue = errors.New("listings: deposit value out of range")
)

type DepositType string

const (
	DepositFixed      DepositType = "FIXED"
	DepositPercentage DepositType = "PERCENTAGE"
)

// MaxDepositPercent caps percentage deposits at the priced subtotal.
const MaxDepositPercent = 100

// DepositPolicy stores Value in minor units for FIXED and as a whole
// percentage of the subtotal for PERCENTAGE. A zero value means no deposit.
type DepositPolicy struct {
	Type  DepositType
	Value int64
}

func ParseDepositType(raw string) (DepositType, error) {
	switch DepositType(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", DepositFixed:
		return DepositFixed, nil
	case DepositPercentage:
		return DepositPercentage, nil
	default:
		return "", ErrDepositType
	}
}

func (p DepositPolicy) Validate(string) error {
	if p.Value < 0 {
		return ErrDepositValue
	}
	switch p.Type {
	case DepositFixed, "":
		return nil
	case DepositPercentage:
		if p.Value > MaxDepositPercent {
			return ErrDepositValue
		}
		return nil
	default:
		return ErrDepositType
	}
}

// FixedAmount is the per-unit deposit for FIXED policies.
func (p DepositPolicy) FixedAmount(currency string) money.Money {
	return money.Money{Amount: p.Value, Currency: currency}
}
