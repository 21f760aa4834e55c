package cancellation

import (
	"errors"
	"strings"
	"time"
)

var ErrUnknownPolicy = errors.New("cancellation: unknown policy")

type Policy string

const (
	Flexible Policy = "FLEXIBLE"
	Moderate Policy = "MODERATE"
	Strict   Policy = "STRICT"
)

// ParsePolicy accepts any casing; an empty value defaults to FLEXIBLE.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", Flexible:
		return Flexible, nil
	case Moderate:
		return Moderate, nil
	case Strict:
		return Strict, nil
	default:
		return "", ErrUnknownPolicy
	}
}

type Reason string

const (
	ReasonFullRefundWindow    Reason = "full_refund_window"
	ReasonPartialRefundWindow Reason = "partial_refund_window"
	ReasonInsideNoRefund      Reason = "inside_no_refund_window"
	ReasonAfterStart          Reason = "after_start"
)

// Refund is the share of subtotal plus service fee returned to the renter.
// Deposits are not governed by it.
type Refund struct {
	Percent int
	Reason  Reason
	// NoticeGiven is how long before the start the cancellation happened.
	NoticeGiven time.Duration
}

type tier struct {
	minNotice time.Duration
	percent   int
	reason    Reason
}

const day = 24 * time.Hour

// Tiers are ordered from the longest notice to the shortest.
var schedule = map[Policy][]tier{
	Flexible: {
		{minNotice: 1 * day, percent: 100, reason: ReasonFullRefundWindow},
	},
	Moderate: {
		{minNotice: 5 * day, percent: 100, reason: ReasonFullRefundWindow},
		{minNotice: 0, percent: 50, reason: ReasonPartialRefundWindow},
	},
	Strict: {
		{minNotice: 7 * day, percent: 50, reason: ReasonPartialRefundWindow},
	},
}

// Resolve maps a policy and the time left before start to a refund percentage.
func Resolve(policy Policy, cancelledAt, start time.Time) (Refund, error) {
	tiers, ok := schedule[policy]
	if !ok {
		return Refund{}, ErrUnknownPolicy
	}
	notice := start.UTC().Sub(cancelledAt.UTC())
	if notice <= 0 {
		return Refund{Percent: 0, Reason: ReasonAfterStart, NoticeGiven: notice}, nil
	}
	for _, t := range tiers {
		if notice >= t.minNotice {
			return Refund{Percent: t.percent, Reason: t.reason, NoticeGiven: notice}, nil
		}
	}
	return Refund{Percent: 0, Reason: ReasonInsideNoRefund, NoticeGiven: notice}, nil
}
