package availability

import (
	"fmt"
	"time"
)

type Reason string

const (
	ReasonAdvanceNotice Reason = "advance_notice"
	ReasonMinDays       Reason = "min_days"
	ReasonMaxDays       Reason = "max_days"
	ReasonDayDisabled   Reason = "day_disabled"
	ReasonBlackout      Reason = "blackout_overlap"
)

// Rejection explains why a window failed the gate. Match it with errors.Is
// against the Err* sentinels or unpack it with errors.As.
type Rejection struct {
	Reason Reason
	// Day is the first offending calendar day, or the earliest allowed start for advance notice.
	Day time.Time
	// Limit and Actual carry the stay bounds for min/max rejections.
	Limit  int
	Actual int
}

var (
	ErrAdvanceNotice = &Rejection{Reason: ReasonAdvanceNotice}
	ErrMinDays       = &Rejection{Reason: ReasonMinDays}
	ErrMaxDays       = &Rejection{Reason: ReasonMaxDays}
	ErrDayDisabled   = &Rejection{Reason: ReasonDayDisabled}
	ErrBlackout      = &Rejection{Reason: ReasonBlackout}
)

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonAdvanceNotice:
		return fmt.Sprintf("availability: start must be on or after %s", r.Day.Format(time.DateOnly))
	case ReasonMinDays:
		return fmt.Sprintf("availability: minimum stay is %d days, got %d", r.Limit, r.Actual)
	case ReasonMaxDays:
		return fmt.Sprintf("availability: maximum stay is %d days, got %d", r.Limit, r.Actual)
	case ReasonDayDisabled:
		return fmt.Sprintf("availability: %s is not bookable", r.Day.Format(time.DateOnly))
	case ReasonBlackout:
		return fmt.Sprintf("availability: %s is blacked out", r.Day.Format(time.DateOnly))
	default:
		return "availability: rejected"
	}
}

func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}
