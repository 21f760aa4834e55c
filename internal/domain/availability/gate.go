package availability

import (
	"errors"
	"sort"
	"time"

	"rentbook/internal/domain/shared/daterange"
)

var (
	ErrStayRange         = errors.New("availability: min stay must be <= max stay")
	ErrNegativeDays      = errors.New("availability: day counts must not be negative")
	ErrNoBookableWeekday = errors.New("availability: at least one weekday must be bookable")
)

// Rules is the per-listing availability configuration.
type Rules struct {
	AdvanceNoticeDays int
	MinStayDays       int
	// MaxStayDays of zero means unbounded.
	MaxStayDays int
	Weekdays    WeekdaySet
	Blackouts   []Blackout
}

func (r Rules) Validate() error {
	if r.AdvanceNoticeDays < 0 || r.MinStayDays < 0 || r.MaxStayDays < 0 {
		return ErrNegativeDays
	}
	if r.MaxStayDays > 0 && r.MinStayDays > r.MaxStayDays {
		return ErrStayRange
	}
	if r.Weekdays&EveryDay == 0 {
		return ErrNoBookableWeekday
	}
	for _, b := range r.Blackouts {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r Rules) minStay() int {
	if r.MinStayDays < 1 {
		return 1
	}
	return r.MinStayDays
}

// Gate validates rental windows against Rules.
type Gate struct {
	// Horizon bounds recurring blackout expansion; zero means DefaultHorizon.
	Horizon time.Duration
}

// Check runs the checks in order and returns the first *Rejection, or nil.
// Non-rejection errors come from malformed recurrence rules.
func (g Gate) Check(rules Rules, window daterange.DateRange, now time.Time) error {
	earliest := daterange.Truncate(now).AddDate(0, 0, rules.AdvanceNoticeDays)
	if daterange.Truncate(window.Start).Before(earliest) {
		return &Rejection{Reason: ReasonAdvanceNotice, Day: earliest}
	}
	days := window.Days()
	if minDays := rules.minStay(); days < minDays {
		return &Rejection{Reason: ReasonMinDays, Limit: minDays, Actual: days}
	}
	if rules.MaxStayDays > 0 && days > rules.MaxStayDays {
		return &Rejection{Reason: ReasonMaxDays, Limit: rules.MaxStayDays, Actual: days}
	}
	weekdays := rules.Weekdays
	if weekdays == 0 {
		weekdays = EveryDay
	}
	var disabled time.Time
	window.EachDay(func(day time.Time) bool {
		if !weekdays.Has(day.Weekday()) {
			disabled = day
			return false
		}
		return true
	})
	if !disabled.IsZero() {
		return &Rejection{Reason: ReasonDayDisabled, Day: disabled}
	}
	blocked, err := g.Blackouts(rules, window, now)
	if err != nil {
		return err
	}
	if len(blocked) > 0 {
		first := blocked[0].Start
		if first.Before(window.Start) {
			first = daterange.Truncate(window.Start)
		}
		return &Rejection{Reason: ReasonBlackout, Day: first}
	}
	return nil
}

// Blackouts expands every blackout intersecting window, sorted by start.
func (g Gate) Blackouts(rules Rules, window daterange.DateRange, now time.Time) ([]daterange.DateRange, error) {
	limit := now.UTC().Add(g.horizon())
	var out []daterange.DateRange
	for _, b := range rules.Blackouts {
		occ, err := b.Occurrences(window, limit)
		if err != nil {
			return nil, err
		}
		out = append(out, occ...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (g Gate) horizon() time.Duration {
	if g.Horizon <= 0 {
		return DefaultHorizon
	}
	return g.Horizon
}
