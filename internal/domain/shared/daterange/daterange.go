package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: end must be after start")

const Day = 24 * time.Hour

// DateRange is the half-open rental window [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: start.UTC(), End: end.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days is the rental duration in whole days, rounded up. Invalid ranges yield 0.
func (dr DateRange) Days() int {
	if dr.Validate() != nil {
		return 0
	}
	span := dr.End.Sub(dr.Start)
	days := int(span / Day)
	if span%Day != 0 {
		days++
	}
	return days
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return !t.Before(dr.Start) && t.Before(dr.End)
}

// EachDay calls fn with the midnight of every calendar day touched by the range.
// Iteration stops early when fn returns false.
func (dr DateRange) EachDay(fn func(day time.Time) bool) {
	for day := Truncate(dr.Start); day.Before(dr.End); day = day.Add(Day) {
		if !fn(day) {
			return
		}
	}
}

// Truncate drops the time of day, keeping the UTC calendar date.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OfDays builds a range starting at the given date and spanning n whole days.
func OfDays(start time.Time, n int) DateRange {
	s := Truncate(start)
	return DateRange{Start: s, End: s.AddDate(0, 0, n)}
}
