package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownWeekday = errors.New("availability: unknown weekday")

// WeekdaySet is a bit set of bookable weekdays; bit i stands for time.Weekday(i).
type WeekdaySet uint8

const (
	EveryDay     WeekdaySet = 0x7f
	WeekendsOnly WeekdaySet = 1<<time.Saturday | 1<<time.Sunday
	WeekdaysOnly            = EveryDay &^ WeekendsOnly
)

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << d
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<d) != 0
}

func (s WeekdaySet) Days() []time.Weekday {
	out := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Names returns lowercase three-letter weekday names, Sunday first.
func (s WeekdaySet) Names() []string {
	days := s.Days()
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, strings.ToLower(d.String()[:3]))
	}
	return out
}

// ParseWeekdays accepts short or long English weekday names plus the
// shorthands "weekdays", "weekends" and "all".
func ParseWeekdays(names []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "":
			continue
		case "all", "everyday":
			s |= EveryDay
			continue
		case "weekdays":
			s |= WeekdaysOnly
			continue
		case "weekends":
			s |= WeekendsOnly
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			full := strings.ToLower(d.String())
			if name == full || name == full[:3] {
				s |= 1 << d
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w %q", ErrUnknownWeekday, raw)
		}
	}
	return s, nil
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return isWeekend(t.UTC().Weekday())
}
