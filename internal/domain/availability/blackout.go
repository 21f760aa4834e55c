package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"rentbook/internal/domain/shared/daterange"
)

var (
	ErrBlackoutRule  = errors.New("availability: invalid recurrence rule")
	ErrBlackoutKind  = errors.New("availability: unknown blackout kind")
	ErrBlackoutRange = errors.New("availability: blackout range is empty")
)

// DefaultHorizon caps how far recurring blackouts are expanded past "now".
const DefaultHorizon = 2 * 365 * daterange.Day

// maxOccurrences bounds a single expansion regardless of the rule.
const maxOccurrences = 1000

type BlackoutKind string

const (
	BlackoutExplicit  BlackoutKind = "explicit"
	BlackoutRecurring BlackoutKind = "recurring"
)

// Blackout is either an explicit [Start, End) range or a recurring cron rule
// whose every firing day blocks SpanDays consecutive days.
type Blackout struct {
	Kind     BlackoutKind
	Range    daterange.DateRange
	Rule     string
	SpanDays int
	Note     string
}

func ExplicitBlackout(r daterange.DateRange, note string) (Blackout, error) {
	if err := r.Validate(); err != nil {
		return Blackout{}, ErrBlackoutRange
	}
	return Blackout{Kind: BlackoutExplicit, Range: r, Note: note}, nil
}

// RecurringBlackout takes a standard five-field cron expression or a
// descriptor such as "@monthly".
func RecurringBlackout(rule string, spanDays int, note string) (Blackout, error) {
	b := Blackout{Kind: BlackoutRecurring, Rule: strings.TrimSpace(rule), SpanDays: spanDays, Note: note}
	if err := b.Validate(); err != nil {
		return Blackout{}, err
	}
	return b, nil
}

func (b Blackout) Validate() error {
	switch b.Kind {
	case BlackoutExplicit:
		if b.Range.Validate() != nil {
			return ErrBlackoutRange
		}
		return nil
	case BlackoutRecurring:
		if _, err := parseRule(b.Rule); err != nil {
			return err
		}
		if b.SpanDays < 0 {
			return fmt.Errorf("%w: span must not be negative", ErrBlackoutRule)
		}
		return nil
	default:
		return ErrBlackoutKind
	}
}

// Occurrences returns the blocked ranges of b that intersect window. Recurring
// rules are expanded only up to limit.
func (b Blackout) Occurrences(window daterange.DateRange, limit time.Time) ([]daterange.DateRange, error) {
	switch b.Kind {
	case BlackoutExplicit:
		if b.Range.Overlaps(window) {
			return []daterange.DateRange{b.Range}, nil
		}
		return nil, nil
	case BlackoutRecurring:
		return b.expand(window, limit)
	default:
		return nil, ErrBlackoutKind
	}
}

func (b Blackout) span() int {
	if b.SpanDays <= 0 {
		return 1
	}
	return b.SpanDays
}

func (b Blackout) expand(window daterange.DateRange, limit time.Time) ([]daterange.DateRange, error) {
	sched, err := parseRule(b.Rule)
	if err != nil {
		return nil, err
	}
	end := window.End
	if !limit.IsZero() && limit.Before(end) {
		end = limit
	}
	span := b.span()
	// Occurrences starting up to span-1 days before the window can still reach into it.
	cursor := daterange.Truncate(window.Start).AddDate(0, 0, -span).Add(-time.Second)
	var out []daterange.DateRange
	for i := 0; i < maxOccurrences; i++ {
		next := sched.Next(cursor)
		if next.IsZero() {
			break
		}
		day := daterange.Truncate(next)
		if !day.Before(end) {
			break
		}
		occ := daterange.OfDays(day, span)
		if occ.Overlaps(window) {
			out = append(out, occ)
		}
		// Jump to the last second of the firing day so sub-daily rules yield one occurrence per day.
		cursor = day.Add(daterange.Day - time.Second)
	}
	return out, nil
}

var ruleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func parseRule(rule string) (cron.Schedule, error) {
	if strings.TrimSpace(rule) == "" {
		return nil, fmt.Errorf("%w: empty rule", ErrBlackoutRule)
	}
	sched, err := ruleParser.Parse(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlackoutRule, err)
	}
	if spec, ok := sched.(*cron.SpecSchedule); ok {
		spec.Location = time.UTC
	}
	return sched, nil
}
