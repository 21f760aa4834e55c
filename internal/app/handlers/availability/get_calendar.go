package availability

import (
	"context"
	"errors"
	"time"

	"rentbook/internal/app/dto"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
)

// MaxCalendarDays bounds a single calendar request.
const MaxCalendarDays = 366

const ReasonFullyBooked = "fully_booked"

var ErrCalendarWindow = errors.New("availability: calendar window must span 1 to 366 days")

type GetCalendarQuery struct {
	ListingID string
	From      time.Time
	To        time.Time
}

func (GetCalendarQuery) Key() string { return "availability.calendar" }

func (q GetCalendarQuery) window() daterange.DateRange {
	return daterange.DateRange{Start: daterange.Truncate(q.From), End: daterange.Truncate(q.To)}
}

func (q GetCalendarQuery) Validate() error {
	w := q.window()
	if w.Validate() != nil || w.Days() > MaxCalendarDays {
		return ErrCalendarWindow
	}
	return nil
}

// GetCalendarHandler explains day by day which dates of a window can start
// or continue a rental.
type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Gate       domainavailability.Gate
	Clock      policies.Clock
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	defer release()

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Calendar{}, err
	}
	window := q.window()
	now := h.Clock.Now()
	blackouts, err := h.Gate.Blackouts(listing.Availability, window, now)
	if err != nil {
		return dto.Calendar{}, err
	}
	held, err := unit.Bookings().Overlapping(ctx, listing.ID, window)
	if err != nil {
		return dto.Calendar{}, err
	}

	rules := listing.Availability
	earliest := daterange.Truncate(now).AddDate(0, 0, rules.AdvanceNoticeDays)
	cal := dto.Calendar{
		ListingID: string(listing.ID),
		From:      window.Start,
		To:        window.End,
		Days:      make([]dto.CalendarDay, 0, window.Days()),
		Blackouts: make([]dto.CalendarBlock, 0, len(blackouts)),
	}
	for _, b := range blackouts {
		cal.Blackouts = append(cal.Blackouts, dto.CalendarBlock{From: b.Start, To: b.End})
	}
	window.EachDay(func(day time.Time) bool {
		entry := dto.CalendarDay{Date: day.Format(time.DateOnly), Available: true}
		switch {
		case day.Before(earliest):
			entry.Reason = string(domainavailability.ReasonAdvanceNotice)
		case rules.Weekdays != 0 && !rules.Weekdays.Has(day.Weekday()):
			entry.Reason = string(domainavailability.ReasonDayDisabled)
		case blackedOut(blackouts, day):
			entry.Reason = string(domainavailability.ReasonBlackout)
		case domainbooking.ReservedUnits(held, daterange.OfDays(day, 1)) >= listing.Quantity:
			entry.Reason = ReasonFullyBooked
		}
		entry.Available = entry.Reason == ""
		cal.Days = append(cal.Days, entry)
		return true
	})
	return cal, nil
}

func blackedOut(blocks []daterange.DateRange, day time.Time) bool {
	for _, b := range blocks {
		if b.Overlaps(daterange.OfDays(day, 1)) {
			return true
		}
	}
	return false
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
