package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domaineligibility "rentbook/internal/domain/eligibility"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/events"
)

// ErrConcurrentUpdate is returned when an aggregate changed since it was loaded.
var ErrConcurrentUpdate = fmt.Errorf("memory: %w", uow.ErrConcurrentUpdate)

// Store keeps every aggregate in process memory. Aggregates are copied in and
// out so callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	listings map[domainlistings.ListingID]*domainlistings.Listing
	bookings map[domainbooking.BookingID]*domainbooking.Booking
	renters  map[string]domaineligibility.Renter
}

func NewStore() *Store {
	return &Store{
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings: make(map[domainbooking.BookingID]*domainbooking.Booking),
		renters:  make(map[string]domaineligibility.Renter),
	}
}

func (s *Store) listing(id domainlistings.ListingID) (*domainlistings.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return l.Clone(), nil
}

func (s *Store) booking(id domainbooking.BookingID) (*domainbooking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (s *Store) renter(id string) (domaineligibility.Renter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.renters[id]
	if !ok {
		return domaineligibility.Renter{}, domaineligibility.ErrRenterNotFound
	}
	return r, nil
}

func (s *Store) bookingsWhere(match func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// changeSet is a batch of writes applied atomically with version checks.
type changeSet struct {
	listings []*domainlistings.Listing
	bookings []*domainbooking.Booking
	renters  []domaineligibility.Renter
}

func (s *Store) apply(cs changeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range cs.listings {
		if current, ok := s.listings[l.ID]; ok && current.Version != l.Version-1 {
			return ErrConcurrentUpdate
		} else if !ok && l.Version != 1 {
			return ErrConcurrentUpdate
		}
	}
	for _, b := range cs.bookings {
		if current, ok := s.bookings[b.ID]; ok && current.Version != b.Version-1 {
			return ErrConcurrentUpdate
		} else if !ok && b.Version != 1 {
			return ErrConcurrentUpdate
		}
	}
	for _, l := range cs.listings {
		s.listings[l.ID] = l
	}
	for _, b := range cs.bookings {
		s.bookings[b.ID] = b
	}
	for _, r := range cs.renters {
		s.renters[r.ID] = r
	}
	return nil
}

// Ping satisfies readiness probes.
func (s *Store) Ping(context.Context) error { return nil }

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	if b.Cancellation != nil {
		c := *b.Cancellation
		cp.Cancellation = &c
	}
	return &cp
}

func overlaps(listingID domainlistings.ListingID, dr daterange.DateRange) func(*domainbooking.Booking) bool {
	return func(b *domainbooking.Booking) bool {
		return b.ListingID == listingID && b.Holds() && b.Price.Range.Overlaps(dr)
	}
}
