package memory

import (
	"context"
	"errors"
	"sort"

	appoutbox "rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domaineligibility "rentbook/internal/domain/eligibility"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
)

var (
	ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")
	ErrUnitClosed           = errors.New("memory: unit of work already finished")
	ErrReadOnlyUnit         = errors.New("memory: write in read-only unit of work")
)

// Factory begins units of work over a Store. Records added to Outbox inside
// a unit are queued on commit.
type Factory struct {
	Store  *Store
	Outbox *Outbox
}

func (f Factory) Begin(_ context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		store:    f.Store,
		box:      f.Outbox,
		readOnly: opts.ReadOnly,
		listings: map[domainlistings.ListingID]*domainlistings.Listing{},
		bookings: map[domainbooking.BookingID]*domainbooking.Booking{},
		renters:  map[string]domaineligibility.Renter{},
	}, nil
}

// Unit buffers writes and applies them to the store on Commit; reads see the
// unit's own pending writes first.
type Unit struct {
	store    *Store
	readOnly bool
	done     bool
	listings map[domainlistings.ListingID]*domainlistings.Listing
	bookings map[domainbooking.BookingID]*domainbooking.Booking
	renters  map[string]domaineligibility.Renter
	events   []appoutbox.EventRecord
	box      *Outbox
}

type unitKey struct{}

// InjectContext lets the outbox stage records in the unit, so they are
// queued only if the unit commits.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, unitKey{}, u)
}

func unitFrom(ctx context.Context) (*Unit, bool) {
	u, ok := ctx.Value(unitKey{}).(*Unit)
	return u, ok && !u.done && !u.readOnly
}

func (u *Unit) Listings() domainlistings.Repository  { return unitListings{u} }
func (u *Unit) Bookings() domainbooking.Repository   { return unitBookings{u} }
func (u *Unit) Renters() domaineligibility.Directory { return unitRenters{u} }

func (u *Unit) Commit(context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	cs := changeSet{}
	for _, l := range u.listings {
		cs.listings = append(cs.listings, l)
	}
	for _, b := range u.bookings {
		cs.bookings = append(cs.bookings, b)
	}
	for _, r := range u.renters {
		cs.renters = append(cs.renters, r)
	}
	if err := u.store.apply(cs); err != nil {
		return err
	}
	if len(u.events) > 0 && u.box != nil {
		u.box.enqueue(u.events)
	}
	return nil
}

func (u *Unit) Rollback(context.Context) error {
	u.done = true
	u.events = nil
	return nil
}

func (u *Unit) writable() error {
	if u.done {
		return ErrUnitClosed
	}
	if u.readOnly {
		return ErrReadOnlyUnit
	}
	return nil
}

type unitListings struct{ u *Unit }

func (r unitListings) ByID(_ context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if l, ok := r.u.listings[id]; ok {
		return l.Clone(), nil
	}
	return r.u.store.listing(id)
}

func (r unitListings) Save(_ context.Context, l *domainlistings.Listing) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	l.Version++
	r.u.listings[l.ID] = l.Clone()
	return nil
}

type unitBookings struct{ u *Unit }

func (r unitBookings) ByID(_ context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	if b, ok := r.u.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	return r.u.store.booking(id)
}

func (r unitBookings) Save(_ context.Context, b *domainbooking.Booking) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	b.Version++
	r.u.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r unitBookings) ListByRenter(_ context.Context, renterID string) ([]*domainbooking.Booking, error) {
	return r.merge(func(b *domainbooking.Booking) bool { return b.RenterID == renterID }), nil
}

func (r unitBookings) Overlapping(_ context.Context, listingID domainlistings.ListingID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	return r.merge(overlaps(listingID, dr)), nil
}

// merge overlays the unit's pending bookings on the committed ones.
func (r unitBookings) merge(match func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	committed := r.u.store.bookingsWhere(match)
	out := make([]*domainbooking.Booking, 0, len(committed)+len(r.u.bookings))
	for _, b := range committed {
		if _, pending := r.u.bookings[b.ID]; !pending {
			out = append(out, b)
		}
	}
	for _, b := range r.u.bookings {
		if match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type unitRenters struct{ u *Unit }

func (r unitRenters) Renter(_ context.Context, id string) (domaineligibility.Renter, error) {
	if renter, ok := r.u.renters[id]; ok {
		return renter, nil
	}
	return r.u.store.renter(id)
}

func (r unitRenters) Save(_ context.Context, renter domaineligibility.Renter) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.renters[renter.ID] = renter
	return nil
}

var _ uow.UoWFactory = Factory{}

var _ uow.ContextInjector = (*Unit)(nil)
