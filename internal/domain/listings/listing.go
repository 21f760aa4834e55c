package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/cancellation"
	"rentbook/internal/domain/shared/events"
	"rentbook/internal/domain/shared/money"
)

var (
	ErrListingNotFound = errors.New("listings: not found")
	ErrInvalidState    = errors.New("listings: invalid state transition")
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrHostRequired    = errors.New("listings: host is required")
	ErrQuantity        = errors.New("listings: quantity must be at least 1")
	ErrDailyRate       = errors.New("listings: daily rate must be positive")
	ErrPackageRate     = errors.New("listings: package rates must not be negative")
	ErrCurrency        = errors.New("listings: all amounts must share the listing currency")
	ErrWeekendFactor   = errors.New("listings: weekend multiplier must be 0 or >= 1")
)

type ListingID string
type HostID string

type ListingState string

const (
	ListingDraft     ListingState = "DRAFT"
	ListingActive    ListingState = "ACTIVE"
	ListingSuspended ListingState = "SUSPENDED"
)

// Rates holds the advertised prices. Weekly and Monthly are flat package
// prices for the whole window, zero when the lister offers no package.
type Rates struct {
	Daily   money.Money
	Weekly  money.Money
	Monthly money.Money
	// WeekendMultiplier scales Saturday and Sunday in daily pricing; 0 or 1 disables it.
	WeekendMultiplier float64
}

func (r Rates) HasWeekly() bool  { return r.Weekly.Amount > 0 }
func (r Rates) HasMonthly() bool { return r.Monthly.Amount > 0 }

// WeeklyDiscountPercent is the saving of the weekly package over seven daily
// rates, for display. Pricing never applies it.
func (r Rates) WeeklyDiscountPercent() int {
	if !r.HasWeekly() || r.Daily.Amount <= 0 {
		return 0
	}
	week := r.Daily.Amount * 7
	if r.Weekly.Amount >= week {
		return 0
	}
	return int((week - r.Weekly.Amount) * 100 / week)
}

func (r Rates) validate(currency string) error {
	if r.Daily.Amount <= 0 {
		return ErrDailyRate
	}
	if r.Weekly.Amount < 0 || r.Monthly.Amount < 0 {
		return ErrPackageRate
	}
	for _, m := range []money.Money{r.Daily, r.Weekly, r.Monthly} {
		if m.Amount != 0 && m.Currency != currency {
			return ErrCurrency
		}
	}
	if r.WeekendMultiplier != 0 && r.WeekendMultiplier < 1 {
		return ErrWeekendFactor
	}
	return nil
}

type Listing struct {
	ID                 ListingID
	Host               HostID
	Title              string
	Description        string
	Currency           string
	Quantity           int
	Rates              Rates
	Deposit            DepositPolicy
	Availability       availability.Rules
	Delivery           DeliveryOptions
	RequiresKYC        bool
	InstantBook        bool
	CancellationPolicy cancellation.Policy
	State              ListingState
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
}

// Details is the mutable part of a listing shared by create and update.
type Details struct {
	Title              string
	Description        string
	Currency           string
	Quantity           int
	Rates              Rates
	Deposit            DepositPolicy
	Availability       availability.Rules
	Delivery           DeliveryOptions
	RequiresKYC        bool
	InstantBook        bool
	CancellationPolicy cancellation.Policy
}

func (d *Details) normalize() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Title == "" {
		return ErrTitleRequired
	}
	if len(d.Currency) != 3 {
		return money.ErrInvalidCurrency
	}
	if d.Quantity < 1 {
		return ErrQuantity
	}
	if d.Availability.Weekdays == 0 {
		d.Availability.Weekdays = availability.EveryDay
	}
	if d.CancellationPolicy == "" {
		d.CancellationPolicy = cancellation.Flexible
	}
	if _, err := cancellation.ParsePolicy(string(d.CancellationPolicy)); err != nil {
		return err
	}
	if err := d.Rates.validate(d.Currency); err != nil {
		return err
	}
	if err := d.Deposit.Validate(d.Currency); err != nil {
		return err
	}
	if err := d.Delivery.Validate(d.Currency); err != nil {
		return err
	}
	return d.Availability.Validate()
}

type CreateListingParams struct {
	ID   ListingID
	Host HostID
	Details
	Now time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	details := params.Details
	if err := details.normalize(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:        params.ID,
		Host:      params.Host,
		State:     ListingDraft,
		CreatedAt: now,
	}
	l.apply(details, now)
	l.Record(ListingCreated{BaseEvent: listingEvent("listing.created", l.ID, now), HostID: l.Host, InstantBook: l.InstantBook})
	return l, nil
}

// Update replaces the listing details. Bookings already priced keep their snapshot.
func (l *Listing) Update(details Details, now time.Time) error {
	if err := details.normalize(); err != nil {
		return err
	}
	now = now.UTC()
	l.apply(details, now)
	l.Record(ListingTermsChanged{
		BaseEvent:          listingEvent("listing.terms_changed", l.ID, now),
		DailyRate:          l.Rates.Daily,
		RequiresKYC:        l.RequiresKYC,
		CancellationPolicy: l.CancellationPolicy,
	})
	return nil
}

func (l *Listing) apply(d Details, now time.Time) {
	l.Title = d.Title
	l.Description = d.Description
	l.Currency = d.Currency
	l.Quantity = d.Quantity
	l.Rates = d.Rates
	l.Deposit = d.Deposit
	l.Availability = d.Availability
	l.Availability.Blackouts = append([]availability.Blackout(nil), d.Availability.Blackouts...)
	l.Delivery = d.Delivery
	l.RequiresKYC = d.RequiresKYC
	l.InstantBook = d.InstantBook
	l.CancellationPolicy = d.CancellationPolicy
	l.UpdatedAt = now
}

func (l *Listing) Activate(now time.Time) error {
	if l.State == ListingActive {
		return nil
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	l.Record(ListingPublished{BaseEvent: listingEvent("listing.published", l.ID, l.UpdatedAt)})
	return nil
}

func (l *Listing) Suspend(reason string, now time.Time) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	l.Record(ListingSuspendedEvent{BaseEvent: listingEvent("listing.suspended", l.ID, l.UpdatedAt), Reason: reason})
	return nil
}

func (l *Listing) Bookable() bool {
	return l.State == ListingActive
}

// Clone copies the listing without its pending events.
func (l *Listing) Clone() *Listing {
	cp := *l
	cp.EventRecorder = events.EventRecorder{}
	cp.Availability.Blackouts = append([]availability.Blackout(nil), l.Availability.Blackouts...)
	return &cp
}
