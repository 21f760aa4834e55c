package dto

import (
	"fmt"
	"strings"
	"time"

	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/cancellation"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

type Deposit struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Delivery struct {
	PickupAvailable   bool        `json:"pickup_available"`
	DeliveryAvailable bool        `json:"delivery_available"`
	FeeType           string      `json:"fee_type,omitempty"`
	Fee               int64       `json:"fee"`
	RadiusKm          float64     `json:"radius_km,omitempty"`
	Origin            Coordinates `json:"origin"`
}

type Blackout struct {
	Kind     string     `json:"kind"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Rule     string     `json:"rule,omitempty"`
	SpanDays int        `json:"span_days,omitempty"`
	Note     string     `json:"note,omitempty"`
}

type Availability struct {
	AdvanceNoticeDays int        `json:"advance_notice_days"`
	MinDays           int        `json:"min_days"`
	MaxDays           int        `json:"max_days"`
	Weekdays          []string   `json:"weekdays,omitempty"`
	Blackouts         []Blackout `json:"blackouts,omitempty"`
}

// ListingInput is the lister-facing payload of listing.upsert. Amounts are
// minor units of Currency.
type ListingInput struct {
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Currency           string       `json:"currency"`
	Quantity           int          `json:"quantity"`
	DailyRate          int64        `json:"daily_rate"`
	WeeklyRate         int64        `json:"weekly_rate"`
	MonthlyRate        int64        `json:"monthly_rate"`
	WeekendMultiplier  float64      `json:"weekend_multiplier"`
	Deposit            Deposit      `json:"deposit"`
	Availability       Availability `json:"availability"`
	Delivery           Delivery     `json:"delivery"`
	RequiresKYC        bool         `json:"requires_kyc"`
	InstantBook        bool         `json:"instant_book"`
	CancellationPolicy string       `json:"cancellation_policy"`
}

// ToDetails converts the payload to domain details; domain validation of the
// values themselves happens in listings.NewListing and Update.
func (in ListingInput) ToDetails() (domainlistings.Details, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	amount := func(v int64) money.Money { return money.Money{Amount: v, Currency: currency} }

	depositType, err := domainlistings.ParseDepositType(in.Deposit.Type)
	if err != nil {
		return domainlistings.Details{}, err
	}
	policy, err := cancellation.ParsePolicy(in.CancellationPolicy)
	if err != nil {
		return domainlistings.Details{}, err
	}
	rules, err := in.Availability.toRules()
	if err != nil {
		return domainlistings.Details{}, err
	}
	feeType := domainlistings.DeliveryFeeType(in.Delivery.FeeType)
	if feeType == "" && in.Delivery.DeliveryAvailable {
		feeType = domainlistings.DeliveryFeeFixed
	}
	return domainlistings.Details{
		Title:       in.Title,
		Description: in.Description,
		Currency:    currency,
		Quantity:    in.Quantity,
		Rates: domainlistings.Rates{
			Daily:             amount(in.DailyRate),
			Weekly:            amount(in.WeeklyRate),
			Monthly:           amount(in.MonthlyRate),
			WeekendMultiplier: in.WeekendMultiplier,
		},
		Deposit:      domainlistings.DepositPolicy{Type: depositType, Value: in.Deposit.Value},
		Availability: rules,
		Delivery: domainlistings.DeliveryOptions{
			PickupAvailable:   in.Delivery.PickupAvailable,
			DeliveryAvailable: in.Delivery.DeliveryAvailable,
			FeeType:           feeType,
			Fee:               amount(in.Delivery.Fee),
			RadiusKm:          in.Delivery.RadiusKm,
			Origin:            domainlistings.Coordinates{Lat: in.Delivery.Origin.Lat, Lon: in.Delivery.Origin.Lon},
		},
		RequiresKYC:        in.RequiresKYC,
		InstantBook:        in.InstantBook,
		CancellationPolicy: policy,
	}, nil
}

func (a Availability) toRules() (availability.Rules, error) {
	weekdays := availability.EveryDay
	if len(a.Weekdays) > 0 {
		set, err := availability.ParseWeekdays(a.Weekdays)
		if err != nil {
			return availability.Rules{}, err
		}
		weekdays = set
	}
	rules := availability.Rules{
		AdvanceNoticeDays: a.AdvanceNoticeDays,
		MinStayDays:       a.MinDays,
		MaxStayDays:       a.MaxDays,
		Weekdays:          weekdays,
	}
	for i, b := range a.Blackouts {
		blackout, err := b.toDomain()
		if err != nil {
			return availability.Rules{}, fmt.Errorf("blackout %d: %w", i, err)
		}
		rules.Blackouts = append(rules.Blackouts, blackout)
	}
	return rules, nil
}

func (b Blackout) toDomain() (availability.Blackout, error) {
	switch availability.BlackoutKind(b.Kind) {
	case availability.BlackoutRecurring:
		return availability.RecurringBlackout(b.Rule, b.SpanDays, b.Note)
	case availability.BlackoutExplicit, "":
		if b.Start == nil || b.End == nil {
			return availability.Blackout{}, availability.ErrBlackoutRange
		}
		r := daterange.DateRange{Start: daterange.Truncate(*b.Start), End: daterange.Truncate(*b.End)}
		return availability.ExplicitBlackout(r, b.Note)
	default:
		return availability.Blackout{}, availability.ErrBlackoutKind
	}
}

// Listing is the read model of a listing.
type Listing struct {
	ID                    string       `json:"id"`
	HostID                string       `json:"host_id"`
	State                 string       `json:"state"`
	Title                 string       `json:"title"`
	Description           string       `json:"description,omitempty"`
	Currency              string       `json:"currency"`
	Quantity              int          `json:"quantity"`
	DailyRate             int64        `json:"daily_rate"`
	WeeklyRate            int64        `json:"weekly_rate,omitempty"`
	MonthlyRate           int64        `json:"monthly_rate,omitempty"`
	WeeklyDiscountPercent int          `json:"weekly_discount_percent,omitempty"`
	WeekendMultiplier     float64      `json:"weekend_multiplier,omitempty"`
	Deposit               Deposit      `json:"deposit"`
	Availability          Availability `json:"availability"`
	Delivery              Delivery     `json:"delivery"`
	RequiresKYC           bool         `json:"requires_kyc"`
	InstantBook           bool         `json:"instant_book"`
	CancellationPolicy    string       `json:"cancellation_policy"`
	Version               int64        `json:"version"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

func MapListing(l *domainlistings.Listing) Listing {
	out := Listing{
		ID:                    string(l.ID),
		HostID:                string(l.Host),
		State:                 string(l.State),
		Title:                 l.Title,
		Description:           l.Description,
		Currency:              l.Currency,
		Quantity:              l.Quantity,
		DailyRate:             l.Rates.Daily.Amount,
		WeeklyRate:            l.Rates.Weekly.Amount,
		MonthlyRate:           l.Rates.Monthly.Amount,
		WeeklyDiscountPercent: l.Rates.WeeklyDiscountPercent(),
		WeekendMultiplier:     l.Rates.WeekendMultiplier,
		Deposit:               Deposit{Type: string(l.Deposit.Type), Value: l.Deposit.Value},
		Availability: Availability{
			AdvanceNoticeDays: l.Availability.AdvanceNoticeDays,
			MinDays:           l.Availability.MinStayDays,
			MaxDays:           l.Availability.MaxStayDays,
			Weekdays:          l.Availability.Weekdays.Names(),
		},
		Delivery: Delivery{
			PickupAvailable:   l.Delivery.PickupAvailable,
			DeliveryAvailable: l.Delivery.DeliveryAvailable,
			FeeType:           string(l.Delivery.FeeType),
			Fee:               l.Delivery.Fee.Amount,
			RadiusKm:          l.Delivery.RadiusKm,
			Origin:            Coordinates{Lat: l.Delivery.Origin.Lat, Lon: l.Delivery.Origin.Lon},
		},
		RequiresKYC:        l.RequiresKYC,
		InstantBook:        l.InstantBook,
		CancellationPolicy: string(l.CancellationPolicy),
		Version:            l.Version,
		UpdatedAt:          l.UpdatedAt,
	}
	for _, b := range l.Availability.Blackouts {
		item := Blackout{Kind: string(b.Kind), Rule: b.Rule, SpanDays: b.SpanDays, Note: b.Note}
		if b.Kind == availability.BlackoutExplicit {
			start, end := b.Range.Start, b.Range.End
			item.Start, item.End = &start, &end
		}
		out.Availability.Blackouts = append(out.Availability.Blackouts, item)
	}
	return out
}
