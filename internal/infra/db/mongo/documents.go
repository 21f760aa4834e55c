package mongo

import (
	"time"

	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/cancellation"
	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/money"
)

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newRangeDocument(r daterange.DateRange) rangeDocument {
	return rangeDocument{Start: r.Start.UnixMilli(), End: r.End.UnixMilli()}
}

func (d rangeDocument) toRange() daterange.DateRange {
	return daterange.DateRange{Start: timestampToTime(d.Start), End: timestampToTime(d.End)}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type blackoutDocument struct {
	Kind     string         `bson:"kind"`
	Range    *rangeDocument `bson:"range,omitempty"`
	Rule     string         `bson:"rule,omitempty"`
	SpanDays int            `bson:"span_days,omitempty"`
	Note     string         `bson:"note,omitempty"`
}

type listingDocument struct {
	ID                 string             `bson:"_id"`
	Host               string             `bson:"host_id"`
	Title              string             `bson:"title"`
	Description        string             `bson:"description"`
	Currency           string             `bson:"currency"`
	Quantity           int                `bson:"quantity"`
	DailyRate          int64              `bson:"daily_rate"`
	WeeklyRate         int64              `bson:"weekly_rate"`
	MonthlyRate        int64              `bson:"monthly_rate"`
	WeekendMultiplier  float64            `bson:"weekend_multiplier"`
	DepositType        string             `bson:"deposit_type"`
	DepositValue       int64              `bson:"deposit_value"`
	AdvanceNoticeDays  int                `bson:"advance_notice_days"`
	MinStayDays        int                `bson:"min_stay_days"`
	MaxStayDays        int                `bson:"max_stay_days"`
	Weekdays           int                `bson:"weekdays"`
	Blackouts          []blackoutDocument `bson:"blackouts"`
	PickupAvailable    bool               `bson:"pickup_available"`
	DeliveryAvailable  bool               `bson:"delivery_available"`
	DeliveryFeeType    string             `bson:"delivery_fee_type"`
	DeliveryFee        int64              `bson:"delivery_fee"`
	DeliveryRadiusKm   float64            `bson:"delivery_radius_km"`
	OriginLat          float64            `bson:"origin_lat"`
	OriginLon          float64            `bson:"origin_lon"`
	RequiresKYC        bool               `bson:"requires_kyc"`
	InstantBook        bool               `bson:"instant_book"`
	CancellationPolicy string             `bson:"cancellation_policy"`
	State              string             `bson:"state"`
	CreatedAt          int64              `bson:"created_at"`
	UpdatedAt          int64              `bson:"updated_at"`
	Version            int64              `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	doc := listingDocument{
		ID:                 string(l.ID),
		Host:               string(l.Host),
		Title:              l.Title,
		Description:        l.Description,
		Currency:           l.Currency,
		Quantity:           l.Quantity,
		DailyRate:          l.Rates.Daily.Amount,
		WeeklyRate:         l.Rates.Weekly.Amount,
		MonthlyRate:        l.Rates.Monthly.Amount,
		WeekendMultiplier:  l.Rates.WeekendMultiplier,
		DepositType:        string(l.Deposit.Type),
		DepositValue:       l.Deposit.Value,
		AdvanceNoticeDays:  l.Availability.AdvanceNoticeDays,
		MinStayDays:        l.Availability.MinStayDays,
		MaxStayDays:        l.Availability.MaxStayDays,
		Weekdays:           int(l.Availability.Weekdays),
		PickupAvailable:    l.Delivery.PickupAvailable,
		DeliveryAvailable:  l.Delivery.DeliveryAvailable,
		DeliveryFeeType:    string(l.Delivery.FeeType),
		DeliveryFee:        l.Delivery.Fee.Amount,
		DeliveryRadiusKm:   l.Delivery.RadiusKm,
		OriginLat:          l.Delivery.Origin.Lat,
		OriginLon:          l.Delivery.Origin.Lon,
		RequiresKYC:        l.RequiresKYC,
		InstantBook:        l.InstantBook,
		CancellationPolicy: string(l.CancellationPolicy),
		State:              string(l.State),
		CreatedAt:          l.CreatedAt.UnixMilli(),
		UpdatedAt:          l.UpdatedAt.UnixMilli(),
		Version:            l.Version,
	}
	for _, b := range l.Availability.Blackouts {
		bd := blackoutDocument{Kind: string(b.Kind), Rule: b.Rule, SpanDays: b.SpanDays, Note: b.Note}
		if b.Kind == domainavailability.BlackoutExplicit {
			r := newRangeDocument(b.Range)
			bd.Range = &r
		}
		doc.Blackouts = append(doc.Blackouts, bd)
	}
	return doc
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	amount := func(v int64) money.Money { return money.Money{Amount: v, Currency: d.Currency} }
	l := &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Host:        domainlistings.HostID(d.Host),
		Title:       d.Title,
		Description: d.Description,
		Currency:    d.Currency,
		Quantity:    d.Quantity,
		Rates: domainlistings.Rates{
			Daily:             amount(d.DailyRate),
			Weekly:            amount(d.WeeklyRate),
			Monthly:           amount(d.MonthlyRate),
			WeekendMultiplier: d.WeekendMultiplier,
		},
		Deposit: domainlistings.DepositPolicy{Type: domainlistings.DepositType(d.DepositType), Value: d.DepositValue},
		Availability: domainavailability.Rules{
			AdvanceNoticeDays: d.AdvanceNoticeDays,
			MinStayDays:       d.MinStayDays,
			MaxStayDays:       d.MaxStayDays,
			Weekdays:          domainavailability.WeekdaySet(d.Weekdays),
		},
		Delivery: domainlistings.DeliveryOptions{
			PickupAvailable:   d.PickupAvailable,
			DeliveryAvailable: d.DeliveryAvailable,
			FeeType:           domainlistings.DeliveryFeeType(d.DeliveryFeeType),
			Fee:               amount(d.DeliveryFee),
			RadiusKm:          d.DeliveryRadiusKm,
			Origin:            domainlistings.Coordinates{Lat: d.OriginLat, Lon: d.OriginLon},
		},
		RequiresKYC:        d.RequiresKYC,
		InstantBook:        d.InstantBook,
		CancellationPolicy: cancellation.Policy(d.CancellationPolicy),
		State:              domainlistings.ListingState(d.State),
		CreatedAt:          timestampToTime(d.CreatedAt),
		UpdatedAt:          timestampToTime(d.UpdatedAt),
		Version:            d.Version,
	}
	for _, bd := range d.Blackouts {
		b := domainavailability.Blackout{
			Kind:     domainavailability.BlackoutKind(bd.Kind),
			Rule:     bd.Rule,
			SpanDays: bd.SpanDays,
			Note:     bd.Note,
		}
		if bd.Range != nil {
			b.Range = bd.Range.toRange()
		}
		l.Availability.Blackouts = append(l.Availability.Blackouts, b)
	}
	return l
}

type priceDocument struct {
	ListingID          string        `bson:"listing_id"`
	Currency           string        `bson:"currency"`
	Range              rangeDocument `bson:"range"`
	Days               int           `bson:"days"`
	Quantity           int           `bson:"quantity"`
	Delivery           string        `bson:"delivery"`
	Tier               string        `bson:"tier"`
	UnitRate           int64         `bson:"unit_rate"`
	WeekendDays        int           `bson:"weekend_days"`
	Subtotal           int64         `bson:"subtotal"`
	ServiceFee         int64         `bson:"service_fee"`
	DeliveryFee        int64         `bson:"delivery_fee"`
	DeliveryDistanceKm float64       `bson:"delivery_distance_km"`
	Deposit            int64         `bson:"deposit"`
	Total              int64         `bson:"total"`
	InstantlyBookable  bool          `bson:"instantly_bookable"`
	CancellationPolicy string        `bson:"cancellation_policy"`
}

type cancellationDocument struct {
	Percent         int    `bson:"percent"`
	Reason          string `bson:"reason"`
	NoticeGivenMs   int64  `bson:"notice_given_ms"`
	Refunded        int64  `bson:"refunded"`
	Retained        int64  `bson:"retained"`
	DepositReleased int64  `bson:"deposit_released"`
	CancelledAt     int64  `bson:"cancelled_at"`
	Note            string `bson:"note"`
}

type bookingDocument struct {
	ID              string                `bson:"_id"`
	ListingID       string                `bson:"listing_id"`
	HostID          string                `bson:"host_id"`
	RenterID        string                `bson:"renter_id"`
	Price           priceDocument         `bson:"price"`
	State           string                `bson:"state"`
	Cancellation    *cancellationDocument `bson:"cancellation,omitempty"`
	DepositReleased bool                  `bson:"deposit_released"`
	CreatedAt       int64                 `bson:"created_at"`
	UpdatedAt       int64                 `bson:"updated_at"`
	Version         int64                 `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	p := b.Price
	doc := bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		HostID:    string(b.HostID),
		RenterID:  b.RenterID,
		Price: priceDocument{
			ListingID:          string(p.ListingID),
			Currency:           p.Currency,
			Range:              newRangeDocument(p.Range),
			Days:               p.Days,
			Quantity:           p.Quantity,
			Delivery:           string(p.Delivery),
			Tier:               string(p.Tier),
			UnitRate:           p.UnitRate.Amount,
			WeekendDays:        p.WeekendDays,
			Subtotal:           p.Subtotal.Amount,
			ServiceFee:         p.ServiceFee.Amount,
			DeliveryFee:        p.DeliveryFee.Amount,
			DeliveryDistanceKm: p.DeliveryDistanceKm,
			Deposit:            p.Deposit.Amount,
			Total:              p.Total.Amount,
			InstantlyBookable:  p.InstantlyBookable,
			CancellationPolicy: string(p.CancellationPolicy),
		},
		State:           string(b.State),
		DepositReleased: b.DepositReleased,
		CreatedAt:       b.CreatedAt.UnixMilli(),
		UpdatedAt:       b.UpdatedAt.UnixMilli(),
		Version:         b.Version,
	}
	if c := b.Cancellation; c != nil {
		doc.Cancellation = &cancellationDocument{
			Percent:         c.Refund.Percent,
			Reason:          string(c.Refund.Reason),
			NoticeGivenMs:   c.Refund.NoticeGiven.Milliseconds(),
			Refunded:        c.Refunded.Amount,
			Retained:        c.Retained.Amount,
			DepositReleased: c.DepositReleased.Amount,
			CancelledAt:     c.CancelledAt.UnixMilli(),
			Note:            c.Reason,
		}
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	currency := d.Price.Currency
	amount := func(v int64) money.Money { return money.Money{Amount: v, Currency: currency} }
	p := d.Price
	b := &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		HostID:    domainlistings.HostID(d.HostID),
		RenterID:  d.RenterID,
		Price: domainpricing.PricedBooking{
			ListingID:          domainlistings.ListingID(p.ListingID),
			Currency:           currency,
			Range:              p.Range.toRange(),
			Days:               p.Days,
			Quantity:           p.Quantity,
			Delivery:           domainlistings.DeliveryChoice(p.Delivery),
			Tier:               domainpricing.Tier(p.Tier),
			UnitRate:           amount(p.UnitRate),
			WeekendDays:        p.WeekendDays,
			Subtotal:           amount(p.Subtotal),
			ServiceFee:         amount(p.ServiceFee),
			DeliveryFee:        amount(p.DeliveryFee),
			DeliveryDistanceKm: p.DeliveryDistanceKm,
			Deposit:            amount(p.Deposit),
			Total:              amount(p.Total),
			InstantlyBookable:  p.InstantlyBookable,
			CancellationPolicy: cancellation.Policy(p.CancellationPolicy),
		},
		State:           domainbooking.State(d.State),
		DepositReleased: d.DepositReleased,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
	if c := d.Cancellation; c != nil {
		b.Cancellation = &domainbooking.CancellationOutcome{
			Refund: cancellation.Refund{
				Percent:     c.Percent,
				Reason:      cancellation.Reason(c.Reason),
				NoticeGiven: time.Duration(c.NoticeGivenMs) * time.Millisecond,
			},
			Refunded:        amount(c.Refunded),
			Retained:        amount(c.Retained),
			DepositReleased: amount(c.DepositReleased),
			CancelledAt:     timestampToTime(c.CancelledAt),
			Reason:          c.Note,
		}
	}
	return b
}
