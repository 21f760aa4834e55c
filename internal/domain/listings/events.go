package listings

import (
	"time"

	"rentbook/internal/domain/cancellation"
	"rentbook/internal/domain/shared/events"
	"rentbook/internal/domain/shared/money"
)

type ListingCreated struct {
	events.BaseEvent
	HostID      HostID `json:"host_id"`
	InstantBook bool   `json:"instant_book"`
}

type ListingPublished struct {
	events.BaseEvent
}

type ListingSuspendedEvent struct {
	events.BaseEvent
	Reason string `json:"reason"`
}

// ListingTermsChanged fires when pricing or booking conditions are replaced.
type ListingTermsChanged struct {
	events.BaseEvent
	DailyRate          money.Money         `json:"daily_rate"`
	RequiresKYC        bool                `json:"requires_kyc"`
	CancellationPolicy cancellation.Policy `json:"cancellation_policy"`
}

func listingEvent(name string, id ListingID, at time.Time) events.BaseEvent {
	return events.BaseEvent{Name: name, Aggregate: string(id), Time: at}
}
