package listings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainlistings "rentbook/internal/domain/listings"
)

var (
	ErrNotOwner      = errors.New("listings: caller does not own the listing")
	ErrUnknownStatus = errors.New("listings: unknown target status")
)

// UpsertListingCommand creates a listing when ListingID is empty or unknown
// and replaces its details otherwise. Status optionally publishes or
// suspends it in the same step.
type UpsertListingCommand struct {
	ListingID       string
	HostID          string
	Input           dto.ListingInput
	Status          string
	IdempotencyKeyV string
}

func (UpsertListingCommand) Key() string { return "listing.upsert" }

func (c UpsertListingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c UpsertListingCommand) IdempotencyScope() string { return strings.TrimSpace(c.HostID) }

func (c UpsertListingCommand) ResultPrototype() any { return &dto.Listing{} }

func (c UpsertListingCommand) Validate() error {
	if strings.TrimSpace(c.HostID) == "" {
		return domainlistings.ErrHostRequired
	}
	switch domainlistings.ListingState(strings.ToUpper(c.Status)) {
	case "", domainlistings.ListingActive, domainlistings.ListingSuspended:
		return nil
	default:
		return ErrUnknownStatus
	}
}

type UpsertListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   policies.Clock
	// NewID generates ids for new listings; defaults to uuid.NewString.
	NewID func() string
}

func (h *UpsertListingHandler) Handle(ctx context.Context, cmd UpsertListingCommand) (*dto.Listing, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	details, err := cmd.Input.ToDetails()
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()

	listing, err := h.load(ctx, unit, cmd.ListingID)
	switch {
	case err != nil:
		return nil, err
	case listing == nil:
		listing, err = domainlistings.NewListing(domainlistings.CreateListingParams{
			ID:      h.idFor(cmd.ListingID),
			Host:    domainlistings.HostID(cmd.HostID),
			Details: details,
			Now:     now,
		})
	case string(listing.Host) != cmd.HostID:
		return nil, ErrNotOwner
	default:
		err = listing.Update(details, now)
	}
	if err != nil {
		return nil, err
	}

	switch domainlistings.ListingState(strings.ToUpper(cmd.Status)) {
	case domainlistings.ListingActive:
		err = listing.Activate(now)
	case domainlistings.ListingSuspended:
		if listing.State != domainlistings.ListingSuspended {
			err = listing.Suspend("suspended by host", now)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}
	out := dto.MapListing(listing)
	return &out, nil
}

func (h *UpsertListingHandler) load(ctx context.Context, unit uow.UnitOfWork, id string) (*domainlistings.Listing, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if errors.Is(err, domainlistings.ErrListingNotFound) {
		return nil, nil
	}
	return listing, err
}

func (h *UpsertListingHandler) idFor(requested string) domainlistings.ListingID {
	if id := strings.TrimSpace(requested); id != "" {
		return domainlistings.ListingID(id)
	}
	if h.NewID != nil {
		return domainlistings.ListingID(h.NewID())
	}
	return domainlistings.ListingID(uuid.NewString())
}

var (
	_ commands.Handler[UpsertListingCommand, *dto.Listing] = (*UpsertListingHandler)(nil)
	_ middleware.IdempotentCommand                         = UpsertListingCommand{}
)
