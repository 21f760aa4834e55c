package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	availabilityapp "rentbook/internal/app/handlers/availability"
	bookingapp "rentbook/internal/app/handlers/booking"
	listingsapp "rentbook/internal/app/handlers/listings"
	rentersapp "rentbook/internal/app/handlers/renters"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	"rentbook/internal/domain/availability"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/money"
	"rentbook/internal/infra/cache"
	"rentbook/internal/infra/config"
	mongostore "rentbook/internal/infra/db/mongo"
	ginserver "rentbook/internal/infra/http/gin"
	"rentbook/internal/infra/identity"
	"rentbook/internal/infra/inbox"
	outboxstore "rentbook/internal/infra/outbox"
	"rentbook/internal/infra/storage/memory"
)

// storage bundles the persistence adapters selected by STORAGE.
type storage struct {
	factory     uow.UoWFactory
	outbox      outbox.Outbox
	relay       outbox.Relay
	idempotency middleware.IdempotencyStore
	inbox       identity.Inbox
	wakeup      <-chan struct{}
	ready       func(ctx context.Context) error
	close       func(ctx context.Context) error
}

func newMemoryStorage() storage {
	store := memory.NewStore()
	box := memory.NewOutbox()
	return storage{
		factory:     memory.Factory{Store: store, Outbox: box},
		outbox:      box,
		relay:       box,
		idempotency: memory.NewIdempotencyStore(),
		inbox:       inbox.NewMemory(),
		wakeup:      box.Wakeup(),
		ready:       store.Ping,
		close:       func(context.Context) error { return nil },
	}
}

func newMongoStorage(ctx context.Context, cfg config.Config) (storage, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("connect mongo: %w", err)
	}
	box := outboxstore.NewStore(client.DB)
	return storage{
		factory: mongostore.Factory{
			DB:           client.DB,
			ListingsRepo: mongostore.NewListingRepository(client.DB),
			BookingRepo:  mongostore.NewBookingRepository(client.DB),
			RenterRepo:   mongostore.NewRenterRepository(client.DB),
		},
		outbox:      box,
		relay:       box,
		idempotency: mongostore.NewIdempotencyStore(client.DB),
		inbox:       inbox.NewStore(client.DB, cfg.KafkaGroupID, 30*24*time.Hour),
		ready:       client.Ping,
		close:       client.Close,
	}, nil
}

type application struct {
	handlers ginserver.Handlers
	commands commands.Bus
	queries  queries.Bus
	listings *cache.Listings
}

type buildOptions struct {
	distances domainpricing.DistanceCalculator
	clock     policies.Clock
	newID     func() string
}

func buildApplication(cfg config.Config, logger *slog.Logger, st storage, opts buildOptions) application {
	clock := opts.clock
	if clock == nil {
		clock = policies.SystemClock
	}
	gate := availability.Gate{Horizon: cfg.BlackoutHorizon}
	engine := domainpricing.Engine{
		ServiceFee: money.BasisPoints(cfg.ServiceFeeBps),
		Gate:       gate,
		Distances:  opts.distances,
	}
	listingCache := cache.NewListings(cfg.ListingCacheSize, cfg.ListingCacheTTL)
	factory := cache.Factory{Inner: st.factory, Cache: listingCache}
	encoder := outbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookingapp.SubmitBookingCommand, *dto.Booking](commandBus, &bookingapp.SubmitBookingHandler{
		Pricing: engine, Outbox: st.outbox, Encoder: encoder, Clock: clock,
	})
	commands.RegisterHandler[bookingapp.CancelBookingCommand, *dto.Booking](commandBus, &bookingapp.CancelBookingHandler{
		Outbox: st.outbox, Encoder: encoder, Clock: clock,
	})
	commands.RegisterHandler[bookingapp.HostDecisionCommand, *dto.Booking](commandBus, &bookingapp.HostDecisionHandler{
		Outbox: st.outbox, Encoder: encoder, Clock: clock,
	})
	commands.RegisterHandler[listingsapp.UpsertListingCommand, *dto.Listing](commandBus, &listingsapp.UpsertListingHandler{
		Outbox: st.outbox, Encoder: encoder, Clock: clock, NewID: opts.newID,
	})
	commands.RegisterHandler[rentersapp.SetKYCCommand, *rentersapp.SetKYCResult](commandBus, rentersapp.SetKYCHandler{})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[bookingapp.QuoteQuery, dto.Quote](queryBus, &bookingapp.QuoteHandler{UoWFactory: factory, Pricing: engine, Clock: clock})
	queries.RegisterHandler[bookingapp.RefundPreviewQuery, dto.Cancellation](queryBus, &bookingapp.RefundPreviewHandler{UoWFactory: factory, Clock: clock})
	queries.RegisterHandler[bookingapp.GetBookingQuery, dto.Booking](queryBus, &bookingapp.GetBookingHandler{UoWFactory: factory})
	queries.RegisterHandler[bookingapp.ListRenterBookingsQuery, []dto.Booking](queryBus, &bookingapp.ListRenterBookingsHandler{UoWFactory: factory})
	queries.RegisterHandler[listingsapp.GetListingQuery, dto.Listing](queryBus, &listingsapp.GetListingHandler{UoWFactory: factory})
	queries.RegisterHandler[availabilityapp.GetCalendarQuery, dto.Calendar](queryBus, &availabilityapp.GetCalendarHandler{UoWFactory: factory, Gate: gate, Clock: clock})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger, ginserver.IsClientError),
		middleware.Validation(),
		middleware.Idempotency(st.idempotency, middleware.IdempotencyOptions{TTL: cfg.IdempotencyTTL}),
		middleware.OutboxFlush(st.outbox),
		middleware.Transaction(factory),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger, ginserver.IsClientError),
		middleware.QueryValidation(),
	)

	return application{
		handlers: ginserver.Handlers{
			Listing: ginserver.ListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
			Booking: ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, NewID: opts.newID},
			Renter:  ginserver.RenterHandler{Commands: commandBusWithMiddleware},
		},
		commands: commandBusWithMiddleware,
		queries:  queryBusWithMiddleware,
		listings: listingCache,
	}
}
