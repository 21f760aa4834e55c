package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	domaineligibility "rentbook/internal/domain/eligibility"
	domainlistings "rentbook/internal/domain/listings"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory runs each unit of work inside a MongoDB session transaction.
// Repositories join it through the session carried in the context.
type Factory struct {
	DB *mongo.Database

	ListingsRepo domainlistings.Repository
	BookingRepo  domainbooking.Repository
	RenterRepo   domaineligibility.Directory
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts.SetReadConcern(readconcern.Snapshot())
	} else {
		txnOpts.SetReadConcern(f.DB.ReadConcern())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, listings: f.ListingsRepo, bookings: f.BookingRepo, renters: f.RenterRepo}, nil
}

type Unit struct {
	session  mongo.Session
	listings domainlistings.Repository
	bookings domainbooking.Repository
	renters  domaineligibility.Directory
}

func (u *Unit) Listings() domainlistings.Repository  { return u.listings }
func (u *Unit) Bookings() domainbooking.Repository   { return u.bookings }
func (u *Unit) Renters() domaineligibility.Directory { return u.renters }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.ContextInjector = (*Unit)(nil)
