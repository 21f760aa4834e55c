package uow

import (
	"context"
	"errors"

	domainbooking "rentbook/internal/domain/booking"
	domaineligibility "rentbook/internal/domain/eligibility"
	domainlistings "rentbook/internal/domain/listings"
)

// ErrConcurrentUpdate is wrapped by storage adapters when an aggregate
// changed after it was loaded.
var ErrConcurrentUpdate = errors.New("uow: concurrent update detected")

// UnitOfWork groups the repositories touched by one command so their writes
// commit or roll back together.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Repository
	Renters() domaineligibility.Directory

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that carry driver state, such as a
// database session, through the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}
