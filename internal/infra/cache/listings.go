package cache

import (
	"context"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"rentbook/internal/app/uow"
	domainlistings "rentbook/internal/domain/listings"
)

// Listings is a read-through cache of listing aggregates for read-only
// units: quotes, calendars and listing reads. Units that write bypass it and
// evict what they saved once they commit.
type Listings struct {
	cache *ccache.Cache[*domainlistings.Listing]
	ttl   time.Duration
}

func NewListings(size int64, ttl time.Duration) *Listings {
	if size <= 0 {
		size = 1000
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Listings{
		cache: ccache.New(ccache.Configure[*domainlistings.Listing]().MaxSize(size)),
		ttl:   ttl,
	}
}

func (l *Listings) Stop() { l.cache.Stop() }

func (l *Listings) fetch(id domainlistings.ListingID, load func() (*domainlistings.Listing, error)) (*domainlistings.Listing, error) {
	item, err := l.cache.Fetch(string(id), l.ttl, load)
	if err != nil {
		return nil, err
	}
	return item.Value().Clone(), nil
}

func (l *Listings) evict(ids []domainlistings.ListingID) {
	for _, id := range ids {
		l.cache.Delete(string(id))
	}
}

// Factory decorates a unit-of-work factory with the listing cache.
type Factory struct {
	Inner uow.UoWFactory
	Cache *Listings
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.Inner.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	if f.Cache == nil {
		return unit, nil
	}
	return &unitWithCache{UnitOfWork: unit, cache: f.Cache, readOnly: opts.ReadOnly}, nil
}

type unitWithCache struct {
	uow.UnitOfWork
	cache    *Listings
	readOnly bool

	mu    sync.Mutex
	saved []domainlistings.ListingID
}

func (u *unitWithCache) Listings() domainlistings.Repository {
	return cachedRepository{inner: u.UnitOfWork.Listings(), unit: u}
}

func (u *unitWithCache) Commit(ctx context.Context) error {
	if err := u.UnitOfWork.Commit(ctx); err != nil {
		return err
	}
	u.mu.Lock()
	saved := u.saved
	u.saved = nil
	u.mu.Unlock()
	u.cache.evict(saved)
	return nil
}

func (u *unitWithCache) InjectContext(ctx context.Context) context.Context {
	if injector, ok := u.UnitOfWork.(uow.ContextInjector); ok {
		return injector.InjectContext(ctx)
	}
	return ctx
}

type cachedRepository struct {
	inner domainlistings.Repository
	unit  *unitWithCache
}

func (r cachedRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if !r.unit.readOnly {
		return r.inner.ByID(ctx, id)
	}
	return r.unit.cache.fetch(id, func() (*domainlistings.Listing, error) {
		return r.inner.ByID(ctx, id)
	})
}

func (r cachedRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	if err := r.inner.Save(ctx, l); err != nil {
		return err
	}
	r.unit.mu.Lock()
	r.unit.saved = append(r.unit.saved, l.ID)
	r.unit.mu.Unlock()
	return nil
}

var (
	_ uow.UoWFactory            = Factory{}
	_ uow.ContextInjector       = (*unitWithCache)(nil)
	_ domainlistings.Repository = cachedRepository{}
)
