package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/app/middleware"
	appoutbox "rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domaineligibility "rentbook/internal/domain/eligibility"
	domainlistings "rentbook/internal/domain/listings"
)

func newListing(t *testing.T, id string) *domainlistings.Listing {
	t.Helper()
	d := domainlistings.Details{Title: "Kayak", Currency: "EUR", Quantity: 2}
	d.Rates.Daily.Amount = 2500
	d.Rates.Daily.Currency = "EUR"
	l, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID: domainlistings.ListingID(id), Host: "h-1", Details: d, Now: time.Now(),
	})
	require.NoError(t, err)
	return l
}

func begin(t *testing.T, f Factory, readOnly bool) (uow.UnitOfWork, context.Context) {
	t.Helper()
	unit, err := f.Begin(context.Background(), uow.TxOptions{ReadOnly: readOnly})
	require.NoError(t, err)
	return unit, uow.Attach(context.Background(), unit)
}

func TestUnitCommitPublishesWrites(t *testing.T) {
	f := Factory{Store: NewStore()}
	unit, ctx := begin(t, f, false)
	l := newListing(t, "l-1")
	require.NoError(t, unit.Listings().Save(ctx, l))
	assert.Equal(t, int64(1), l.Version)

	_, err := f.Store.listing("l-1")
	assert.ErrorIs(t, err, domainlistings.ErrListingNotFound, "writes stay staged until commit")

	staged, err := unit.Listings().ByID(ctx, "l-1")
	require.NoError(t, err)
	assert.Equal(t, "Kayak", staged.Title)

	require.NoError(t, unit.Commit(ctx))
	stored, err := f.Store.listing("l-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.ErrorIs(t, unit.Commit(ctx), ErrUnitClosed)
}

func TestUnitRollbackDiscardsWrites(t *testing.T) {
	f := Factory{Store: NewStore()}
	unit, ctx := begin(t, f, false)
	require.NoError(t, unit.Renters().Save(ctx, domaineligibility.Renter{ID: "r-1", KYC: domaineligibility.KYCVerified}))
	require.NoError(t, unit.Rollback(ctx))

	_, err := f.Store.renter("r-1")
	assert.ErrorIs(t, err, domaineligibility.ErrRenterNotFound)
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	f := Factory{Store: NewStore()}
	unit, ctx := begin(t, f, true)
	err := unit.Listings().Save(ctx, newListing(t, "l-1"))
	assert.ErrorIs(t, err, ErrReadOnlyUnit)
}

func TestConcurrentUpdateDetected(t *testing.T) {
	f := Factory{Store: NewStore()}
	seed, ctx := begin(t, f, false)
	require.NoError(t, seed.Listings().Save(ctx, newListing(t, "l-1")))
	require.NoError(t, seed.Commit(ctx))

	first, ctx1 := begin(t, f, false)
	second, ctx2 := begin(t, f, false)
	a, err := first.Listings().ByID(ctx1, "l-1")
	require.NoError(t, err)
	b, err := second.Listings().ByID(ctx2, "l-1")
	require.NoError(t, err)
	require.NoError(t, first.Listings().Save(ctx1, a))
	require.NoError(t, second.Listings().Save(ctx2, b))

	require.NoError(t, first.Commit(ctx1))
	err = second.Commit(ctx2)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.ErrorIs(t, err, uow.ErrConcurrentUpdate)
}

func TestOutboxRecordsFollowTheUnit(t *testing.T) {
	box := NewOutbox()
	f := Factory{Store: NewStore(), Outbox: box}
	rec := appoutbox.EventRecord{ID: "evt-1", Name: "listing.created"}

	unit, ctx := begin(t, f, false)
	require.NoError(t, box.Add(ctx, rec))
	assert.Zero(t, box.Pending())
	require.NoError(t, unit.Rollback(ctx))
	assert.Zero(t, box.Pending())

	unit, ctx = begin(t, f, false)
	require.NoError(t, box.Add(ctx, rec))
	require.NoError(t, unit.Commit(ctx))
	assert.Equal(t, 1, box.Pending())

	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{ID: "evt-2"}))
	assert.Equal(t, 2, box.Pending())
}

func TestOutboxClaimAndRetry(t *testing.T) {
	box := NewOutbox()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	box.now = func() time.Time { return now }
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{ID: "evt-1"}))

	p, err := box.Claim(context.Background(), "w")
	require.NoError(t, err)
	require.NotNil(t, p)
	again, err := box.Claim(context.Background(), "w")
	require.NoError(t, err)
	assert.Nil(t, again, "claimed records are not handed out twice")

	require.NoError(t, box.MarkFailed(context.Background(), "evt-1", now.Add(time.Minute), "down"))
	p, _ = box.Claim(context.Background(), "w")
	assert.Nil(t, p)

	now = now.Add(time.Minute)
	p, err = box.Claim(context.Background(), "w")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Attempts)
	require.NoError(t, box.MarkSent(context.Background(), "evt-1"))
	assert.Zero(t, box.Pending())
}

func TestIdempotencyStoreExpires(t *testing.T) {
	s := NewIdempotencyStore()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte("1"), ExpiresAt: now.Add(time.Hour)}))

	rec, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), rec.Payload)

	now = now.Add(time.Hour)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
