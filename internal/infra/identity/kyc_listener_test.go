package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/handlers/renters"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/uow"
	"rentbook/internal/domain/eligibility"
	"rentbook/internal/infra/inbox"
	"rentbook/internal/infra/storage/memory"
)

type harness struct {
	listener *KYCListener
	factory  memory.Factory
	inbox    *inbox.Memory
	calls    *int
}

func newHarness() harness {
	factory := memory.Factory{Store: memory.NewStore(), Outbox: memory.NewOutbox()}
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[renters.SetKYCCommand, *renters.SetKYCResult](bus, renters.SetKYCHandler{})
	calls := 0
	counting := commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
		calls++
		return bus.Dispatch(ctx, cmd)
	})
	chained := middleware.ChainCommands(counting, middleware.Validation(), middleware.Transaction(factory))
	box := inbox.NewMemory()
	return harness{
		listener: &KYCListener{Commands: chained, Inbox: box},
		factory:  factory,
		inbox:    box,
		calls:    &calls,
	}
}

func (h harness) renter(t *testing.T, id string) eligibility.Renter {
	t.Helper()
	unit, err := h.factory.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit.Rollback(context.Background())
	r, err := unit.Renters().Renter(context.Background(), id)
	require.NoError(t, err)
	return r
}

func message(offset int64, value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "identity.kyc.v1", Partition: 0, Offset: offset, Value: []byte(value)}
}

func TestKYCListenerAppliesStatus(t *testing.T) {
	h := newHarness()
	msg := message(1, `{"id":"ev-1","type":"identity.kyc.updated.v1","data":{"renter_id":"renter-1","status":"approved"}}`)

	require.NoError(t, h.listener.Handle(context.Background(), msg))

	assert.Equal(t, eligibility.KYCApproved, h.renter(t, "renter-1").KYC)
	seen, _ := h.inbox.Seen(context.Background(), "ev-1")
	assert.True(t, seen)
}

func TestKYCListenerSkipsRedelivery(t *testing.T) {
	h := newHarness()
	msg := message(1, `{"id":"ev-1","type":"identity.kyc.updated.v1","data":{"renter_id":"renter-1","status":"VERIFIED"}}`)

	require.NoError(t, h.listener.Handle(context.Background(), msg))
	require.NoError(t, h.listener.Handle(context.Background(), msg))

	assert.Equal(t, 1, *h.calls)
}

func TestKYCListenerUsesSubjectAndOffsetFallbacks(t *testing.T) {
	h := newHarness()
	msg := message(42, `{"type":"identity.kyc.updated.v1","subject":"renter-9","data":{"status":"REJECTED"}}`)

	require.NoError(t, h.listener.Handle(context.Background(), msg))

	assert.Equal(t, eligibility.KYCRejected, h.renter(t, "renter-9").KYC)
	seen, _ := h.inbox.Seen(context.Background(), "identity.kyc.v1/0/42")
	assert.True(t, seen)
}

func TestKYCListenerDropsPoisonMessages(t *testing.T) {
	h := newHarness()
	cases := map[string]string{
		"not json":       `{`,
		"unknown status": `{"id":"ev-2","type":"identity.kyc.updated.v1","data":{"renter_id":"r","status":"MAYBE"}}`,
		"bad data":       `{"id":"ev-3","type":"identity.kyc.updated.v1","data":"oops"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, h.listener.Handle(context.Background(), message(7, body)))
		})
	}
	seen, _ := h.inbox.Seen(context.Background(), "ev-2")
	assert.True(t, seen)
}

func TestKYCListenerIgnoresOtherTypes(t *testing.T) {
	h := newHarness()
	msg := message(1, `{"id":"ev-1","type":"identity.profile.updated.v1","data":{}}`)

	require.NoError(t, h.listener.Handle(context.Background(), msg))
	assert.Zero(t, *h.calls)
}

type failingInbox struct{}

func (failingInbox) Seen(context.Context, string) (bool, error) {
	return false, errors.New("inbox unavailable")
}

func (failingInbox) Mark(context.Context, string) error { return nil }

func TestKYCListenerReturnsTransientErrors(t *testing.T) {
	h := newHarness()
	h.listener.Inbox = failingInbox{}
	msg := message(1, `{"id":"ev-1","type":"identity.kyc.updated.v1","data":{"renter_id":"renter-1","status":"APPROVED"}}`)

	assert.Error(t, h.listener.Handle(context.Background(), msg))
}
