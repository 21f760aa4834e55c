package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/app/commands"
)

type holdCmd struct{ units int }

func (holdCmd) Key() string { return "test.hold" }

type otherCmd struct{}

func (otherCmd) Key() string { return "test.other" }

func TestDispatchRoutesByKey(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[holdCmd, int](bus, commands.HandlerFunc[holdCmd, int](
		func(_ context.Context, cmd holdCmd) (int, error) { return cmd.units * 2, nil }))

	got, err := commands.Dispatch[holdCmd, int](context.Background(), bus, holdCmd{units: 3})
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	_, err = bus.Dispatch(context.Background(), otherCmd{})
	require.ErrorIs(t, err, commands.ErrHandlerNotFound)
	assert.Contains(t, err.Error(), "test.other")
}

func TestDispatchReportsResultMismatch(t *testing.T) {
	bus := commands.BusFunc(func(context.Context, commands.Command) (any, error) { return "ok", nil })

	_, err := commands.Dispatch[holdCmd, int](context.Background(), bus, holdCmd{})
	require.ErrorIs(t, err, commands.ErrResultType)
	assert.Contains(t, err.Error(), "test.hold returned string")

	_, err = commands.Dispatch[holdCmd, int](context.Background(), nil, holdCmd{})
	assert.ErrorIs(t, err, commands.ErrNilBus)
}

func TestRegisterHandlerRejectsDuplicates(t *testing.T) {
	bus := commands.NewInMemoryBus()
	h := commands.HandlerFunc[holdCmd, int](func(context.Context, holdCmd) (int, error) { return 0, nil })
	commands.RegisterHandler[holdCmd, int](bus, h)
	assert.Panics(t, func() { commands.RegisterHandler[holdCmd, int](bus, h) })
}
