package middleware

import (
	"context"
	"errors"
	"fmt"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/queries"
)

// ErrInvalidInput wraps every error returned by Validate, so transports can
// tell malformed input from failures without knowing each sentinel.
var ErrInvalidInput = errors.New("invalid input")

// SelfValidating messages check their own shape before reaching a handler.
type SelfValidating interface {
	Validate() error
}

func Validation() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if v, ok := cmd.(SelfValidating); ok {
				if err := v.Validate(); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
				}
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryValidation() QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queries.BusFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if v, ok := q.(SelfValidating); ok {
				if err := v.Validate(); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
				}
			}
			return next.Ask(ctx, q)
		})
	}
}
