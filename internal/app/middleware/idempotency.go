package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"rentbook/internal/app/commands"
)

// IdempotentCommand is implemented by commands that may be retried by clients
// with the same Idempotency-Key header.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a pointer the stored result is decoded into.
	ResultPrototype() any
}

// ScopedCommand narrows an idempotency key to the caller that sent it, so
// two callers reusing one key never see each other's results.
type ScopedCommand interface {
	IdempotencyScope() string
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	OccurredAt time.Time
	ExpiresAt  time.Time
}

func (r IdempotencyRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// IdempotencyOptions tunes Idempotency; zero values pick defaults.
type IdempotencyOptions struct {
	Codec ResultCodec
	TTL   time.Duration
	Now   func() time.Time
}

// Idempotency replays the stored result of a command already handled under
// the same key. Only successful results are stored, so a rejected request
// can be corrected and retried with the same key. Concurrent duplicates are
// serialized per key.
func Idempotency(store IdempotencyStore, opts IdempotencyOptions) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if opts.Codec == nil {
		opts.Codec = JSONResultCodec{}
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	locks := &keyedMutex{held: map[string]*keyLock{}}
	return func(next commands.Bus) commands.Bus {
		return commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := storageKey(idCmd)
			unlock := locks.lock(key)
			defer unlock()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found && !rec.Expired(opts.Now()) {
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := opts.Codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return proto, nil
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			now := opts.Now().UTC()
			record := IdempotencyRecord{Key: key, OccurredAt: now, ExpiresAt: now.Add(opts.TTL)}
			if result != nil {
				if record.Payload, err = opts.Codec.Encode(result); err != nil {
					return nil, err
				}
			}
			if err := store.Save(ctx, record); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}

func storageKey(cmd IdempotentCommand) string {
	if scoped, ok := cmd.(ScopedCommand); ok {
		if scope := scoped.IdempotencyScope(); scope != "" {
			return cmd.Key() + ":" + scope + ":" + cmd.IdempotencyKey()
		}
	}
	return cmd.Key() + ":" + cmd.IdempotencyKey()
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type keyedMutex struct {
	mu   sync.Mutex
	held map[string]*keyLock
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.held[key]
	if !ok {
		l = &keyLock{}
		k.held[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.held, key)
		}
		k.mu.Unlock()
	}
}
