package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "rentbook/internal/app/outbox"
)

type outboxState int

const (
	outboxNew outboxState = iota
	outboxClaimed
	outboxSent
	outboxFailed
)

type outboxEntry struct {
	record    appoutbox.EventRecord
	state     outboxState
	attempts  int
	nextTry   time.Time
	lastError string
}

// Outbox queues event records in memory for the relay worker. Flush wakes
// the worker instead of waiting for its next poll.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	notify  chan struct{}
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{notify: make(chan struct{}, 1), now: time.Now}
}

// Add stages record in the memory unit of work carried by ctx when the unit
// was begun with this outbox; otherwise the record is queued right away.
func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if u, ok := unitFrom(ctx); ok && u.box == o {
		u.events = append(u.events, record)
		return nil
	}
	o.enqueue([]appoutbox.EventRecord{record})
	return nil
}

func (o *Outbox) enqueue(records []appoutbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	for _, r := range records {
		o.entries = append(o.entries, &outboxEntry{record: r, nextTry: now})
	}
}

func (o *Outbox) Flush(context.Context) error {
	select {
	case o.notify <- struct{}{}:
	default:
	}
	return nil
}

// Wakeup fires after Flush; the worker selects on it next to its ticker.
func (o *Outbox) Wakeup() <-chan struct{} { return o.notify }

func (o *Outbox) Claim(_ context.Context, _ string) (*appoutbox.Pending, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	for _, e := range o.entries {
		if (e.state == outboxNew || e.state == outboxFailed) && !e.nextTry.After(now) {
			e.state = outboxClaimed
			return &appoutbox.Pending{EventRecord: e.record, Attempts: e.attempts}, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.entries[:0]
	for _, e := range o.entries {
		if e.record.ID != id {
			kept = append(kept, e)
		}
	}
	o.entries = kept
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.record.ID == id {
			e.state = outboxFailed
			e.attempts++
			e.nextTry = next
			e.lastError = reason
		}
	}
	return nil
}

// Pending reports how many records still wait for delivery.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

var (
	_ appoutbox.Outbox = (*Outbox)(nil)
	_ appoutbox.Relay  = (*Outbox)(nil)
)
