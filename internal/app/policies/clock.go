package policies

import "time"

// Clock supplies "now" to handlers; the domain never reads the wall clock.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

func (c Clock) Now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c().UTC()
}
