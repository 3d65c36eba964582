package domain

import "time"

// Clock is the only source of "now" for the core. It is sampled once per
// operation and the resulting date is passed down.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

func Today(c Clock) Date {
	return DateOf(c.Now())
}
