package services

import "time"

type clock struct {
	now func() time.Time
}

// Option configures a service at construction time.
type Option func(*clock)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *clock) { c.now = now }
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, o := range opts {
		o(&c)
	}
	return c
}
