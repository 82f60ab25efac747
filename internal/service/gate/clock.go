package gate

import "time"

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type options struct {
	now Clock
}

type Option func(*options)

// WithClock overrides time.Now.
func WithClock(now Clock) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
