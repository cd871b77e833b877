package repository

import (
	"time"

	"github.com/okian/riftbalance/pkg/logger"
)

// Default SQLite settings.
const (
	defaultBusyTimeout = 5 * time.Second
)

type options struct {
	now         func() time.Time
	busyTimeout time.Duration
	logger      logger.Logger
}

func newOptions(opts []Option) options {
	o := options{
		now:         func() time.Time { return time.Now().UTC() },
		busyTimeout: defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
