package service

import (
	"time"

	"github.com/DaDevFox/task-systems/forecast-core/internal/events"
	"github.com/DaDevFox/task-systems/forecast-core/internal/metrics"
)

// Clock returns the current time; injected so forecast labels are reproducible
type Clock func() time.Time

// Option configures optional collaborators of the forecasting services
type Option func(*options)

type options struct {
	metrics   *metrics.Metrics
	publisher events.Publisher
	clock     Clock
}

// WithMetrics records run statistics on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithEventPublisher publishes forecast and restock events on p
func WithEventPublisher(p events.Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// WithClock overrides the wall clock used for forecast period labels
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func applyOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
