package objectstore

import (
	"time"

	"github.com/dmitrijs2005/sitedir/internal/logging"
	"github.com/dmitrijs2005/sitedir/internal/server/metrics"
)

const (
	// DefaultUploadURLExpiry is the lifetime of the URL returned by Upload.
	DefaultUploadURLExpiry = 24 * time.Hour
	// DefaultSignURLExpiry is used by Sign when no expiry is given.
	DefaultSignURLExpiry = time.Hour
)

type options struct {
	logger          logging.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
	uploadURLExpiry time.Duration
	signURLExpiry   time.Duration
}

// Option configures Uploader, Signer and Deleter.
type Option func(*options)

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces time.Now for key timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithUploadURLExpiry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.uploadURLExpiry = d
		}
	}
}

func WithSignURLExpiry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.signURLExpiry = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:          logging.Discard(),
		now:             time.Now,
		uploadURLExpiry: DefaultUploadURLExpiry,
		signURLExpiry:   DefaultSignURLExpiry,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
