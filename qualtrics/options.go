package qualtrics

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	logger  zerolog.Logger
	baseURL string
	timeout time.Duration
	resty   *resty.Client
	doer    Doer
	clock   clockwork.Clock
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithBaseURL overrides the data-center derived API root
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout of the default transport
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRestyClient sets the resty client the default transport uses
func WithRestyClient(client *resty.Client) Option {
	return func(o *clientOptions) {
		o.resty = client
	}
}

// WithDoer replaces the transport entirely
func WithDoer(doer Doer) Option {
	return func(o *clientOptions) {
		o.doer = doer
	}
}

// WithClock sets the clock used for default dates and export polling
func WithClock(clock clockwork.Clock) Option {
	return func(o *clientOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}
