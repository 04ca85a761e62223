package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole exchange when Options.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Options configures an instrumented outbound client.
type Options struct {
	// Connector labels logs and metrics, e.g. "tablestorage".
	Connector string

	// Timeout for the whole request/response exchange. Zero means
	// DefaultTimeout, negative means no client-side timeout.
	Timeout time.Duration

	// Logger receives one line per exchange. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is optional; nil disables instrumentation.
	Metrics *Metrics

	// RequestIDHeaders are set to a fresh request id on every request that
	// does not already carry them. Defaults to X-Request-ID.
	RequestIDHeaders []string

	// Base is the underlying transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// NewClient returns an *http.Client whose transport logs and measures every
// exchange.
func NewClient(opts Options) *http.Client {
	timeout := opts.Timeout
	switch {
	case timeout == 0:
		timeout = DefaultTimeout
	case timeout < 0:
		timeout = 0
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(opts),
	}
}

// NewTransport returns the instrumented RoundTripper used by NewClient.
func NewTransport(opts Options) http.RoundTripper {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	headers := opts.RequestIDHeaders
	if len(headers) == 0 {
		headers = []string{HeaderRequestID}
	}

	return &transport{
		base:      base,
		connector: opts.Connector,
		logger:    logger,
		metrics:   opts.Metrics,
		headers:   headers,
	}
}
