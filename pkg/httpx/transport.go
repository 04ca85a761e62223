package httpx

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tgedr/connectors/pkg/idx"
	"github.com/tgedr/connectors/pkg/slogx"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderAzureRequestID = "x-ms-client-request-id"
)

type transport struct {
	base      http.RoundTripper
	connector string
	logger    *slog.Logger
	metrics   *Metrics
	headers   []string
}

// RoundTrip stamps a request id, forwards the request and records the
// outcome. The caller's request is never mutated.
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	reqID := req.Header.Get(t.headers[0])
	if reqID == "" {
		reqID = idx.New().String()
	}

	out := req.Clone(req.Context())
	for _, h := range t.headers {
		if out.Header.Get(h) == "" {
			out.Header.Set(h, reqID)
		}
	}

	logger := slogx.FromContext(req.Context(), t.logger).With(
		"req_id", reqID,
		"connector", t.connector,
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
	)

	resp, err := t.base.RoundTrip(out)
	elapsed := time.Since(start)

	if err != nil {
		t.metrics.observe(t.connector, req.Method, "error", elapsed)
		logger.Warn("http_request", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}

	t.metrics.observe(t.connector, req.Method, strconv.Itoa(resp.StatusCode), elapsed)
	logger.Debug("http_request", "status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())

	return resp, nil
}
