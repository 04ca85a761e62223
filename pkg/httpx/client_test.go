package httpx_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/tgedr/connectors/pkg/httpx"
)

func TestNewClientTimeouts(t *testing.T) {
	t.Parallel()

	require.Equal(t, httpx.DefaultTimeout, httpx.NewClient(httpx.Options{}).Timeout)
	require.Equal(t, 5*time.Second, httpx.NewClient(httpx.Options{Timeout: 5 * time.Second}).Timeout)
	require.Zero(t, httpx.NewClient(httpx.Options{Timeout: -1}).Timeout)
}

func TestTransportStampsRequestIDs(t *testing.T) {
	t.Parallel()

	seen := make(chan http.Header, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := httpx.NewClient(httpx.Options{
		Connector:        "tablestorage",
		Logger:           slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		RequestIDHeaders: []string{httpx.HeaderRequestID, httpx.HeaderAzureRequestID},
	})

	t.Run("generated", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		h := <-seen
		id := h.Get(httpx.HeaderRequestID)
		_, err = ulid.ParseStrict(id)
		require.NoError(t, err)
		require.Equal(t, id, h.Get(httpx.HeaderAzureRequestID))
		require.Empty(t, req.Header.Get(httpx.HeaderRequestID), "caller request must not be mutated")
	})

	t.Run("caller supplied", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		req.Header.Set(httpx.HeaderRequestID, "fixed")
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		h := <-seen
		require.Equal(t, "fixed", h.Get(httpx.HeaderRequestID))
		require.Equal(t, "fixed", h.Get(httpx.HeaderAzureRequestID))
	})
}

func TestTransportLogsAndMeasures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	metrics, err := httpx.NewMetrics(reg)
	require.NoError(t, err)

	var logs bytes.Buffer
	client := httpx.NewClient(httpx.Options{
		Connector: "monetate",
		Logger:    slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Metrics:   metrics,
	})

	for range 3 {
		resp, err := client.Get(srv.URL + "/data/x/")
		require.NoError(t, err)
		resp.Body.Close()
	}

	expected := `
# HELP connectors_http_requests_total Outbound HTTP requests by connector, method and status code.
# TYPE connectors_http_requests_total counter
connectors_http_requests_total{code="418",connector="monetate",method="GET"} 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "connectors_http_requests_total"))
	require.Contains(t, logs.String(), "msg=http_request")
	require.Contains(t, logs.String(), "status=418")
	require.Contains(t, logs.String(), "path=/data/x/")
}

func TestNewMetricsIsIdempotentPerRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := httpx.NewMetrics(reg)
	require.NoError(t, err)
	_, err = httpx.NewMetrics(reg)
	require.NoError(t, err)
}
