package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/tgedr/connectors/pkg/azuread"
	"github.com/tgedr/connectors/pkg/httpx"
	"github.com/tgedr/connectors/pkg/monetate"
	"github.com/tgedr/connectors/pkg/sftpx"
	"github.com/tgedr/connectors/pkg/slogx"
	"github.com/tgedr/connectors/pkg/tablestorage"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	metricsJob = "connectors"
)

// Application builds connectors from one Config, sharing a logger and a
// metrics registry between them.
type Application struct {
	cfg    Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *httpx.Metrics
}

// New creates an Application logging to logOutput (stderr when nil).
func New(cfg Config, logOutput io.Writer) (*Application, error) {
	if logOutput == nil {
		logOutput = os.Stderr
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "connectors",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  logOutput,
		}),
		registry: prometheus.NewRegistry(),
	}

	if err := app.registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}

	metrics, err := httpx.NewMetrics(app.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	app.metrics = metrics

	return app, nil
}

func (a *Application) Config() Config { return a.cfg }

func (a *Application) Logger() *slog.Logger { return a.logger }

func (a *Application) Registry() *prometheus.Registry { return a.registry }

// HTTPClient returns an instrumented client labelled with connector.
func (a *Application) HTTPClient(connector string, requestIDHeaders ...string) *http.Client {
	return httpx.NewClient(httpx.Options{
		Connector:        connector,
		Timeout:          time.Duration(a.cfg.HTTPTimeout),
		Logger:           a.logger,
		Metrics:          a.metrics,
		RequestIDHeaders: requestIDHeaders,
	})
}

// AzureAD returns a token client for the configured authority.
func (a *Application) AzureAD() *azuread.Client {
	c := azuread.NewClient()
	if a.cfg.AzureAD.AuthorityURL != "" {
		c.AuthorityURL = a.cfg.AzureAD.AuthorityURL
	}
	c.HTTPClient = a.HTTPClient("azuread", httpx.HeaderAzureRequestID)
	c.Logger = a.logger
	return c
}

// Table returns a client for table in the configured storage account, or
// for the configured table when table is empty.
func (a *Application) Table(table string) (*tablestorage.Client, error) {
	tc := a.cfg.Table
	if table == "" {
		table = tc.Table
	}
	c, err := tablestorage.New(tc.Account, tc.Key, table)
	if err != nil {
		return nil, err
	}
	if tc.BaseURL != "" {
		c.BaseURL = tc.BaseURL
	}
	c.HTTPClient = a.HTTPClient("tablestorage", httpx.HeaderAzureRequestID)
	c.Logger = a.logger
	return c, nil
}

// SFTP returns an uploader for the configured server.
func (a *Application) SFTP() (*sftpx.Uploader, error) {
	sc := a.cfg.SFTP
	u, err := sftpx.NewUploader(sc.Host, sc.Username, sc.Password)
	if err != nil {
		return nil, err
	}
	if sc.Port != 0 {
		u.Port = sc.Port
	}
	if t := time.Duration(sc.DialTimeout); t > 0 {
		u.DialTimeout = t
	}
	u.Logger = a.logger
	return u, nil
}

// Monetate returns a data API client. The private key comes from the
// config value or, failing that, the configured key file.
func (a *Application) Monetate() (*monetate.Client, error) {
	mc := a.cfg.Monetate

	key := mc.PrivateKey
	if key == "" && mc.PrivateKeyFile != "" {
		raw, err := os.ReadFile(mc.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read monetate private key: %w", err)
		}
		key = string(raw)
	}

	c, err := monetate.New(mc.Username, key)
	if err != nil {
		return nil, err
	}

	account, env := mc.Account, mc.Environment
	if account == "" {
		account = monetate.DefaultAccount
	}
	if env == "" {
		env = monetate.DefaultEnvironment
	}
	c.DataURL = monetate.DataURLFor(account, env)
	if mc.DataURL != "" {
		c.DataURL = mc.DataURL
	}
	if mc.TokenURL != "" {
		c.TokenURL = mc.TokenURL
	}
	c.HTTPClient = a.HTTPClient("monetate")
	c.Logger = a.logger
	return c, nil
}

// PushMetrics sends the registry to the configured Pushgateway, replacing
// earlier pushes for the same env. It is a no-op without a Pushgateway.
func (a *Application) PushMetrics(ctx context.Context) error {
	if a.cfg.Pushgateway == "" {
		return nil
	}

	err := push.New(a.cfg.Pushgateway, metricsJob).
		Gatherer(a.registry).
		Grouping("env", a.cfg.Env).
		PushContext(ctx)
	if err != nil {
		a.logger.Error("failed to push metrics", "pushgateway", a.cfg.Pushgateway, "error", err)
		return fmt.Errorf("push metrics: %w", err)
	}

	a.logger.Debug("metrics pushed", "pushgateway", a.cfg.Pushgateway)
	return nil
}
