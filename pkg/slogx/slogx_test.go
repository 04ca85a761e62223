package slogx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewWritesJSONWithServiceFields(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := New(Config{Service: "connectors", Version: "v1", Env: "test", Level: "info", Output: &buf})
	logger.Info("hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "connectors", entry["service"])
	require.Equal(t, "v", entry["k"])
}

func TestNewTextFormatHonoursLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := New(Config{Format: "text", Level: "warn", Output: &buf})
	logger.Info("dropped")
	require.Empty(t, buf.String())

	logger.Warn("kept")
	require.Contains(t, buf.String(), "msg=kept")
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	fallback := Discard()
	require.Same(t, fallback, FromContext(context.Background(), fallback))

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := With(context.Background(), l, "command", "connectors table get")
	ctx = With(ctx, nil, "attempt", 1)
	FromContext(ctx, fallback).Info("x")
	require.Contains(t, buf.String(), `command="connectors table get"`)
	require.Contains(t, buf.String(), "attempt=1")
}

func TestNewRedactsSecrets(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := New(Config{Service: "connectors", Output: &buf, RedactKeys: []string{"sas"}})
	logger.Info("creds",
		"client_secret", "s3cr3t",
		"Password", "hunter2",
		"sas", "sv=2020",
		slog.Group("req", "authorization", "SharedKeyLite acct:sig"),
		"username", "feeds",
	)

	out := buf.String()
	for _, leaked := range []string{"s3cr3t", "hunter2", "sv=2020", "acct:sig"} {
		require.NotContains(t, out, leaked)
	}
	require.Contains(t, out, `"username":"feeds"`)
	require.Contains(t, out, Redacted)
}
