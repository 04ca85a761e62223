package connector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Call sends req with client and returns the body of a 2xx response. Any
// other outcome becomes an *Error, logged on logger before it is returned.
func Call(client *http.Client, req *http.Request, logger *slog.Logger, connector, op string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, Fail(logger, Wrap(connector, op, fmt.Errorf("failed to send request: %w", err)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Fail(logger, Wrap(connector, op, fmt.Errorf("failed to read response body: %w", err)))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, Fail(logger, NewStatusError(connector, op, resp.StatusCode, body))
	}

	return body, nil
}

// DecodeJSON unmarshals a success body into v, reporting failures as
// ErrMalformed.
func DecodeJSON(body []byte, v any, logger *slog.Logger, connector, op string) error {
	if err := json.Unmarshal(body, v); err != nil {
		return Fail(logger, Wrap(connector, op, fmt.Errorf("%w: %w", ErrMalformed, err)))
	}
	return nil
}

// Malformed reports a success body that decoded but lacks what op needs.
func Malformed(logger *slog.Logger, connector, op, what string) error {
	return Fail(logger, Wrap(connector, op, fmt.Errorf("%w: %s", ErrMalformed, what)))
}

// Fail logs err with its connector context and returns it unchanged.
func Fail(logger *slog.Logger, err *Error) error {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"connector", err.Connector, "op", err.Op}
	if err.StatusCode != 0 {
		attrs = append(attrs, "status", err.StatusCode)
	}
	if err.Err != nil {
		attrs = append(attrs, "error", err.Err)
	}
	logger.Error("connector call failed", attrs...)
	return err
}

// CredentialFailure reports that op could not obtain a credential. The
// result always matches ErrAuth. A cause that is already an *Error was
// logged where it arose and only gains op's context; any other cause, such
// as a token the cache refused, is logged here.
func CredentialFailure(logger *slog.Logger, connector, op string, err error) error {
	if !errors.Is(err, ErrAuth) {
		err = fmt.Errorf("%w: %w", ErrAuth, err)
	}
	var ce *Error
	if errors.As(err, &ce) {
		return Wrap(connector, op, err)
	}
	return Fail(logger, Wrap(connector, op, err))
}
