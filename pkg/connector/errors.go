package connector

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

var (
	// ErrValidation is matched by every ValidationError. Validation errors
	// are raised before any network activity.
	ErrValidation = errors.New("connector: invalid input")

	// ErrAuth marks failures to obtain or refresh a credential.
	ErrAuth = errors.New("connector: authentication failed")

	// ErrMalformed marks a success response whose body could not be used.
	ErrMalformed = errors.New("connector: malformed response")
)

// Error is the single failure kind returned by connector operations. It
// covers non-success HTTP statuses, unusable response bodies and wrapped
// lower-level failures (network, signing, SSH).
type Error struct {
	// Connector names the remote system, e.g. "tablestorage".
	Connector string

	// Op is the operation that failed, e.g. "insert".
	Op string

	// StatusCode is the HTTP status when the remote answered, else 0.
	StatusCode int

	// Body is the raw response body for non-success statuses.
	Body string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Connector + ": " + e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": response was not ok: HTTP %d", e.StatusCode)
		if e.Body != "" {
			msg += ": " + e.Body
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewStatusError builds an Error for a non-success HTTP response.
func NewStatusError(connector, op string, statusCode int, body []byte) *Error {
	return &Error{
		Connector:  connector,
		Op:         op,
		StatusCode: statusCode,
		Body:       truncate(string(body), maxBodyInError),
	}
}

// Wrap builds an Error around a lower-level failure. Wrapping an existing
// *Error keeps it as the cause so status information is not lost.
func Wrap(connector, op string, err error) *Error {
	return &Error{Connector: connector, Op: op, Err: err}
}

// StatusCode returns the HTTP status carried by the first *Error in err's
// chain, or 0.
func StatusCode(err error) int {
	var ce *Error
	for errors.As(err, &ce) {
		if ce.StatusCode != 0 {
			return ce.StatusCode
		}
		err = ce.Err
	}
	return 0
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	return StatusCode(err) == code
}

// IsUnauthorised reports whether the remote rejected our credentials.
func IsUnauthorised(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// ValidationError reports bad caller input detected locally.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Required returns a ValidationError when value is empty.
func Required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "no " + field + " provided"}
	}
	return nil
}

const maxBodyInError = 2048

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

// Reject logs a validation failure at warn level and returns it unchanged.
// Constructors return their ValidationErrors unlogged, since no logger has
// been configured at that point.
func Reject(logger *slog.Logger, err error) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("invalid input", "error", err)
	return err
}
