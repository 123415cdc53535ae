package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/valyala/fasthttp"
)

// Gateway error taxonomy. Every failure leaving this package is one of
// these (or a *StatusError), so callers can pick a user-facing message
// without inspecting transport details.
var (
	// ErrTimeout: the server did not answer within the request deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrUnreachable: transport-level failure before any response.
	ErrUnreachable = errors.New("server unreachable")
	// ErrAuthDenied: the backend rejected the bearer credential.
	ErrAuthDenied = errors.New("authorization denied")
	// ErrBadPayload: a 2xx response whose body could not be decoded.
	ErrBadPayload = errors.New("malformed response body")
)

// StatusError is a non-2xx response outside the auth case, carrying the
// backend's structured reason when it sent one.
type StatusError struct {
	Status int
	Reason string
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("api error: status=%d reason=%s", e.Status, e.Reason)
	}
	return fmt.Sprintf("api error: status=%d", e.Status)
}

func IsTimeout(err error) bool     { return errors.Is(err, ErrTimeout) }
func IsUnreachable(err error) bool { return errors.Is(err, ErrUnreachable) }
func IsAuthDenied(err error) bool  { return errors.Is(err, ErrAuthDenied) }
func IsBadPayload(err error) bool  { return errors.Is(err, ErrBadPayload) }

// BusinessReason returns the backend-provided reason when err wraps a
// StatusError that carried one.
func BusinessReason(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.Reason != "" {
		return se.Reason, true
	}
	return "", false
}

// classifyTransport maps a fasthttp transport error to the taxonomy.
func classifyTransport(err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) ||
		errors.Is(err, fasthttp.ErrDialTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		os.IsTimeout(err) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// classifyStatus maps a non-2xx response to the taxonomy. The backend's
// error payload, when present, is `{"error": "..."}`.
func classifyStatus(status int, body []byte) error {
	if status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden {
		return fmt.Errorf("%w: status=%d", ErrAuthDenied, status)
	}
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	return &StatusError{Status: status, Reason: payload.Error}
}
