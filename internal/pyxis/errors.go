package pyxis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/stacklok/pyxis-mcp-server/internal/httpclient"
)

// Error kinds returned by the client. Match them with errors.Is.
var (
	// ErrAuth is returned when the API key is missing or rejected (HTTP 401/403)
	ErrAuth = errors.New("authentication failed")
	// ErrConnection is returned when Pyxis could not be reached or timed out
	ErrConnection = errors.New("connection failed")
	// ErrNotFound is returned when the requested resource does not exist (HTTP 404)
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is returned when Pyxis throttles the caller (HTTP 429)
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrAPI is returned for any other non-2xx response or an unreadable body
	ErrAPI = errors.New("api error")
	// ErrValidation is returned when caller input is malformed; no request is sent
	ErrValidation = errors.New("invalid request")
)

// Error is the concrete error returned by the client.
type Error struct {
	// Kind is one of the Err* sentinels above
	Kind error

	// StatusCode is the HTTP status, or 0 when no response was received
	StatusCode int

	// Message is a human-readable description of the failure
	Message string

	// RetryAfter carries the Retry-After header of a 429 response, if any
	RetryAfter string

	// Err is the underlying cause, if any
	Err error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is the kind of this error
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// classify maps a transport error onto the client error taxonomy. timeout is
// the per-request limit reported when the request timed out.
func classify(err error, endpoint string, timeout time.Duration) error {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return fromHTTPError(httpErr)
	}

	if errors.Is(err, httpclient.ErrRequestFailed) {
		e := &Error{Kind: ErrConnection, Err: err}
		var netErr net.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
			e.Message = fmt.Sprintf("request to %s timed out after %s", endpoint, timeout)
		case errors.Is(err, context.Canceled):
			e.Message = fmt.Sprintf("request to %s was canceled", endpoint)
		default:
			e.Message = fmt.Sprintf("failed to connect to Pyxis at %s", endpoint)
		}
		return e
	}

	return &Error{
		Kind:    ErrAPI,
		Message: fmt.Sprintf("request to %s failed: %v", endpoint, err),
		Err:     err,
	}
}

func fromHTTPError(httpErr *httpclient.HTTPError) *Error {
	e := &Error{
		StatusCode: httpErr.StatusCode,
		Err:        httpErr,
	}

	switch httpErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = ErrAuth
		e.Message = "check your API key"
	case http.StatusNotFound:
		e.Kind = ErrNotFound
	case http.StatusTooManyRequests:
		e.Kind = ErrRateLimited
		if httpErr.Header != nil {
			e.RetryAfter = httpErr.Header.Get("Retry-After")
		}
	default:
		e.Kind = ErrAPI
	}

	detail := errorDetail(httpErr.Body)
	msg := fmt.Sprintf("request failed with status %d", httpErr.StatusCode)
	if detail != "" {
		msg += ": " + detail
	}
	if e.Message != "" {
		msg = e.Message + " (" + msg + ")"
	}
	if e.RetryAfter != "" {
		msg += fmt.Sprintf(", retry after %ss", e.RetryAfter)
	}
	e.Message = msg

	return e
}

// errorDetail extracts the most useful description from a Pyxis error body.
// Pyxis reports errors as {"detail": "..."} or {"message": "..."}; anything
// else is returned trimmed.
func errorDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if gjson.ValidBytes(body) {
		for _, key := range []string{"detail", "message", "title"} {
			if v := gjson.GetBytes(body, key); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
		if gjson.ParseBytes(body).IsObject() {
			return ""
		}
	}
	text := strings.TrimSpace(string(body))
	const maxLen = 300
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	return text
}
