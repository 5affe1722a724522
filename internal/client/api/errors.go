package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindUnauthorized means the API rejected the bearer token listing sessions.
	KindUnauthorized Kind = iota + 1
	// KindFetchFailed is any other failure listing sessions.
	KindFetchFailed
	// KindRequestFailed is a failed create, update, delete, login or register call.
	KindRequestFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindFetchFailed:
		return "FetchFailed"
	case KindRequestFailed:
		return "RequestFailed"
	default:
		return "Unknown"
	}
}

// ErrNoToken is returned when a successful login response carries no token.
var ErrNoToken = errors.New("api: login response has no token")

// Error is a non-2xx answer from the API.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err means the API no longer accepts the
// caller's bearer token.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == KindUnauthorized || apiErr.StatusCode == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// statusText returns the reason phrase of resp ("Not Found" for "404 Not Found").
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func requestFailed(resp *http.Response) *Error {
	return &Error{
		Kind:       KindRequestFailed,
		StatusCode: resp.StatusCode,
		Message:    statusText(resp),
	}
}
