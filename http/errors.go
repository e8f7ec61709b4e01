package http

import "errors"

// ErrNotAuthenticated is returned when a protected route is called without
// a bearer token.
var ErrNotAuthenticated = errors.New("not authenticated")

// MissingHeaderError reports a required credential header that was absent
// or empty. The header name is included so callers can fix the request.
type MissingHeaderError struct {
	Header string
}

func (e *MissingHeaderError) Error() string {
	return "missing required header: " + e.Header
}
