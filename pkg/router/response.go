package router

import (
	"errors"
	"fmt"
	"net/http"
)

// Response is a raw response a loader or action can return or fail with.
// A 3xx Response with a Location header is a redirect.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates a response with a text body.
func NewResponse(status int, body string) *Response {
	return &Response{Status: status, Header: http.Header{}, Body: []byte(body)}
}

// Redirect creates a redirect response. The status defaults to 302.
func Redirect(url string, status ...int) *Response {
	code := http.StatusFound
	if len(status) > 0 {
		code = status[0]
	}
	h := http.Header{}
	h.Set("Location", url)
	return &Response{Status: code, Header: h}
}

// Error implements error so a Response can be returned as a failure.
func (r *Response) Error() string {
	if r.IsRedirect() {
		return fmt.Sprintf("redirect %d to %s", r.Status, r.Location())
	}
	return fmt.Sprintf("response %d %s", r.Status, http.StatusText(r.Status))
}

// IsRedirect reports whether r is a 3xx response with a Location.
func (r *Response) IsRedirect() bool {
	return r != nil && r.Status >= 300 && r.Status < 400 && r.Location() != ""
}

// Location returns the redirect target.
func (r *Response) Location() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Location")
}

// ErrorResponse is a route error carrying an HTTP status, produced for
// unmatched paths, unsupported submissions and failed non-redirect
// Responses.
type ErrorResponse struct {
	Status     int
	StatusText string
	Data       any
	Internal   error
}

func newErrorResponse(status int, internal error) *ErrorResponse {
	return &ErrorResponse{
		Status:     status,
		StatusText: http.StatusText(status),
		Internal:   internal,
	}
}

// Error implements error.
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.StatusText)
}

// Unwrap returns the internal error.
func (e *ErrorResponse) Unwrap() error {
	return e.Internal
}

// IsErrorResponse reports whether err is (or wraps) an *ErrorResponse.
func IsErrorResponse(err error) (*ErrorResponse, bool) {
	var er *ErrorResponse
	if errors.As(err, &er) {
		return er, true
	}
	return nil, false
}

// redirectOf extracts a redirect from a handler result or failure.
func redirectOf(v any, err error) (*Response, bool) {
	var r *Response
	if errors.As(err, &r) && r.IsRedirect() {
		return r, true
	}
	if rv, ok := v.(*Response); ok && rv.IsRedirect() {
		return rv, true
	}
	return nil, false
}

// normalizeError converts a failed non-redirect Response into an
// ErrorResponse; other errors pass through.
func normalizeError(err error) error {
	var r *Response
	if errors.As(err, &r) {
		er := newErrorResponse(r.Status, nil)
		er.Data = string(r.Body)
		return er
	}
	return err
}

func statusOf(err error) int {
	if er, ok := IsErrorResponse(err); ok {
		return er.Status
	}
	return http.StatusInternalServerError
}
