package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is wrapped by the *APIError of every 401 response.
var ErrUnauthorized = errors.New("credential rejected")

// APIError is a non-2xx backend response.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the backend's "message" (or "error") field, if any.
	Message string

	// Body is the raw response body.
	Body []byte

	// RequestID is the X-Request-ID sent with the failed request.
	RequestID string

	err error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// MessageOf returns the user-facing text for err: the backend message when
// there is one, otherwise err.Error().
func MessageOf(err error) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}

func newAPIError(status int, body []byte, requestID string) *APIError {
	e := &APIError{
		Status:    status,
		Body:      body,
		RequestID: requestID,
		Message:   backendMessage(body),
	}
	if status == http.StatusUnauthorized {
		e.err = ErrUnauthorized
	}
	return e
}

func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return strings.TrimSpace(payload.Message)
	}
	return strings.TrimSpace(payload.Error)
}
