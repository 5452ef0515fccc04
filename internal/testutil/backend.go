// Package testutil provides shared fixtures for package tests: a fake
// attendance backend and a settable clock.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// APIPrefix is where the fake backend mounts its routes.
const APIPrefix = "/api"

// RecordedRequest is one request the fake backend received.
type RecordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	RequestID     string
	ContentType   string
	Body          []byte
}

// Backend is an httptest server routing with gorilla/mux. Every request,
// matched or not, is recorded before it is handled.
type Backend struct {
	Server *httptest.Server
	Router *mux.Router

	api *mux.Router

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewBackend starts a fake backend that is closed with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{Router: mux.NewRouter()}
	b.api = b.Router.PathPrefix(APIPrefix).Subrouter()
	b.Router.NotFoundHandler = http.NotFoundHandler()

	b.Server = httptest.NewServer(b.record(b.Router))
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL clients should use.
func (b *Backend) URL() string {
	return b.Server.URL + APIPrefix
}

// Handle answers method+path with a fixed status and body.
func (b *Backend) Handle(method, path string, status int, body string) {
	b.HandleFunc(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// HandleFunc routes method+path to fn.
func (b *Backend) HandleFunc(method, path string, fn http.HandlerFunc) {
	b.api.HandleFunc(path, fn).Methods(method)
}

// Requests returns every request received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// Count returns how many requests hit method+path (path without APIPrefix).
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == APIPrefix+path {
			n++
		}
	}
	return n
}

// Last returns the most recent request to method+path.
func (b *Backend) Last(method, path string) (RecordedRequest, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == APIPrefix+path {
			return reqs[i], true
		}
	}
	return RecordedRequest{}, false
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}
