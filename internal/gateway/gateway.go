package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/punchctl/internal/route"
)

// Session is the part of the session store the gateway touches.
type Session interface {
	Credential(ctx context.Context) (string, error)
	ClearCredential(ctx context.Context) error
	ClearCachedPunch(ctx context.Context) error
}

// Config holds gateway construction parameters.
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string

	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	// RequestIDs overrides the UUIDv7 request ID generator.
	RequestIDs RequestIDGenerator
}

// Gateway dispatches requests to the backend.
type Gateway struct {
	base    string
	client  *http.Client
	session Session
	nav     route.Navigator
	log     *zap.Logger
	ids     RequestIDGenerator

	mu           sync.Mutex
	handled      bool
	lastRejected string
}

// New builds a Gateway. nav and log may be nil.
func New(cfg Config, sess Session, nav route.Navigator, log *zap.Logger) *Gateway {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	ids := cfg.RequestIDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	if nav == nil {
		nav = route.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		session: sess,
		nav:     nav,
		log:     log,
		ids:     ids,
	}
}

// Request describes one backend call.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        io.Reader
	ContentType string
}

// Response is a successful backend reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Do sends req. A non-2xx reply is returned as *APIError.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	target := g.base + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.Body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.Method, req.Path, err)
	}

	requestID := g.ids.Generate()
	httpReq.Header.Set("Accept", "application/json")
	if requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	token, err := g.session.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.log.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.Path, err)
	}

	g.log.Debug("request done",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		g.rejected(ctx, token)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body, requestID)
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// rejected wipes the session and redirects to login, once per token.
func (g *Gateway) rejected(ctx context.Context, token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Nothing new to wipe: the same token again, or no token after a wipe.
	if g.handled && (token == g.lastRejected || token == "") {
		return
	}
	g.handled = true
	g.lastRejected = token

	if err := g.session.ClearCredential(ctx); err != nil {
		g.log.Error("clear credential after 401", zap.Error(err))
	}
	if err := g.session.ClearCachedPunch(ctx); err != nil {
		g.log.Error("clear cached punch after 401", zap.Error(err))
	}
	g.log.Info("credential rejected, redirecting to login")
	g.nav.Navigate(route.Login)
}

// JSON sends in (if non-nil) as a JSON body and decodes a 2xx reply into
// out (if non-nil).
func (g *Gateway) JSON(ctx context.Context, method, path string, query url.Values, in, out any) (*Response, error) {
	req := Request{Method: method, Path: path, Query: query}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Body = bytes.NewReader(b)
		req.ContentType = "application/json"
	}

	resp, err := g.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if out != nil && len(bytes.TrimSpace(resp.Body)) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}
