// Package api wraps the attendance backend's REST endpoints in typed calls.
//
// Calls that change session state do so here: Login stores the credential
// and identity, PunchIn caches the new punch, PunchOut forgets it, Logout
// wipes the session. Requests that fail local validation return a
// *punch.ValidationError and never reach the network.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/punchctl/internal/gateway"
	"github.com/roach88/punchctl/internal/punch"
	"github.com/roach88/punchctl/internal/session"
)

// Endpoint paths, relative to the configured base URL.
const (
	PathLogin          = "/auth/login"
	PathForgotPassword = "/auth/forgot-password"
	PathVerifyOTP      = "/auth/verify-otp"
	PathResetPassword  = "/auth/reset-password"
	PathCustomers      = "/punch/customers"
	PathPending        = "/punch/pending"
	PathCompleted      = "/punch/completed"
	PathPunchIn        = "/punch/punch-in"
	PathPunchOut       = "/punch/punch-out"
	PathUsers          = "/data/users"
	PathMaster         = "/data/master"
	PathPunchRecords   = "/data/punch-records"
	PathAdminProfile   = "/admin/profile"
	PathUpdatePassword = "/admin/update-password"
)

// DefaultCompletedLimit is the page size of Completed when none is given.
const DefaultCompletedLimit = 10

// Session is the part of the session store the client writes to.
type Session interface {
	SetCredential(ctx context.Context, token string) error
	SetUser(ctx context.Context, id session.Identity) error
	User(ctx context.Context) (session.Identity, bool, error)
	CachePunch(ctx context.Context, rec punch.Record) error
	ClearCachedPunch(ctx context.Context) error
	SetAdminName(ctx context.Context, name string) error
	Clear(ctx context.Context) error
}

// Client issues typed backend calls through a gateway.
type Client struct {
	gw   *gateway.Gateway
	sess Session
	mode punch.DecodeMode
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDecodeMode selects strict or lenient punch-list decoding.
func WithDecodeMode(mode punch.DecodeMode) Option {
	return func(c *Client) { c.mode = mode }
}

// WithLogger sets the client logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client. Punch lists decode leniently unless configured.
func New(gw *gateway.Gateway, sess Session, opts ...Option) *Client {
	c := &Client{gw: gw, sess: sess, mode: punch.Lenient, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// decodeList reads a bare array or an array wrapped under "data".
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}
	if body[0] == '[' {
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data == nil {
		return []T{}, nil
	}
	return wrapped.Data, nil
}

// idString renders a JSON id that may be a string or a number.
func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
