package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/roach88/punchctl/internal/punch"
	"github.com/roach88/punchctl/internal/session"
)

// ErrNoToken is returned when a login reply carries no token.
var ErrNoToken = errors.New("login response carried no token")

// ErrPasswordMismatch is returned when a new password and its
// confirmation differ.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Credentials is the login form.
type Credentials struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
	ClientID string `json:"client_id,omitempty"`
}

// LoginResult is what a successful login establishes.
type LoginResult struct {
	Token string
	User  session.Identity
}

// Login authenticates and stores the credential and identity. When the
// reply names no user id, the submitted id is used.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	if err := punch.Validate(creds); err != nil {
		return LoginResult{}, err
	}

	var reply struct {
		Token string `json:"token"`
		Data  struct {
			ID       json.RawMessage `json:"id"`
			Name     string          `json:"name"`
			Role     string          `json:"role"`
			ClientID string          `json:"client_id"`
		} `json:"data"`
	}
	if _, err := c.gw.JSON(ctx, http.MethodPost, PathLogin, nil, creds, &reply); err != nil {
		return LoginResult{}, wrap("login", err)
	}
	if reply.Token == "" {
		return LoginResult{}, wrap("login", ErrNoToken)
	}

	user := session.Identity{
		ID:       idString(reply.Data.ID),
		Name:     reply.Data.Name,
		Role:     reply.Data.Role,
		ClientID: reply.Data.ClientID,
	}
	if user.ID == "" {
		user.ID = creds.ID
	}
	if user.ClientID == "" {
		user.ClientID = creds.ClientID
	}

	if err := c.sess.SetCredential(ctx, reply.Token); err != nil {
		return LoginResult{}, wrap("login", err)
	}
	if err := c.sess.SetUser(ctx, user); err != nil {
		return LoginResult{}, wrap("login", err)
	}

	c.log.Info("logged in", zap.String("user", user.ID))
	return LoginResult{Token: reply.Token, User: user}, nil
}

// Logout wipes the local session. The backend is not contacted.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.sess.Clear(ctx); err != nil {
		return wrap("logout", err)
	}
	return nil
}

type resetTokenReply struct {
	Token string `json:"token"`
}

// ForgotPassword requests an OTP by email. Some backends answer with a
// temporary reset token, which is returned.
func (c *Client) ForgotPassword(ctx context.Context, username, email string) (string, error) {
	req := struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
	}{username, email}
	if err := punch.Validate(req); err != nil {
		return "", err
	}

	var reply resetTokenReply
	if _, err := c.gw.JSON(ctx, http.MethodPost, PathForgotPassword, nil, req, &reply); err != nil {
		return "", wrap("forgot password", err)
	}
	return reply.Token, nil
}

// VerifyOTP exchanges the emailed OTP for a reset token.
func (c *Client) VerifyOTP(ctx context.Context, username, otp string) (string, error) {
	req := struct {
		Username string `json:"username" validate:"required"`
		OTP      string `json:"otp" validate:"required"`
	}{username, otp}
	if err := punch.Validate(req); err != nil {
		return "", err
	}

	var reply resetTokenReply
	if _, err := c.gw.JSON(ctx, http.MethodPost, PathVerifyOTP, nil, req, &reply); err != nil {
		return "", wrap("verify otp", err)
	}
	return reply.Token, nil
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password, confirm string) error {
	req := struct {
		Password string `json:"password" validate:"required"`
	}{password}
	if err := punch.Validate(req); err != nil {
		return err
	}
	if token == "" {
		return wrap("reset password", errors.New("reset token is required"))
	}
	if password != confirm {
		return wrap("reset password", ErrPasswordMismatch)
	}

	query := url.Values{"token": {token}}
	if _, err := c.gw.JSON(ctx, http.MethodPatch, PathResetPassword, query, req, nil); err != nil {
		return wrap("reset password", err)
	}
	return nil
}
