package api

import (
	"context"
	"net/http"

	"github.com/roach88/punchctl/internal/gateway"
	"github.com/roach88/punchctl/internal/punch"
)

// Users returns the admin user listing.
func (c *Client) Users(ctx context.Context) ([]punch.User, error) {
	return getList[punch.User](ctx, c, PathUsers, "users")
}

// Master returns customer master data.
func (c *Client) Master(ctx context.Context) ([]punch.Customer, error) {
	return getList[punch.Customer](ctx, c, PathMaster, "master data")
}

// PunchRecords returns every punch log visible to the admin.
func (c *Client) PunchRecords(ctx context.Context) ([]punch.Log, error) {
	return getList[punch.Log](ctx, c, PathPunchRecords, "punch records")
}

func getList[T any](ctx context.Context, c *Client, path, op string) ([]T, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, wrap(op, err)
	}
	list, err := decodeList[T](resp.Body)
	if err != nil {
		return nil, wrap(op, err)
	}
	return list, nil
}

// Profile is the signed-in admin.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AdminProfile fetches the admin profile and remembers its display name.
func (c *Client) AdminProfile(ctx context.Context) (Profile, error) {
	var reply struct {
		Profile
		Data *Profile `json:"data"`
	}
	if _, err := c.gw.JSON(ctx, http.MethodGet, PathAdminProfile, nil, nil, &reply); err != nil {
		return Profile{}, wrap("admin profile", err)
	}
	p := reply.Profile
	if reply.Data != nil {
		p = *reply.Data
	}
	if p.Name != "" {
		if err := c.sess.SetAdminName(ctx, p.Name); err != nil {
			return Profile{}, wrap("admin profile", err)
		}
	}
	return p, nil
}

// UpdatePassword changes the admin password.
func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	req := struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,nefield=CurrentPassword"`
	}{current, next}
	if err := punch.Validate(req); err != nil {
		return err
	}
	if _, err := c.gw.JSON(ctx, http.MethodPatch, PathUpdatePassword, nil, req, nil); err != nil {
		return wrap("update password", err)
	}
	return nil
}
