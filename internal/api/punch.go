package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/roach88/punchctl/internal/gateway"
	"github.com/roach88/punchctl/internal/punch"
)

// Customers returns the customer/site list for the punch-in form.
func (c *Client) Customers(ctx context.Context) ([]punch.Customer, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{Method: http.MethodGet, Path: PathCustomers})
	if err != nil {
		return nil, wrap("customers", err)
	}
	list, err := decodeList[punch.Customer](resp.Body)
	if err != nil {
		return nil, wrap("customers", err)
	}
	return list, nil
}

// Pending returns the backend's pending punches in whatever shape it sent,
// normalised to a slice. Filtering by user is the caller's job.
func (c *Client) Pending(ctx context.Context) ([]punch.Record, error) {
	resp, err := c.gw.Do(ctx, gateway.Request{Method: http.MethodGet, Path: PathPending})
	if err != nil {
		return nil, wrap("pending punches", err)
	}
	list, err := punch.DecodeRecords(resp.Body, c.mode)
	if err != nil {
		return nil, wrap("pending punches", err)
	}
	return list, nil
}

// Completed returns up to limit closed punches of the current user.
// limit <= 0 means DefaultCompletedLimit.
func (c *Client) Completed(ctx context.Context, limit int) ([]punch.Record, error) {
	if limit <= 0 {
		limit = DefaultCompletedLimit
	}
	resp, err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   PathCompleted,
		Query:  url.Values{"limit": {strconv.Itoa(limit)}},
	})
	if err != nil {
		return nil, wrap("completed punches", err)
	}
	list, err := punch.DecodeRecords(resp.Body, c.mode)
	if err != nil {
		return nil, wrap("completed punches", err)
	}
	return list, nil
}

// PunchIn opens a punch. With a photo reader the request is multipart and
// the image travels as the "photo" file part named after req.Photo;
// without one, req.Photo is sent as a reference in a JSON body.
//
// The returned record is cached as the active punch. An empty or
// unreadable 2xx reply still counts as success; the record is then built
// from req and, having no id, is not cached.
func (c *Client) PunchIn(ctx context.Context, req punch.PunchIn, photo io.Reader) (punch.Record, error) {
	if err := punch.Validate(req); err != nil {
		return punch.Record{}, err
	}

	var (
		resp *gateway.Response
		err  error
	)
	if photo != nil {
		resp, err = c.punchInMultipart(ctx, req, photo)
	} else {
		resp, err = c.gw.JSON(ctx, http.MethodPost, PathPunchIn, nil, req, nil)
	}
	if err != nil {
		return punch.Record{}, wrap("punch in", err)
	}

	var rec punch.Record
	if body := bytes.TrimSpace(resp.Body); len(body) > 0 {
		if err := json.Unmarshal(body, &rec); err != nil {
			c.log.Warn("punch-in reply not a punch record", zap.Error(err))
			rec = punch.Record{}
		}
	} else {
		c.log.Warn("punch-in reply is empty", zap.Int("status", resp.Status))
	}

	// A fresh punch-in is open by definition, whatever the reply omits.
	if rec.Status == "" {
		rec.Status = punch.StatusPending
	}
	if rec.CustomerName == "" {
		rec.CustomerName = req.CustomerName
	}
	if rec.PunchInTime == "" {
		rec.PunchInTime = req.Time
	}
	if rec.PunchInLocation == "" {
		rec.PunchInLocation = req.Location
	}
	if rec.Username == "" {
		if user, ok, err := c.sess.User(ctx); err == nil && ok {
			rec.Username = user.ID
		}
	}

	// Without an id the punch cannot be closed from the cache; leave it to
	// the next reconciliation to find it on the server.
	if rec.ID == "" {
		c.log.Warn("punch-in reply carried no id, not caching")
	} else if err := c.sess.CachePunch(ctx, rec); err != nil {
		return punch.Record{}, wrap("punch in", err)
	}

	c.log.Info("punched in", zap.String("punch_id", rec.ID), zap.String("customer", rec.CustomerName))
	return rec, nil
}

func (c *Client) punchInMultipart(ctx context.Context, req punch.PunchIn, photo io.Reader) (*gateway.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"punchInLocation", req.Location},
		{"punchInTime", req.Time},
		{"customerName", req.CustomerName},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write %s: %w", f[0], err)
		}
	}

	part, err := mw.CreateFormFile("photo", filepath.Base(req.Photo))
	if err != nil {
		return nil, fmt.Errorf("create photo part: %w", err)
	}
	if _, err := io.Copy(part, photo); err != nil {
		return nil, fmt.Errorf("copy photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	return c.gw.Do(ctx, gateway.Request{
		Method:      http.MethodPost,
		Path:        PathPunchIn,
		Body:        &buf,
		ContentType: mw.FormDataContentType(),
	})
}

// PunchOut closes the punch req.ID. The date defaults to the date part of
// req.Time. Without an ID the call fails locally.
//
// On success the cached punch is cleared.
func (c *Client) PunchOut(ctx context.Context, req punch.PunchOut) (punch.Record, error) {
	if req.Date == "" {
		req.Date = punch.DatePart(req.Time)
	}
	if err := punch.Validate(req); err != nil {
		return punch.Record{}, err
	}

	resp, err := c.gw.JSON(ctx, http.MethodPost, PathPunchOut, nil, req, nil)
	if err != nil {
		return punch.Record{}, wrap("punch out", err)
	}

	if err := c.sess.ClearCachedPunch(ctx); err != nil {
		return punch.Record{}, wrap("punch out", err)
	}

	rec := punch.Record{ID: req.ID}
	if err := json.Unmarshal(resp.Body, &rec); err != nil {
		c.log.Warn("punch-out reply not a punch record", zap.Error(err))
		rec = punch.Record{ID: req.ID}
	}
	if rec.ID == "" {
		rec.ID = req.ID
	}
	if rec.Status == "" || rec.IsPending() {
		rec.Status = punch.StatusCompleted
	}
	if rec.PunchOutTime == "" {
		rec.PunchOutTime = req.Time
	}
	if rec.PunchOutLocation == "" {
		rec.PunchOutLocation = req.Location
	}
	if rec.PunchOutDate == "" {
		rec.PunchOutDate = req.Date
	}

	c.log.Info("punched out", zap.String("punch_id", rec.ID))
	return rec, nil
}
