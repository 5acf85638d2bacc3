package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const apiPrefix = "/api/v1"

// File is one CSV to upload.
type File struct {
	Name string
	Data io.Reader
}

// Upload sends the intern and lead CSVs.  On success the returned session
// id is used by every later call on c.
func (c *Client) Upload(ctx context.Context, interns, leads File) (*IngestResult, error) {
	if interns.Data == nil || leads.Data == nil {
		return nil, fmt.Errorf("%w: both files are required", ErrInvalidConfig)
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range []struct {
		field string
		file  File
	}{{"interns", interns}, {"leads", leads}} {
		name := f.file.Name
		if name == "" {
			name = f.field + ".csv"
		}
		part, err := mw.CreateFormFile(f.field, name)
		if err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
		if _, err := io.Copy(part, f.file.Data); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        apiPrefix + "/datasets",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	var res IngestResult
	if err := decode(resp.body, &res); err != nil {
		return nil, err
	}
	id := res.SessionID
	if h := resp.header.Get(SessionHeader); h != "" {
		id = h
	}
	c.SetSessionID(id)
	return &res, nil
}

// Drop discards the current session on the server and forgets it locally.
func (c *Client) Drop(ctx context.Context) error {
	if _, err := c.do(ctx, request{method: http.MethodDelete, path: apiPrefix + "/datasets"}); err != nil {
		return err
	}
	c.SetSessionID("")
	return nil
}

// Hierarchy returns the filtered hierarchy table.
func (c *Client) Hierarchy(ctx context.Context, opts *ViewOptions) (*View, error) {
	var v View
	if err := c.getJSON(ctx, apiPrefix+"/hierarchy", opts.query(), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Chart returns the sunburst description of the filtered hierarchy.
func (c *Client) Chart(ctx context.Context, opts *ViewOptions) (*Chart, error) {
	var ch Chart
	if err := c.getJSON(ctx, apiPrefix+"/hierarchy/chart", opts.query(), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Regions lists the region filter options, "All States" first.
func (c *Client) Regions(ctx context.Context) ([]string, error) {
	var out struct {
		Regions []string `json:"regions"`
	}
	if err := c.getJSON(ctx, apiPrefix+"/regions", nil, &out); err != nil {
		return nil, err
	}
	return out.Regions, nil
}

// Top ranks entities above a threshold.
func (c *Client) Top(ctx context.Context, opts *TopOptions) (*TopResult, error) {
	q := url.Values{}
	if opts != nil {
		setRegion(q, opts.Region)
		setMin(q, opts.Min)
	}
	var res TopResult
	if err := c.getJSON(ctx, apiPrefix+"/top", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Stats returns region, level and optional institution statistics.
func (c *Client) Stats(ctx context.Context, opts *StatsOptions) (*Stats, error) {
	q := url.Values{}
	if opts != nil {
		setRegion(q, opts.Region)
		if opts.Institution != "" {
			q.Set("institution", opts.Institution)
		}
	}
	var res Stats
	if err := c.getJSON(ctx, apiPrefix+"/stats", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ExportHierarchy downloads the filtered hierarchy as CSV.
func (c *Client) ExportHierarchy(ctx context.Context, opts *ExportOptions) (*Export, error) {
	return c.export(ctx, apiPrefix+"/hierarchy/export", opts)
}

// ExportTop downloads the ranking as CSV.
func (c *Client) ExportTop(ctx context.Context, opts *ExportOptions) (*Export, error) {
	return c.export(ctx, apiPrefix+"/top/export", opts)
}

func (c *Client) export(ctx context.Context, path string, opts *ExportOptions) (*Export, error) {
	q := url.Values{}
	store := false
	if opts != nil {
		setRegion(q, opts.Region)
		setMin(q, opts.Min)
		if opts.Store {
			store = true
			q.Set("store", "true")
		}
	}
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, query: q})
	if err != nil {
		return nil, err
	}
	if store {
		var e Export
		if err := decode(resp.body, &e); err != nil {
			return nil, err
		}
		return &e, nil
	}
	e := &Export{
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil {
		e.Filename = params["filename"]
	}
	if n := bytes.Count(resp.body, []byte{'\n'}); n > 0 {
		e.Rows = n - 1
	}
	return e, nil
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/healthz", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Ready calls the readiness probe.  A not-ready server is reported in the
// result, not as an error.
func (c *Client) Ready(ctx context.Context) (*Readiness, error) {
	var r Readiness
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/readyz"})
	if err != nil {
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.StatusCode != http.StatusServiceUnavailable {
			return nil, err
		}
		r.Status = "not_ready"
		r.CheckedAt = time.Now()
		return &r, nil
	}
	if err := json.Unmarshal(resp.body, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	r.CheckedAt = time.Now()
	return &r, nil
}

func (o *ViewOptions) query() url.Values {
	q := url.Values{}
	if o == nil {
		return q
	}
	setRegion(q, o.Region)
	setMin(q, o.Min)
	if o.Focus != "" {
		q.Set("focus", o.Focus)
	}
	if o.Highlight != "" {
		q.Set("highlight", o.Highlight)
	}
	return q
}

func setRegion(q url.Values, region string) {
	if region != "" {
		q.Set("region", region)
	}
}

func setMin(q url.Values, min *float64) {
	if min != nil {
		q.Set("min", strconv.FormatFloat(*min, 'f', -1, 64))
	}
}

// Float returns a pointer to v, for the Min fields.
func Float(v float64) *float64 { return &v }

//Personal.AI order the ending
