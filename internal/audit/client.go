// Package audit is the API client for the backend audit trail.
package audit

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/atlas-erp/atlas-console/internal/platform/rest"
)

// Entry is one recorded mutation.
type Entry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Filters narrows an audit listing. Zero values mean "no filter".
type Filters struct {
	Action string
	Actor  string
	Page   int
}

// Client reads audit entries from the backend.
type Client struct {
	rest *rest.Client
}

// NewClient constructs a Client over the shared transport.
func NewClient(rc *rest.Client) *Client {
	return &Client{rest: rc}
}

// List returns audit entries matching the filters, newest first.
func (c *Client) List(ctx context.Context, f Filters) ([]Entry, error) {
	q := url.Values{}
	if f.Action != "" {
		q.Set("action", f.Action)
	}
	if f.Actor != "" {
		q.Set("actor", f.Actor)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	path := "/api/audit-logs/"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out []Entry
	if err := c.rest.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
