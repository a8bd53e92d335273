// Package permissions is the API client for the capability catalog.
package permissions

import (
	"context"

	"github.com/atlas-erp/atlas-console/internal/platform/rest"
)

// Permission represents an atomic capability.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Client reads the permission catalog from the backend.
type Client struct {
	rest *rest.Client
}

// NewClient constructs a Client over the shared transport.
func NewClient(rc *rest.Client) *Client {
	return &Client{rest: rc}
}

// List returns the full catalog.
func (c *Client) List(ctx context.Context) ([]Permission, error) {
	var out []Permission
	if err := c.rest.Get(ctx, "/api/permissions/", &out); err != nil {
		return nil, err
	}
	return out, nil
}
