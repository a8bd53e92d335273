// Package companies is the API client for tenant records.
package companies

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas-erp/atlas-console/internal/platform/rest"
)

// Company represents a tenant.
type Company struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpsertRequest carries the writable company fields.
type UpsertRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Client performs company CRUD against the backend.
type Client struct {
	rest *rest.Client
}

// NewClient constructs a Client over the shared transport.
func NewClient(rc *rest.Client) *Client {
	return &Client{rest: rc}
}

// List returns all companies.
func (c *Client) List(ctx context.Context) ([]Company, error) {
	var out []Company
	if err := c.rest.Get(ctx, "/api/companies/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create registers a new company.
func (c *Client) Create(ctx context.Context, req UpsertRequest) (Company, error) {
	var out Company
	if err := c.rest.Post(ctx, "/api/companies/", req, &out); err != nil {
		return Company{}, err
	}
	return out, nil
}

// Update replaces a company's writable fields.
func (c *Client) Update(ctx context.Context, id int64, req UpsertRequest) (Company, error) {
	var out Company
	if err := c.rest.Put(ctx, fmt.Sprintf("/api/companies/%d/", id), req, &out); err != nil {
		return Company{}, err
	}
	return out, nil
}

// Delete removes a company.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.rest.Delete(ctx, fmt.Sprintf("/api/companies/%d/", id), nil)
}
