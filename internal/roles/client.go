// Package roles is the API client for role records.
package roles

import (
	"context"
	"fmt"

	"github.com/atlas-erp/atlas-console/internal/platform/rest"
)

// Role represents a permission grouping.
type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions,omitempty"`
}

// UpsertRequest carries the writable role fields.
type UpsertRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Client performs role CRUD against the backend.
type Client struct {
	rest *rest.Client
}

// NewClient constructs a Client over the shared transport.
func NewClient(rc *rest.Client) *Client {
	return &Client{rest: rc}
}

// List returns all roles.
func (c *Client) List(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := c.rest.Get(ctx, "/api/roles/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create registers a new role.
func (c *Client) Create(ctx context.Context, req UpsertRequest) (Role, error) {
	var out Role
	if err := c.rest.Post(ctx, "/api/roles/", req, &out); err != nil {
		return Role{}, err
	}
	return out, nil
}

// Update replaces a role's writable fields.
func (c *Client) Update(ctx context.Context, id int64, req UpsertRequest) (Role, error) {
	var out Role
	if err := c.rest.Put(ctx, fmt.Sprintf("/api/roles/%d/", id), req, &out); err != nil {
		return Role{}, err
	}
	return out, nil
}

// Delete removes a role.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.rest.Delete(ctx, fmt.Sprintf("/api/roles/%d/", id), nil)
}

// AssignPermissions replaces the role's permission set wholesale.
func (c *Client) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	body := map[string][]int64{"permissions": permissionIDs}
	return c.rest.Post(ctx, fmt.Sprintf("/api/roles/%d/assign_permissions/", roleID), body, nil)
}
