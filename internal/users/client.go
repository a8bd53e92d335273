// Package users is the API client for managed user accounts.
package users

import (
	"context"
	"fmt"

	"github.com/atlas-erp/atlas-console/internal/platform/rest"
)

// Company is the tenant reference embedded in a user record.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User represents a managed account.
type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	IsActive    bool     `json:"is_active"`
	IsSuperuser bool     `json:"is_superuser"`
	Company     *Company `json:"company,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// CreateRequest carries the fields for a new account.
type CreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsActive bool   `json:"is_active"`
}

// UpdateRequest carries the writable fields of an existing account.
type UpdateRequest struct {
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Client performs user CRUD and relationship calls against the backend.
type Client struct {
	rest *rest.Client
}

// NewClient constructs a Client over the shared transport.
func NewClient(rc *rest.Client) *Client {
	return &Client{rest: rc}
}

// List returns all users.
func (c *Client) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.rest.Get(ctx, "/api/users/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create registers a new account.
func (c *Client) Create(ctx context.Context, req CreateRequest) (User, error) {
	var out User
	if err := c.rest.Post(ctx, "/api/users/", req, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// Update replaces an account's writable fields.
func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	var out User
	if err := c.rest.Put(ctx, fmt.Sprintf("/api/users/%d/", id), req, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// Delete removes an account.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.rest.Delete(ctx, fmt.Sprintf("/api/users/%d/", id), nil)
}

// AssignRole grants a role to a user.
func (c *Client) AssignRole(ctx context.Context, userID, roleID int64) error {
	body := map[string]int64{"role_id": roleID}
	return c.rest.Post(ctx, fmt.Sprintf("/api/users/%d/assign_role/", userID), body, nil)
}

// RemoveRole revokes a role from a user.
func (c *Client) RemoveRole(ctx context.Context, userID, roleID int64) error {
	body := map[string]int64{"role_id": roleID}
	return c.rest.Delete(ctx, fmt.Sprintf("/api/users/%d/remove_role/", userID), body)
}

// AssignCompany moves a user into a tenant.
func (c *Client) AssignCompany(ctx context.Context, userID, companyID int64) error {
	body := map[string]int64{"company_id": companyID}
	return c.rest.Post(ctx, fmt.Sprintf("/api/users/%d/assign_company/", userID), body, nil)
}
