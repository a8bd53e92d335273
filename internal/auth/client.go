// Package auth implements the console's client for the backend auth surface.
package auth

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/atlas-erp/atlas-console/internal/platform/rest"
	"github.com/atlas-erp/atlas-console/internal/session"
)

// ErrMalformedResponse indicates the backend answered without a user object.
var ErrMalformedResponse = errors.New("auth: malformed response")

// Client talks to the three auth endpoints and implements session.API.
type Client struct {
	rest     *rest.Client
	validate *validator.Validate
}

// NewClient constructs a Client over the shared transport.
func NewClient(rc *rest.Client) *Client {
	return &Client{rest: rc, validate: validator.New()}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Access      string             `json:"access"`
	Refresh     string             `json:"refresh"`
	User        *session.Principal `json:"user"`
	Permissions []string           `json:"permissions"`
}

type meResponse struct {
	User        *session.Principal `json:"user"`
	Permissions []string           `json:"permissions"`
}

// Login exchanges credentials for a token pair plus the initial session
// payload. Failures are returned as a LoginError with a displayable message.
func (c *Client) Login(ctx context.Context, username, password string) (session.LoginResult, error) {
	form := loginRequest{Username: username, Password: password}
	if err := c.validate.Struct(form); err != nil {
		return session.LoginResult{}, &session.LoginError{Message: "Username and password are required"}
	}

	var res loginResponse
	if err := c.rest.Post(ctx, "/api/auth/login/", form, &res); err != nil {
		var apiErr *rest.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = "Login failed"
			}
			return session.LoginResult{}, &session.LoginError{Message: msg}
		}
		return session.LoginResult{}, err
	}
	if res.User == nil {
		return session.LoginResult{}, ErrMalformedResponse
	}
	return session.LoginResult{
		Credentials: session.Credentials{AccessToken: res.Access, RefreshToken: res.Refresh},
		Principal:   res.User,
		Permissions: session.NewPermissionSet(res.Permissions...),
	}, nil
}

// Logout invalidates the refresh token remotely.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh": refreshToken}
	return c.rest.Post(ctx, "/api/auth/logout/", body, nil)
}

// CurrentUser fetches the principal and their authoritative permission set.
func (c *Client) CurrentUser(ctx context.Context) (*session.Principal, session.PermissionSet, error) {
	var res meResponse
	if err := c.rest.Get(ctx, "/api/auth/me/", &res); err != nil {
		return nil, nil, err
	}
	if res.User == nil {
		return nil, nil, ErrMalformedResponse
	}
	return res.User, session.NewPermissionSet(res.Permissions...), nil
}
