package atsclient

import (
	"context"
	"net/url"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
)

// Me performs the session check. A 401 means the jar holds no valid backend session.
func (c *Client) Me(ctx context.Context) (domainauth.Identity, error) {
	var id domainauth.Identity
	err := c.Get(ctx, "/api/auth/me", &id, WithEndpoint("auth.me"))
	return id, err
}

// Login authenticates and returns the principal. Wrong credentials come back as 401.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (domainauth.Identity, error) {
	var id domainauth.Identity
	err := c.Post(ctx, "/api/auth/login", creds, &id, WithEndpoint("auth.login"))
	return id, err
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "/api/auth/logout", nil, nil, WithEndpoint("auth.logout"))
}

// Signup registers a user and returns the new user id.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (int64, error) {
	var id int64
	err := c.Post(ctx, "/api/auth/signup", req, &id, WithEndpoint("auth.signup"))
	return id, err
}

// EmailExists reports whether an account already uses email.
func (c *Client) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := c.Get(ctx, "/api/auth/exists", &exists,
		WithQuery(url.Values{"email": {email}}),
		WithEndpoint("auth.exists"))
	return exists, err
}

// ResetPassword sets a new password for the identified user and returns the backend's
// confirmation message.
func (c *Client) ResetPassword(ctx context.Context, req model.PasswordResetRequest) (string, error) {
	var resp model.PasswordResetResponse
	err := c.Post(ctx, "/api/auth/reset-password", req, &resp, WithEndpoint("auth.reset_password"))
	return resp.Message, err
}
