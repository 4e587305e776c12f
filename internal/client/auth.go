package client

import (
	"context"
	"fmt"
	"net/http"

	"biblioaccess/internal/api"
	"biblioaccess/internal/session"
	"biblioaccess/internal/users"
)

// Login authenticates against the server, stores the issued token, and caches
// the signed-in identity in the session store.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Profile, error) {
	var resp api.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", api.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if c.session != nil {
		if err := c.session.SetToken(resp.Token); err != nil {
			return nil, fmt.Errorf("store token: %w", err)
		}
	}

	me, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	profile := &session.Profile{
		UserID: me.ID,
		Name:   me.Name,
		Email:  me.Email,
		Role:   users.Role(me.Role),
	}
	if c.session != nil {
		if err := c.session.SaveProfile(profile); err != nil {
			return nil, fmt.Errorf("store profile: %w", err)
		}
	}
	return profile, nil
}

// Logout wipes the local session. The server-side token simply expires.
func (c *Client) Logout() error {
	if c.session == nil {
		return nil
	}
	return c.session.Teardown()
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	var user api.User
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Users lists all accounts. Requires librarian access.
func (c *Client) Users(ctx context.Context) ([]api.User, error) {
	var accounts []api.User
	if err := c.do(ctx, http.MethodGet, "/User", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// User fetches a single account by id.
func (c *Client) User(ctx context.Context, id int64) (*api.User, error) {
	var user api.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/User/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
