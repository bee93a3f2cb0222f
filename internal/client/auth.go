package client

import (
	"context"
	"fmt"
	"time"

	"github.com/angelarchive/archive-server/internal/domain"
)

// AuthResponse is the server's login/signup payload.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// credentials is the login/signup request body.
type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Signup registers a new account and logs the client in.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	resp, err := c.request().
		SetContext(ctx).
		SetBody(credentials{Username: username, Email: email, Password: password}).
		Post("/api/v1/auth/signup")
	if err != nil {
		return nil, fmt.Errorf("signup request: %w", err)
	}

	auth, err := decode[*AuthResponse](resp)
	if err != nil {
		return nil, err
	}

	c.SetToken(auth.AccessToken)
	return auth, nil
}

// Login authenticates and stores the access token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	resp, err := c.request().
		SetContext(ctx).
		SetBody(credentials{Username: username, Password: password}).
		Post("/api/v1/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}

	auth, err := decode[*AuthResponse](resp)
	if err != nil {
		return nil, err
	}

	c.SetToken(auth.AccessToken)
	return auth, nil
}

// Logout revokes the current session and clears the stored token.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.request().
		SetContext(ctx).
		Post("/api/v1/auth/logout")
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	if err := mapHTTPError(resp); err != nil {
		return err
	}

	c.SetToken("")
	return nil
}

// Me returns the authenticated user's account.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	resp, err := c.request().
		SetContext(ctx).
		Get("/api/v1/auth/me")
	if err != nil {
		return nil, fmt.Errorf("me request: %w", err)
	}
	return decode[*domain.User](resp)
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, profilePic string) (*domain.User, error) {
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]string{"profile_pic": profilePic}).
		Put("/api/v1/users/me")
	if err != nil {
		return nil, fmt.Errorf("update profile request: %w", err)
	}
	return decode[*domain.User](resp)
}

// UsernameAvailable reports whether a username is free to register.
func (c *Client) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	resp, err := c.request().
		SetContext(ctx).
		SetQueryParam("username", username).
		Get("/api/v1/auth/check-username")
	if err != nil {
		return false, fmt.Errorf("check username request: %w", err)
	}

	data, err := decode[map[string]bool](resp)
	if err != nil {
		return false, err
	}
	return data["available"], nil
}

// EmailAvailable reports whether an email is free to register.
func (c *Client) EmailAvailable(ctx context.Context, email string) (bool, error) {
	resp, err := c.request().
		SetContext(ctx).
		SetQueryParam("email", email).
		Get("/api/v1/auth/check-email")
	if err != nil {
		return false, fmt.Errorf("check email request: %w", err)
	}

	data, err := decode[map[string]bool](resp)
	if err != nil {
		return false, err
	}
	return data["available"], nil
}
