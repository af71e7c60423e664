package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the raw login payload; the user object stays raw so the
// session layer can apply its own normalization rules.
type loginResponse struct {
	tokenPayload
	User json.RawMessage `json:"user"`
}

// LoginResult carries the outcome of a login call.
// Tokens is nil when the response was missing either token.
type LoginResult struct {
	Tokens *Tokens
	User   json.RawMessage
}

// Login authenticates with email and password. It does not mutate the
// client's credential state; the session manager decides what to adopt.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     "/auth/login",
		Body:     LoginRequest{Email: email, Password: password},
		SkipAuth: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Tokens: resp.Tokens(), User: resp.User}, nil
}

// Logout asks the backend to revoke a refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     "/auth/logout",
		Body:     map[string]string{"refreshToken": refreshToken},
		SkipAuth: true,
	}, nil)
}
