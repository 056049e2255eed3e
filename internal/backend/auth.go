package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/models"
)

// LoginResult carries the credential and profile returned on login. Backends
// have shipped the token under several field names; Token() resolves them.
type LoginResult struct {
	Token       string       `json:"token"`
	AccessToken string       `json:"accessToken"`
	AccessSnake string       `json:"access_token"`
	User        *models.User `json:"user"`
	raw         json.RawMessage
}

// Credential returns the first populated token field.
func (r LoginResult) Credential() string {
	switch {
	case r.Token != "":
		return r.Token
	case r.AccessToken != "":
		return r.AccessToken
	default:
		return r.AccessSnake
	}
}

// Profile returns the embedded user when present, falling back to decoding
// the whole response as a profile (some backend versions return it flat).
func (r LoginResult) Profile() models.User {
	if r.User != nil {
		return *r.User
	}
	var user models.User
	_ = json.Unmarshal(r.raw, &user)
	return user
}

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	payload, err := json.Marshal(body)
	if err != nil {
		return LoginResult{}, fmt.Errorf("backend: encode login: %w", err)
	}

	raw, err := c.do(ctx, "POST", "/api/auth/login", "", bytes.NewReader(payload), "application/json")
	if err != nil {
		return LoginResult{}, err
	}

	var result LoginResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return LoginResult{}, fmt.Errorf("backend: decode login: %w", err)
	}
	result.raw = raw
	return result, nil
}

// Register creates a new account. The backend returns a confirmation body we
// pass through untouched.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.postJSON(ctx, "/api/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Me fetches the profile bound to token.
func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/api/auth/me", token, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
