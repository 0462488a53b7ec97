package httpapi

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
)

func (c *Client) Login(ctx context.Context, creds user.Credentials) (user.AuthResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/login", creds)
	if err != nil {
		return user.AuthResult{}, errors.Wrap(err, "logging in")
	}
	return authResult(object(body)), nil
}

func (c *Client) Register(ctx context.Context, nu user.NewUser) (user.AuthResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/register", nu)
	if err != nil {
		return user.AuthResult{}, errors.Wrap(err, "registering")
	}
	return authResult(object(body)), nil
}

// Me fetches the profile bound to token.
func (c *Client) Me(ctx context.Context, token string) (user.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/auth/me", nil, token)
	if err != nil {
		return user.User{}, errors.Wrap(err, "fetching profile")
	}
	raw := object(body)
	if inner, ok := raw["user"].(map[string]interface{}); ok {
		raw = inner
	}
	return normalizeUser(raw), nil
}

func authResult(raw record.Raw) user.AuthResult {
	res := user.AuthResult{Token: raw.Str("", "token", "accessToken")}
	if obj, ok := raw["user"].(map[string]interface{}); ok {
		usr := normalizeUser(obj)
		res.User = &usr
	}
	return res
}

func normalizeUser(raw record.Raw) user.User {
	return user.User{
		ID:    raw.Str("", "id"),
		Name:  raw.Str("", "name"),
		Email: raw.Str("", "email"),
		Role:  raw.Str("", "role"),
	}
}
