package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/practicelog/internal/models"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, loginPath, "", models.Credentials{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if !ok(resp) {
		return "", requestFailed(resp)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := decode(resp, &body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", ErrNoToken
	}
	return body.Token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, registerPath, "", models.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	defer drain(resp)

	if !ok(resp) {
		return requestFailed(resp)
	}
	return nil
}
