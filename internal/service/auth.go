// Package service provides the business logic behind the web front-end:
// signing in against the auth API and managing practice sessions through
// the session API.
package service

import (
	"context"
	"errors"

	"github.com/atinyakov/practicelog/internal/models"
)

// ErrInvalidCredentials is returned when username or password is missing.
var ErrInvalidCredentials = errors.New("username and password are required")

// AuthAPI defines the remote operations required by the authentication service.
type AuthAPI interface {
	// Login returns a bearer token for the given credentials.
	Login(ctx context.Context, username, password string) (string, error)
	// Register creates a new account.
	Register(ctx context.Context, username, password string) error
}

// AuthService validates credentials and delegates to an AuthAPI.
type AuthService struct {
	api AuthAPI
}

// NewAuthService constructs an AuthService using the provided API.
func NewAuthService(api AuthAPI) *AuthService {
	return &AuthService{api: api}
}

// Login returns a bearer token for the user.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	creds, err := credentials(username, password)
	if err != nil {
		return "", err
	}
	return s.api.Login(ctx, creds.Username, creds.Password)
}

// Register creates an account for the user.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	creds, err := credentials(username, password)
	if err != nil {
		return err
	}
	return s.api.Register(ctx, creds.Username, creds.Password)
}

func credentials(username, password string) (models.Credentials, error) {
	creds := models.Credentials{Username: username, Password: password}
	if err := validatorInstance().Struct(creds); err != nil {
		return creds, ErrInvalidCredentials
	}
	return creds, nil
}
