// Package http provides the HTML handlers of the practice log front-end:
// sign in, registration, sign out and the session list.
package http

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/practicelog/internal/auth"
	"github.com/atinyakov/practicelog/internal/client/api"
	"github.com/atinyakov/practicelog/internal/service"
)

const (
	msgCredentialsRequired = "Username and password are required."
	msgLoginFailed         = "Login failed."
	msgRegisterFailed      = "Registration failed."
	msgAccountCreated      = "Account created. Please sign in."
)

// AuthService defines the authentication operations required by the HTTP handlers.
type AuthService interface {
	// Login returns a bearer token for the credentials.
	Login(ctx context.Context, username, password string) (string, error)
	// Register creates a new account.
	Register(ctx context.Context, username, password string) error
}

// AuthHandler handles sign in, registration and sign out.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Store       *auth.Store
	Views       *Renderer
	Logger      *zap.Logger
}

type authPage struct {
	Title    string
	Message  string
	Error    string
	Username string
}

// LoginPage renders the sign-in form, or redirects home when a token is
// already stored. A pending flash message is shown once and consumed.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, pageLogin, "Sign In")
}

// RegisterPage renders the registration form.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, pageRegister, "Register")
}

func (h *AuthHandler) showForm(w http.ResponseWriter, r *http.Request, page, title string) {
	sess := h.Store.Session(r)
	if _, ok := auth.Token(sess); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	data := authPage{Title: title, Message: auth.TakeMessage(sess)}
	if err := h.Store.Commit(r, w, sess); err != nil {
		h.Logger.Error("commit session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, page, data)
}

// Login exchanges the submitted credentials for a token, stores it in the
// session and redirects home.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentialsFromForm(r)
	data := authPage{Title: "Sign In", Username: username}
	if !ok {
		data.Error = msgCredentialsRequired
		h.render(w, http.StatusBadRequest, pageLogin, data)
		return
	}

	token, err := h.AuthService.Login(r.Context(), username, password)
	if err != nil {
		status := failureStatus(err)
		if status == http.StatusBadRequest {
			data.Error = msgCredentialsRequired
		} else {
			data.Error = msgLoginFailed
		}
		h.Logger.Warn("login failed", zap.String("username", username), zap.Error(err))
		h.render(w, status, pageLogin, data)
		return
	}

	sess := h.Store.Session(r)
	auth.SetToken(sess, token)
	if err := h.Store.Commit(r, w, sess); err != nil {
		h.Logger.Error("commit session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Register creates an account and sends the user to the sign-in form with
// a confirmation message.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentialsFromForm(r)
	data := authPage{Title: "Register", Username: username}
	if !ok {
		data.Error = msgCredentialsRequired
		h.render(w, http.StatusBadRequest, pageRegister, data)
		return
	}

	if err := h.AuthService.Register(r.Context(), username, password); err != nil {
		status := failureStatus(err)
		if status == http.StatusBadRequest {
			data.Error = msgCredentialsRequired
		} else {
			data.Error = msgRegisterFailed
		}
		h.Logger.Warn("registration failed", zap.String("username", username), zap.Error(err))
		h.render(w, status, pageRegister, data)
		return
	}

	sess := h.Store.Session(r)
	auth.Flash(sess, msgAccountCreated)
	if err := h.Store.Commit(r, w, sess); err != nil {
		h.Logger.Error("commit session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Logout drops the token, flashes a sign-out message and redirects to the
// sign-in form.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := h.Store.Session(r)
	auth.ClearToken(sess)
	if err := h.Store.Commit(r, w, sess); err != nil {
		h.Logger.Error("commit session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) render(w http.ResponseWriter, status int, page string, data authPage) {
	if err := h.Views.Render(w, status, page, data); err != nil {
		h.Logger.Error("render page", zap.String("page", page), zap.Error(err))
	}
}

// credentialsFromForm reports ok=false when either field is missing from
// the submitted form.
func credentialsFromForm(r *http.Request) (username, password string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	if _, has := r.PostForm["username"]; !has {
		return "", "", false
	}
	if _, has := r.PostForm["password"]; !has {
		return r.PostForm.Get("username"), "", false
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), true
}

// failureStatus maps an auth failure to the status of the re-rendered form:
// the API's own status when it answered, 400 for missing credentials and
// 500 otherwise.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest
	case api.StatusCode(err) != 0:
		return api.StatusCode(err)
	default:
		return http.StatusInternalServerError
	}
}
