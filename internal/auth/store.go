// Package auth keeps the bearer token in an encrypted cookie session and
// reads display identity out of that token.
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "__session"

	// SignedOutMessage is flashed to the login page after logout.
	SignedOutMessage = "You've been signed out."

	tokenKey   = "token"
	messageKey = "message"

	hashKeyLen  = 64
	blockKeyLen = 32
)

// ErrNoSecret is returned when a store is built without any secret.
var ErrNoSecret = errors.New("auth: at least one session secret is required")

// StoreOptions configures the cookie session.
type StoreOptions struct {
	// Secrets derive the signing and encryption keys. The first one is used
	// to write cookies, the rest are still accepted when reading them.
	Secrets []string
	// Secure marks the cookie HTTPS-only.
	Secure bool
	// MaxAge is the cookie lifetime in seconds; 0 makes it a browser-session cookie.
	MaxAge int
}

// Store reads and writes the "__session" cookie.
type Store struct {
	cookies *sessions.CookieStore
}

// NewStore derives cookie keys from the configured secrets and returns a Store.
func NewStore(opts StoreOptions) (*Store, error) {
	if len(opts.Secrets) == 0 {
		return nil, ErrNoSecret
	}

	keyPairs := make([][]byte, 0, 2*len(opts.Secrets))
	for _, secret := range opts.Secrets {
		if secret == "" {
			return nil, ErrNoSecret
		}
		hashKey, blockKey, err := deriveKeys(secret)
		if err != nil {
			return nil, err
		}
		keyPairs = append(keyPairs, hashKey, blockKey)
	}

	cs := sessions.NewCookieStore(keyPairs...)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	cs.MaxAge(opts.MaxAge)

	return &Store{cookies: cs}, nil
}

// deriveKeys expands a secret into an HMAC key and an AES-256 key.
func deriveKeys(secret string) ([]byte, []byte, error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(CookieName))
	hashKey := make([]byte, hashKeyLen)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, fmt.Errorf("derive hash key: %w", err)
	}
	blockKey := make([]byte, blockKeyLen)
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, fmt.Errorf("derive block key: %w", err)
	}
	return hashKey, blockKey, nil
}

// Session returns the request's cookie session. A missing, expired or
// tampered cookie yields a fresh empty session.
func (s *Store) Session(r *http.Request) *sessions.Session {
	sess, err := s.cookies.Get(r, CookieName)
	if sess == nil {
		sess = sessions.NewSession(s.cookies, CookieName)
		opts := *s.cookies.Options
		sess.Options = &opts
		sess.IsNew = true
	}
	if err != nil {
		sess.Values = make(map[interface{}]interface{})
	}
	return sess
}

// GetToken returns the bearer token carried by the request's session cookie.
func (s *Store) GetToken(r *http.Request) (string, bool) {
	return Token(s.Session(r))
}

// Commit writes sess back to the response as a Set-Cookie header.
func (s *Store) Commit(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	if err := s.cookies.Save(r, w, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Token returns the token stored in sess, if it is a non-empty string.
func Token(sess *sessions.Session) (string, bool) {
	token, ok := sess.Values[tokenKey].(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// SetToken stores token in sess.
func SetToken(sess *sessions.Session, token string) {
	sess.Values[tokenKey] = token
}

// ClearToken removes the token from sess and flashes SignedOutMessage for
// the next page load. The caller commits the session and redirects.
func ClearToken(sess *sessions.Session) {
	delete(sess.Values, tokenKey)
	Flash(sess, SignedOutMessage)
}

// Flash stages a one-time message for the next page load.
// A later flash replaces an unread one.
func Flash(sess *sessions.Session, message string) {
	sess.Values[messageKey] = message
}

// TakeMessage returns the flashed message and removes it from sess.
// The session must be committed for the removal to stick.
func TakeMessage(sess *sessions.Session) string {
	message, _ := sess.Values[messageKey].(string)
	delete(sess.Values, messageKey)
	return message
}
