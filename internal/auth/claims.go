package auth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atinyakov/practicelog/internal/models"
)

// Claim URIs emitted by WS-Federation style identity providers.
const (
	ClaimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	ClaimName           = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
)

// Claims is the decoded, unverified payload of a bearer token.
type Claims = jwt.MapClaims

// Candidate keys per identity field, in lookup order.
var (
	subjectKeys  = []string{ClaimNameIdentifier, "nameid"}
	usernameKeys = []string{ClaimName, "unique_name"}
)

// DecodePayload returns the payload segment of a compact JWT as a claims map.
//
// The signature is NOT checked. The result is only a convenience for showing
// who is signed in and must never be used to make an authorization decision.
// Malformed tokens (too few segments, bad base64, payload that is not a JSON
// object) yield nil.
func DecodePayload(token string) Claims {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil
	}

	payload := strings.NewReplacer("-", "+", "_", "/").Replace(parts[1])
	if rem := len(payload) % 4; rem != 0 {
		payload += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var claims Claims
	if err := dec.Decode(&claims); err != nil || claims == nil {
		return nil
	}
	// Anything after the object makes the payload invalid JSON.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil
	}
	return claims
}

// ExtractIdentity reads the subject id and username from an unverified token.
// Both must be present; a partial identity is reported as absent.
func ExtractIdentity(token string) (models.Identity, bool) {
	claims := DecodePayload(token)
	if claims == nil {
		return models.Identity{}, false
	}

	id, ok := lookup(claims, subjectKeys, subjectString)
	if !ok {
		return models.Identity{}, false
	}
	username, ok := lookup(claims, usernameKeys, plainString)
	if !ok {
		return models.Identity{}, false
	}

	return models.Identity{ID: id, Username: username}, true
}

// lookup resolves the first key whose value is present and accepted by
// conv. An empty resolved value is a miss; later keys are not consulted.
func lookup(claims Claims, keys []string, conv func(any) (string, bool)) (string, bool) {
	for _, key := range keys {
		v, ok := claims[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := conv(v); ok {
			return s, s != ""
		}
	}
	return "", false
}

func plainString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// subjectString accepts strings and numbers.
func subjectString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}
