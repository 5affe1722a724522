// Package models defines the core data structures for practice sessions and users.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Identity is the user identity read from a bearer token for display purposes.
type Identity struct {
	// ID is the subject identifier of the user.
	ID string
	// Username is the login name of the user.
	Username string
}

// Credentials is the username/password pair sent to the auth endpoints.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionID identifies a practice session on the remote API.
// The API may emit it either as a JSON string or as a JSON number;
// it is always encoded back as a string.
type SessionID string

// UnmarshalJSON accepts both "12" and 12.
func (id *SessionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SessionID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	*id = SessionID(n.String())
	return nil
}

// SessionDraft holds the user-editable fields of a practice session.
// It is the payload sent when creating a session, before the API assigns an id.
type SessionDraft struct {
	// Activity is what was practiced ("Guitar", "Piano", ...).
	Activity string `json:"activity" validate:"required"`
	// Date is the practice day in YYYY-MM-DD form.
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	// Notes is free text.
	Notes string `json:"notes"`
	// Minutes is the practice duration. The API may report fractions.
	Minutes float64 `json:"minutes" validate:"gte=0"`
}

// PracticeSession is a stored practice session record.
type PracticeSession struct {
	ID SessionID `json:"id"`
	SessionDraft
}

// SessionList is the body of the session collection endpoint.
type SessionList struct {
	Sessions []PracticeSession `json:"sessions"`
}

// Intent selects what a submitted session form does.
type Intent string

const (
	// IntentCreate adds a new session. It is the default when no intent is given.
	IntentCreate Intent = "create"
	// IntentUpdate replaces an existing session.
	IntentUpdate Intent = "update"
	// IntentDelete removes an existing session.
	IntentDelete Intent = "delete"
)
