package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/atinyakov/practicelog/internal/models"
)

const sessionsPath = "/sessions"

func sessionPath(id models.SessionID) string {
	return sessionsPath + "/" + url.PathEscape(string(id))
}

// ListAll returns every session visible to token.
// A 401 fails with KindUnauthorized; any other non-2xx with KindFetchFailed.
func (c *Client) ListAll(ctx context.Context, token string) (*models.SessionList, error) {
	resp, err := c.do(ctx, http.MethodGet, sessionsPath, token, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if !ok(resp) {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: "Unauthorized"}
		}
		return nil, &Error{Kind: KindFetchFailed, StatusCode: resp.StatusCode, Message: "Failed to fetch sessions"}
	}

	var list models.SessionList
	if err := decode(resp, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Create posts draft and returns the stored session with its assigned id.
func (c *Client) Create(ctx context.Context, draft models.SessionDraft, token string) (*models.PracticeSession, error) {
	resp, err := c.do(ctx, http.MethodPost, sessionsPath, token, draft)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if !ok(resp) {
		return nil, requestFailed(resp)
	}

	var created models.PracticeSession
	if err := decode(resp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces the session identified by s.ID with s.
func (c *Client) Update(ctx context.Context, s models.PracticeSession, token string) error {
	resp, err := c.do(ctx, http.MethodPut, sessionPath(s.ID), token, s)
	if err != nil {
		return err
	}
	defer drain(resp)

	if !ok(resp) {
		return requestFailed(resp)
	}
	return nil
}

// Delete removes the session with the given id.
func (c *Client) Delete(ctx context.Context, id models.SessionID, token string) error {
	resp, err := c.do(ctx, http.MethodDelete, sessionPath(id), token, nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if !ok(resp) {
		return requestFailed(resp)
	}
	return nil
}
