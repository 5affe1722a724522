package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/atinyakov/practicelog/internal/models"
)

// ErrInvalidSession is returned when a submitted session form does not
// describe a valid action.
var ErrInvalidSession = errors.New("invalid session")

// SessionAPI defines the remote operations needed by the PracticeService.
type SessionAPI interface {
	// ListAll returns every session visible to token.
	ListAll(ctx context.Context, token string) (*models.SessionList, error)
	// Create stores draft and returns it with its assigned id.
	Create(ctx context.Context, draft models.SessionDraft, token string) (*models.PracticeSession, error)
	// Update replaces the session identified by s.ID.
	Update(ctx context.Context, s models.PracticeSession, token string) error
	// Delete removes the session with the given id.
	Delete(ctx context.Context, id models.SessionID, token string) error
}

// Action is one submitted change to the session list.
type Action struct {
	Intent models.Intent
	// ID is set for update and delete.
	ID models.SessionID
	// Session is set for create and update.
	Session models.SessionDraft
}

// PracticeService lists and changes practice sessions on behalf of a user.
type PracticeService struct {
	api SessionAPI
}

// NewPracticeService constructs a PracticeService with the provided SessionAPI.
func NewPracticeService(api SessionAPI) *PracticeService {
	return &PracticeService{api: api}
}

// List returns the sessions visible to token.
func (s *PracticeService) List(ctx context.Context, token string) ([]models.PracticeSession, error) {
	list, err := s.api.ListAll(ctx, token)
	if err != nil {
		return nil, err
	}
	return list.Sessions, nil
}

// Apply performs exactly one API call for a.
func (s *PracticeService) Apply(ctx context.Context, token string, a Action) error {
	switch a.Intent {
	case models.IntentDelete:
		return s.api.Delete(ctx, a.ID, token)
	case models.IntentUpdate:
		return s.api.Update(ctx, models.PracticeSession{ID: a.ID, SessionDraft: a.Session}, token)
	case models.IntentCreate, "":
		_, err := s.api.Create(ctx, a.Session, token)
		return err
	default:
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidSession, a.Intent)
	}
}

// ParseAction reads an Action from a submitted form. The "intent" field
// selects delete, update or (by default) create.
func ParseAction(form url.Values) (Action, error) {
	a := Action{Intent: models.Intent(strings.ToLower(strings.TrimSpace(form.Get("intent"))))}

	switch a.Intent {
	case models.IntentDelete:
		a.ID = models.SessionID(strings.TrimSpace(form.Get("id")))
		if a.ID == "" {
			return Action{}, fmt.Errorf("%w: id is required", ErrInvalidSession)
		}
		return a, nil
	case models.IntentUpdate:
		a.ID = models.SessionID(strings.TrimSpace(form.Get("id")))
		if a.ID == "" {
			return Action{}, fmt.Errorf("%w: id is required", ErrInvalidSession)
		}
	case "", models.IntentCreate:
		a.Intent = models.IntentCreate
	default:
		return Action{}, fmt.Errorf("%w: unknown intent %q", ErrInvalidSession, a.Intent)
	}

	draft, err := parseDraft(form)
	if err != nil {
		return Action{}, err
	}
	a.Session = draft
	return a, nil
}

func parseDraft(form url.Values) (models.SessionDraft, error) {
	draft := models.SessionDraft{
		Activity: strings.TrimSpace(form.Get("activity")),
		Date:     strings.TrimSpace(form.Get("date")),
		Notes:    form.Get("notes"),
	}

	if raw := strings.TrimSpace(form.Get("minutes")); raw != "" {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return draft, fmt.Errorf("%w: minutes must be a number", ErrInvalidSession)
		}
		draft.Minutes = n
	}

	if err := validatorInstance().Struct(draft); err != nil {
		return draft, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return draft, nil
}
