package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/practicelog/internal/auth"
	"github.com/atinyakov/practicelog/internal/client/api"
	"github.com/atinyakov/practicelog/internal/middleware"
	"github.com/atinyakov/practicelog/internal/models"
	"github.com/atinyakov/practicelog/internal/service"
)

const (
	msgFetchFailed   = "Failed to fetch sessions."
	msgRequestFailed = "The change could not be saved. Please try again."
)

// PracticeService defines the session operations required by the HTTP handlers.
type PracticeService interface {
	List(ctx context.Context, token string) ([]models.PracticeSession, error)
	Apply(ctx context.Context, token string, a service.Action) error
}

// HomeHandler serves the session list and its form submissions.
type HomeHandler struct {
	PracticeService PracticeService
	Store           *auth.Store
	Views           *Renderer
	Logger          *zap.Logger
	// Now is used for the default date of the add form.
	Now func() time.Time
}

type homePage struct {
	Title    string
	Identity *models.Identity
	Sessions []models.PracticeSession
	Error    string
	Today    string
}

// List renders every session of the signed-in user.
func (h *HomeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := middleware.GetTokenFromContext(ctx)

	sessions, err := h.PracticeService.List(ctx, token)
	if err != nil {
		if api.IsUnauthorized(err) {
			h.forceLogout(w, r)
			return
		}
		h.Logger.Error("list sessions", zap.Error(err))
		h.render(w, r, http.StatusInternalServerError, nil, msgFetchFailed)
		return
	}
	h.render(w, r, http.StatusOK, sessions, "")
}

// Submit applies a create, update or delete form and redirects back to the list.
func (h *HomeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	action, err := service.ParseAction(r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.PracticeService.Apply(ctx, middleware.GetTokenFromContext(ctx), action); err != nil {
		if api.IsUnauthorized(err) {
			h.forceLogout(w, r)
			return
		}
		h.Logger.Error("apply session change",
			zap.String("intent", string(action.Intent)),
			zap.String("id", string(action.ID)),
			zap.Error(err),
		)
		if errors.Is(err, service.ErrInvalidSession) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, msgRequestFailed, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// forceLogout drops a token the API no longer accepts.
func (h *HomeHandler) forceLogout(w http.ResponseWriter, r *http.Request) {
	sess := h.Store.Session(r)
	auth.ClearToken(sess)
	if err := h.Store.Commit(r, w, sess); err != nil {
		h.Logger.Error("commit session", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *HomeHandler) render(w http.ResponseWriter, r *http.Request, status int, sessions []models.PracticeSession, errMsg string) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	data := homePage{
		Title:    "Practice Sessions",
		Sessions: sessions,
		Error:    errMsg,
		Today:    now().Format(time.DateOnly),
	}
	if id, ok := middleware.GetIdentityFromContext(r.Context()); ok {
		data.Identity = &id
	}

	if err := h.Views.Render(w, status, pageHome, data); err != nil {
		h.Logger.Error("render page", zap.String("page", pageHome), zap.Error(err))
	}
}
