package emailprefs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/distribuia/distribuia/core"
	"github.com/distribuia/distribuia/pkg/auth"
)

// Handler exposes the email preferences endpoints. The preferences path is
// shared: a tokenized GET is the public unsubscribe link, while the
// session-bound GET and PUT manage consent. Route dispatch happens in the
// composition root, so the handler exposes plain handler funcs instead of a
// sub-router.
type Handler struct {
	service *Service
}

// NewHandler creates the HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Unsubscribe is the public one-click endpoint linked from email footers.
// It runs without a session; the HMAC token is the authorization. Mount it
// behind the unsubscribe rate limit.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	userID := r.URL.Query().Get("user")

	if err := h.service.Unsubscribe(r.Context(), userID, token); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			core.Error(w, core.ErrInvalidToken)
			return
		}
		core.Error(w, core.ErrInternal)
		return
	}

	core.JSON(w, http.StatusOK, map[string]string{
		"message": "Te has dado de baja correctamente. No recibirás más correos promocionales.",
	})
}

// Get returns the authenticated user's preferences.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		core.Error(w, core.ErrUnauthenticated)
		return
	}

	prefs, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		core.Error(w, core.ErrInternal)
		return
	}
	core.JSON(w, http.StatusOK, prefs)
}

// Update applies an authenticated consent change.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		core.Error(w, core.ErrUnauthenticated)
		return
	}

	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		core.Error(w, core.ErrInvalidInput)
		return
	}

	prefs, err := h.service.Update(r.Context(), user.ID, in)
	if err != nil {
		core.Error(w, core.ErrInternal)
		return
	}
	core.JSON(w, http.StatusOK, prefs)
}
