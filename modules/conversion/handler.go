package conversion

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/distribuia/distribuia/core"
	"github.com/distribuia/distribuia/pkg/auth"
	"github.com/distribuia/distribuia/pkg/entitlements"
	"github.com/distribuia/distribuia/pkg/ratelimiter"
)

// Handler exposes the conversion routes. Session validation, CSRF, and the
// general API rate limit are applied by the parent router; the handler adds
// the stricter generation policy on the expensive endpoints.
type Handler struct {
	service    *Service
	genLimiter *ratelimiter.Limiter
}

// NewHandler creates the HTTP handler. genLimiter may be nil when rate
// limiting is not configured.
func NewHandler(service *Service, genLimiter *ratelimiter.Limiter) *Handler {
	return &Handler{service: service, genLimiter: genLimiter}
}

// Router mounts the conversion endpoints.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	generationLimit := ratelimiter.Middleware(h.genLimiter, func(r *http.Request) string {
		return ratelimiter.Identify(auth.UserIDFromContext(r.Context()), r)
	})

	r.With(generationLimit).Post("/convert", h.create)
	r.Get("/conversions", h.list)
	r.With(generationLimit).Post("/conversions/{conversionID}/regenerate", h.regenerate)
	r.Get("/user/usage", h.usage)

	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		core.Error(w, core.ErrUnauthenticated)
		return
	}

	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		core.Error(w, core.ErrInvalidInput)
		return
	}

	conv, original, err := h.service.Create(r.Context(), user, in)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}

	core.JSON(w, http.StatusCreated, map[string]any{
		"conversion": conv,
		"output":     original,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		core.Error(w, core.ErrUnauthenticated)
		return
	}

	conversions, err := h.service.List(r.Context(), user)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, conversions)
}

func (h *Handler) regenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		core.Error(w, core.ErrUnauthenticated)
		return
	}

	conversionID, err := uuid.Parse(chi.URLParam(r, "conversionID"))
	if err != nil {
		core.Error(w, core.ErrNotFound)
		return
	}

	var body struct {
		Format entitlements.Format `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		core.Error(w, core.ErrInvalidInput)
		return
	}

	version, err := h.service.Regenerate(r.Context(), user, conversionID, body.Format)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusCreated, version)
}

func (h *Handler) usage(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		core.Error(w, core.ErrUnauthenticated)
		return
	}

	usage, err := h.service.GetUsage(r.Context(), user)
	if err != nil {
		core.Error(w, mapError(err))
		return
	}
	core.JSON(w, http.StatusOK, usage)
}

// mapError translates domain errors into the stable API error taxonomy.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return core.ErrQuotaExceeded
	case errors.Is(err, ErrRegenerateLimit):
		return core.ErrRegenerateLimitExceeded
	case errors.Is(err, ErrConversionNotFound):
		return core.ErrNotFound
	case errors.Is(err, ErrInvalidInput):
		return core.ErrInvalidInput
	default:
		return core.ErrInternal
	}
}
