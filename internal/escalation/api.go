package escalation

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/digital-station/platform/internal/auth"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/respond"
)

// Handler provides HTTP handlers for the escalation module
type Handler struct {
	engine   *Engine
	mediator *auth.Mediator
}

// NewHandler creates a new escalation handler
func NewHandler(engine *Engine, mediator *auth.Mediator) *Handler {
	return &Handler{engine: engine, mediator: mediator}
}

// CitizenRoutes registers the routes mounted under /citizen
func (h *Handler) CitizenRoutes(r chi.Router) {
	r.With(h.mediator.Require(auth.PermEscalationSubmit)).Post("/escalatefir", h.Escalate)
}

// GovernmentRoutes registers the moderation routes mounted under /government
func (h *Handler) GovernmentRoutes(r chi.Router) {
	r.Route("/escalations", func(r chi.Router) {
		r.Use(h.mediator.Require(auth.PermEscalationModerate))
		r.Get("/", h.List)
		r.Patch("/{escalationID}/status", h.UpdateStatus)
	})
}

func (h *Handler) Escalate(w http.ResponseWriter, r *http.Request) {
	var req EscalateInput
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, errors.Validation("fir_id and reason are required", nil))
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	rec, err := h.engine.Escalate(r.Context(), p, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, rec)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.engine.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "escalationID"), 10, 64)
	if err != nil {
		respond.Error(w, r, errors.Validation("validation failed", map[string]string{"id": "must be an integer"}))
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	esc, err := h.engine.UpdateStatus(r.Context(), p, id, r.URL.Query().Get("new_status"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, esc)
}
