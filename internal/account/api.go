package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digital-station/platform/internal/auth"
	"github.com/digital-station/platform/internal/shared/middleware"
	"github.com/digital-station/platform/internal/shared/ratelimit"
	"github.com/digital-station/platform/internal/shared/respond"
)

// Handler provides HTTP handlers for the account module
type Handler struct {
	svc      *Service
	mediator *auth.Mediator
	limiter  ratelimit.Limiter
}

// NewHandler creates a new account handler. A nil limiter leaves the token
// endpoints unthrottled.
func NewHandler(svc *Service, mediator *auth.Mediator, limiter ratelimit.Limiter) *Handler {
	return &Handler{svc: svc, mediator: mediator, limiter: limiter}
}

// CitizenRoutes registers the routes mounted under /citizen
func (h *Handler) CitizenRoutes(r chi.Router) {
	r.Post("/addcitizen", h.AddCitizen)
	r.With(h.throttle).Post("/citizenAuth", h.CitizenAuth)
}

// GovernmentRoutes registers the routes mounted under /government
func (h *Handler) GovernmentRoutes(r chi.Router) {
	r.Post("/addgovernment", h.AddGovernment)
	r.With(h.throttle).Post("/governmentAuth", h.GovernmentAuth)
}

// PoliceRoutes registers the routes mounted under /policeauth
func (h *Handler) PoliceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/addpolicemember", h.AddPoliceMember)
	r.With(h.throttle).Post("/policeauth", h.PoliceAuth)
	r.With(h.mediator.Require(auth.PermRosterRead)).Get("/allmembers", h.AllMembers)
	return r
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return middleware.RateLimit(h.limiter)(next)
}

// --- Citizen Handlers ---

func (h *Handler) AddCitizen(w http.ResponseWriter, r *http.Request) {
	var req CitizenCredentials
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.AddCitizen(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) CitizenAuth(w http.ResponseWriter, r *http.Request) {
	var req CitizenCredentials
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, err := h.svc.AuthenticateCitizen(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, token)
}

// --- Police Handlers ---

func (h *Handler) AddPoliceMember(w http.ResponseWriter, r *http.Request) {
	var req CreatePoliceMemberRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.AddPoliceMember(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) PoliceAuth(w http.ResponseWriter, r *http.Request) {
	var req PoliceCredentials
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, err := h.svc.AuthenticatePolice(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, token)
}

func (h *Handler) AllMembers(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	roster, err := h.svc.Roster(r.Context(), p.StationID())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, roster)
}

// --- Government Handlers ---

func (h *Handler) AddGovernment(w http.ResponseWriter, r *http.Request) {
	var req GovernmentCredentials
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.svc.AddGovernmentMember(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) GovernmentAuth(w http.ResponseWriter, r *http.Request) {
	var req GovernmentCredentials
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, err := h.svc.AuthenticateGovernment(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, token)
}
