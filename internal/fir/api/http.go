package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/digital-station/platform/internal/auth"
	"github.com/digital-station/platform/internal/fir/domain"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/respond"
	"github.com/digital-station/platform/internal/shared/types"
)

// Handler provides HTTP handlers for the FIR module
type Handler struct {
	engine   *domain.Engine
	mediator *auth.Mediator
}

// NewHandler creates a new FIR handler
func NewHandler(engine *domain.Engine, mediator *auth.Mediator) *Handler {
	return &Handler{engine: engine, mediator: mediator}
}

// Routes registers the FIR routes, mounted under /fir
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	m := h.mediator

	r.With(m.Require(auth.PermFIRRegister)).Post("/register_incident", h.RegisterIncident)
	r.With(m.Require(auth.PermFIRProgressAdd)).Post("/add_progress", h.AddProgress)
	r.With(m.Require(auth.PermFIRProgressRead)).Post("/get_progress", h.GetProgress)
	r.With(m.Require(auth.PermFIRClose)).Post("/close_fir", h.CloseFIR)

	r.With(m.Require(auth.PermFIRRead)).Get("/details", h.GetDetails)
	r.With(m.RequireOrForbid(auth.PermFIRReadOwned, "Not authorized to view this FIR")).
		Get("/detail/{firID}", h.GetOwnedDetails)

	// Listings
	r.Group(func(r chi.Router) {
		r.Use(m.Require(auth.PermFIRList))
		r.Get("/list", h.ListAll)
		r.Get("/search", h.Search)
	})
	r.With(m.Require(auth.PermFIRListStation)).Get("/list_by_station", h.ListByStation)
	r.With(m.Require(auth.PermFIRListOwn)).Get("/list_by_aadhar", h.ListOwn)

	return r
}

// CitizenRoutes are the FIR views mounted under /citizen
func (h *Handler) CitizenRoutes(r chi.Router) {
	r.With(h.mediator.Require(auth.PermFIRListOwn)).Get("/myfirs", h.ListOwn)
}

// GovernmentRoutes are the FIR views mounted under /government
func (h *Handler) GovernmentRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mediator.Require(auth.PermFIRRegionSearch))
		r.Post("/governmentsearchfir", h.SearchByRegion)
		r.Post("/escalatefir/lookup", h.Lookup)
	})
}

// --- Request/Response types ---

type FIRRequest struct {
	FIRID string `json:"fir_id"`
}

type AddProgressRequest struct {
	FIRID string `json:"fir_id"`
	domain.ProgressInput
}

type RegionRequest struct {
	Region string `json:"region"`
}

type ProgressResponse struct {
	Progress []domain.Progress `json:"progress"`
}

// --- Handlers ---

func (h *Handler) RegisterIncident(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterInput
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	reg, err := h.engine.RegisterIncident(r.Context(), principal(r), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, reg)
}

func (h *Handler) AddProgress(w http.ResponseWriter, r *http.Request) {
	var req AddProgressRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := parseFIRID(req.FIRID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	progress, err := h.engine.AddProgress(r.Context(), principal(r), id, req.ProgressInput)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, ProgressResponse{Progress: progress})
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	var req FIRRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := parseFIRID(req.FIRID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	progress, err := h.engine.GetProgress(r.Context(), principal(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, ProgressResponse{Progress: progress})
}

func (h *Handler) CloseFIR(w http.ResponseWriter, r *http.Request) {
	var req FIRRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := parseFIRID(req.FIRID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.engine.CloseFIR(r.Context(), principal(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, err := parseFIRID(r.URL.Query().Get("fir_id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	details, err := h.engine.GetDetails(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, details)
}

func (h *Handler) GetOwnedDetails(w http.ResponseWriter, r *http.Request) {
	id, err := parseFIRID(chi.URLParam(r, "firID"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	details, err := h.engine.GetOwnedDetails(r.Context(), principal(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, details)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	firs, err := h.engine.ListAll(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, firs)
}

func (h *Handler) ListByStation(w http.ResponseWriter, r *http.Request) {
	listing, err := h.engine.ListByStation(r.Context(), principal(r).StationID())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listing)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	firs, err := h.engine.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, firs)
}

func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	firs, err := h.engine.ListByCitizenIdentity(r.Context(), p.Citizen.AadharNo)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, firs)
}

func (h *Handler) SearchByRegion(w http.ResponseWriter, r *http.Request) {
	var req RegionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	firs, err := h.engine.SearchByRegion(r.Context(), req.Region)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"fir": firs})
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req FIRRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := parseFIRID(req.FIRID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	f, err := h.engine.Lookup(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"fir": f})
}

// --- Helpers ---

// principal returns the principal placed in the context by the route guard.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFrom(r.Context())
	return p
}

// parseFIRID rejects a blank id as invalid input. Any other string that is
// not a well-formed id cannot name an FIR, so it is reported as not found.
func parseFIRID(raw string) (types.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.Validation("validation failed", map[string]string{"fir_id": "field required"})
	}
	id, err := types.ParseID(raw)
	if err != nil {
		return "", errors.NotFound("FIR", strings.TrimSpace(raw))
	}
	return id, nil
}
