package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digital-station/platform/internal/auth"
	"github.com/digital-station/platform/internal/fir/domain"
	"github.com/digital-station/platform/internal/fir/firtest"
	sharedauth "github.com/digital-station/platform/internal/shared/auth"
	"github.com/digital-station/platform/internal/shared/config"
	"github.com/digital-station/platform/internal/shared/events"
)

type testServer struct {
	router *chi.Mux
	tokens *sharedauth.TokenService
	repo   *firtest.MemoryRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := sharedauth.NewTokenService(config.AuthConfig{JWTSecret: "fir-api-test", TokenTTL: time.Hour})
	require.NoError(t, err)

	repo := firtest.NewMemoryRepository()
	h := NewHandler(domain.NewEngine(repo, events.Nop{}), auth.NewMediator(tokens))

	r := chi.NewRouter()
	r.Mount("/fir", h.Routes())
	r.Route("/citizen", h.CitizenRoutes)
	r.Route("/government", h.GovernmentRoutes)
	return &testServer{router: r, tokens: tokens, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) police(t *testing.T, memberID, stationID int64) string {
	t.Helper()
	tok, err := s.tokens.IssuePolice(memberID, stationID, "Inspector Rao")
	require.NoError(t, err)
	return tok
}

func (s *testServer) citizen(t *testing.T, aadhar string) string {
	t.Helper()
	tok, err := s.tokens.IssueCitizen(1, aadhar)
	require.NoError(t, err)
	return tok
}

func (s *testServer) government(t *testing.T) string {
	t.Helper()
	tok, err := s.tokens.IssueGovernment(42)
	require.NoError(t, err)
	return tok
}

func incident() map[string]any {
	return map[string]any{
		"fullname":          "Asha Verma",
		"age":               34,
		"gender":            "female",
		"address":           "12 MG Road, Pune",
		"contact_number":    "9800000000",
		"id_proof_type":     "aadhar",
		"id_proof_value":    "1234",
		"incident_date":     "2026-03-01",
		"incident_time":     "21:30",
		"offence_type":      "theft",
		"incident_location": "Shivaji Nagar",
		"case_narrative":    "Phone snatched.",
		"StationId":         99,
		"member_id":         99,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func (s *testServer) registerFIR(t *testing.T, token string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/fir/register_incident", token, incident())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reg domain.Registration
	decode(t, rec, &reg)
	return reg.ReportID.String()
}

func TestRegisterIncidentBindsPrincipal(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/fir/register_incident", s.police(t, 7, 5), incident())
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "Incident registered successfully", body["message"])
	assert.Equal(t, float64(7), body["registered_by_id"])
	assert.Equal(t, "Inspector Rao", body["registered_by_name"])

	listing := s.do(t, http.MethodGet, "/fir/list_by_station", s.police(t, 7, 5), nil)
	require.Equal(t, http.StatusOK, listing.Code)
	var l struct {
		All []map[string]any `json:"all"`
	}
	decode(t, listing, &l)
	require.Len(t, l.All, 1)
	assert.Equal(t, float64(5), l.All[0]["station_id"], "station comes from the token, not the body")
}

func TestRegisterIncidentRejects(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/fir/register_incident", "", incident())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Not authenticated"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/fir/register_incident", s.citizen(t, "1234"), incident())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	bad := incident()
	bad["incident_date"] = "yesterday"
	rec = s.do(t, http.MethodPost, "/fir/register_incident", s.police(t, 7, 5), bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Detail string            `json:"detail"`
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &body)
	assert.Contains(t, body.Errors, "incident_date")
}

func TestProgressFlow(t *testing.T) {
	s := newTestServer(t)
	officer := s.police(t, 7, 5)
	id := s.registerFIR(t, officer)

	for _, text := range []string{"P1", "P2"} {
		rec := s.do(t, http.MethodPost, "/fir/add_progress", officer, map[string]any{
			"fir_id":        id,
			"progress_text": text,
			"culprit":       map[string]any{"name": "Ravi"},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodPost, "/fir/get_progress", s.citizen(t, " 1234 "), map[string]string{"fir_id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProgressResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Progress, 2)
	assert.Equal(t, "P2", *resp.Progress[0].ProgressText)
	assert.NotNil(t, resp.Progress[0].CulpritID)

	rec = s.do(t, http.MethodPost, "/fir/get_progress", s.citizen(t, "9999"), map[string]string{"fir_id": id})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/fir/get_progress", "", map[string]string{"fir_id": id})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownAndBlankFIRIDs(t *testing.T) {
	s := newTestServer(t)
	officer := s.police(t, 7, 5)

	rec := s.do(t, http.MethodPost, "/fir/add_progress", officer, map[string]string{"fir_id": "not-a-uuid"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"FIR not found"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/fir/close_fir", officer, map[string]string{"fir_id": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/fir/details?fir_id=6f1c1c9e-8f5e-4d53-9a57-0b0b8c3f7f11", officer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloseFIRFlow(t *testing.T) {
	s := newTestServer(t)
	officer := s.police(t, 7, 5)
	id := s.registerFIR(t, officer)

	rec := s.do(t, http.MethodPost, "/fir/close_fir", officer, map[string]string{"fir_id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"FIR closed successfully"}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/fir/close_fir", officer, map[string]string{"fir_id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"FIR already closed"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/fir/details?fir_id="+id, s.government(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details map[string]any
	decode(t, rec, &details)
	assert.Equal(t, "closed", details["status"])

	rec = s.do(t, http.MethodPost, "/fir/close_fir", s.government(t), map[string]string{"fir_id": id})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaffDetailViewAccess(t *testing.T) {
	s := newTestServer(t)
	id := s.registerFIR(t, s.police(t, 7, 5))

	for _, token := range []string{s.police(t, 7, 5), s.police(t, 8, 6), s.government(t)} {
		rec := s.do(t, http.MethodGet, "/fir/details?fir_id="+id, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var details map[string]any
		decode(t, rec, &details)
		assert.Equal(t, id, details["fir_id"])
	}

	rec := s.do(t, http.MethodGet, "/fir/details?fir_id="+id, s.citizen(t, "1234"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/fir/details?fir_id="+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnedDetailView(t *testing.T) {
	s := newTestServer(t)
	id := s.registerFIR(t, s.police(t, 7, 5))

	rec := s.do(t, http.MethodGet, "/fir/detail/"+id, s.citizen(t, "1234"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/fir/detail/"+id, s.citizen(t, "12345"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"Not authorized to view this FIR"}`, rec.Body.String())

	// Government tokens are not accepted on the owner view.
	rec = s.do(t, http.MethodGet, "/fir/detail/"+id, s.government(t), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/fir/detail/"+id, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListViews(t *testing.T) {
	s := newTestServer(t)
	id := s.registerFIR(t, s.police(t, 7, 5))

	for _, token := range []string{s.police(t, 7, 5), s.government(t)} {
		rec := s.do(t, http.MethodGet, "/fir/list", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]any
		decode(t, rec, &list)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0]["fir_id"])
		assert.Equal(t, "2026-03-01", list[0]["incident_date"])
	}

	rec := s.do(t, http.MethodGet, "/fir/list", s.citizen(t, "1234"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/fir/search?q=shivaji", s.government(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []map[string]any
	decode(t, rec, &found)
	assert.Len(t, found, 1)

	rec = s.do(t, http.MethodGet, "/fir/search", s.government(t), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/fir/search?q=a%00b", s.government(t), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"detail":"validation failed","errors":{"q":"invalid text"}}`, rec.Body.String())

	for _, path := range []string{"/fir/list_by_aadhar", "/citizen/myfirs"} {
		rec = s.do(t, http.MethodGet, path, s.citizen(t, "1234"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var mine []map[string]any
		decode(t, rec, &mine)
		assert.Len(t, mine, 1, path)
	}
}

func TestGovernmentViews(t *testing.T) {
	s := newTestServer(t)
	id := s.registerFIR(t, s.police(t, 7, 5))
	gov := s.government(t)

	rec := s.do(t, http.MethodPost, "/government/governmentsearchfir", gov, map[string]string{"region": "pune"})
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		FIR []map[string]any `json:"fir"`
	}
	decode(t, rec, &search)
	require.Len(t, search.FIR, 1)
	assert.Equal(t, id, search.FIR[0]["fir_id"])

	rec = s.do(t, http.MethodPost, "/government/escalatefir/lookup", gov, map[string]string{"fir_id": id})
	require.Equal(t, http.StatusOK, rec.Code)
	var lookup struct {
		FIR map[string]any `json:"fir"`
	}
	decode(t, rec, &lookup)
	assert.Equal(t, "active", lookup.FIR["status"])

	rec = s.do(t, http.MethodPost, "/government/governmentsearchfir", s.police(t, 7, 5), map[string]string{"region": "pune"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
