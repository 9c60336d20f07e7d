package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/digital-station/platform/internal/shared/auth"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/metrics"
	"github.com/digital-station/platform/internal/shared/respond"
)

// TokenVerifier decodes and validates a bearer token. *auth.TokenService
// implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Verifier turns verified claims into a principal of one kind, rejecting
// tokens that lack the claims that kind requires.
type Verifier interface {
	Kind() Kind
	Principal(claims *auth.Claims) (Principal, bool)
}

type policeVerifier struct{}

func (policeVerifier) Kind() Kind { return KindPolice }

func (policeVerifier) Principal(c *auth.Claims) (Principal, bool) {
	if c.Role != auth.RolePolice || c.StationID == nil {
		return Principal{}, false
	}
	memberID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || memberID <= 0 {
		return Principal{}, false
	}
	return NewPolice(memberID, *c.StationID, c.Name), true
}

type citizenVerifier struct{}

func (citizenVerifier) Kind() Kind { return KindCitizen }

func (citizenVerifier) Principal(c *auth.Claims) (Principal, bool) {
	if c.Role != auth.RoleCitizen || c.CitizenID == nil {
		return Principal{}, false
	}
	aadhar := NormalizeIdentity(c.AadharNo)
	if aadhar == "" {
		return Principal{}, false
	}
	return NewCitizen(*c.CitizenID, aadhar), true
}

type governmentVerifier struct{}

func (governmentVerifier) Kind() Kind { return KindGovernment }

func (governmentVerifier) Principal(c *auth.Claims) (Principal, bool) {
	if c.Role != auth.RoleGovernment || c.GovernmentMemberID == nil || *c.GovernmentMemberID == 0 {
		return Principal{}, false
	}
	return NewGovernment(*c.GovernmentMemberID), true
}

// Mediator authenticates requests against an ordered list of verifiers.
type Mediator struct {
	tokens    TokenVerifier
	verifiers map[Kind]Verifier
}

func NewMediator(tokens TokenVerifier) *Mediator {
	m := &Mediator{tokens: tokens, verifiers: make(map[Kind]Verifier)}
	for _, v := range []Verifier{policeVerifier{}, governmentVerifier{}, citizenVerifier{}} {
		m.verifiers[v.Kind()] = v
	}
	return m
}

// Authenticate resolves the request's bearer token into a principal of one of
// kinds. Kinds are tried in the order given; the first verifier that accepts
// the token wins. The error is always an Unauthorized AppError.
func (m *Mediator) Authenticate(r *http.Request, kinds ...Kind) (Principal, error) {
	raw, err := auth.BearerToken(r)
	if err != nil {
		return Principal{}, errors.Unauthorized("Not authenticated")
	}

	claims, err := m.tokens.Verify(raw)
	if err != nil {
		return Principal{}, errors.Unauthorized("Invalid or expired token")
	}

	for _, k := range kinds {
		v, ok := m.verifiers[k]
		if !ok {
			continue
		}
		if p, ok := v.Principal(claims); ok {
			return p, nil
		}
	}
	return Principal{}, errors.Unauthorized("Invalid token payload")
}

// Require admits requests whose token resolves to a kind holding perm and
// stores the principal in the request context. Anything else gets 401.
func (m *Mediator) Require(perm Permission) func(http.Handler) http.Handler {
	return m.guard(perm, nil)
}

// RequireOrForbid is Require for views that answer 403 with message rather
// than 401 when no accepted verifier succeeds.
func (m *Mediator) RequireOrForbid(perm Permission, message string) func(http.Handler) http.Handler {
	return m.guard(perm, errors.Forbidden(message))
}

func (m *Mediator) guard(perm Permission, denied *errors.AppError) func(http.Handler) http.Handler {
	kinds := KindsWith(perm)
	resource, action, _ := strings.Cut(string(perm), ".")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := m.Authenticate(r, kinds...)
			if err != nil {
				metrics.RecordAuthorizationDecision(resource, action, false)
				if denied != nil {
					respond.Error(w, r, denied)
					return
				}
				w.Header().Set("WWW-Authenticate", "Bearer")
				respond.Error(w, r, err)
				return
			}

			metrics.RecordAuthorizationDecision(resource, action, true)
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
