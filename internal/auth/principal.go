package auth

import (
	"context"
	"strconv"
	"strings"
)

type CitizenIdentity struct {
	CitizenID int64
	AadharNo  string
}

type PoliceIdentity struct {
	MemberID  int64
	StationID int64
	Name      string
}

type GovernmentIdentity struct {
	MemberID int64
}

// Principal is a tagged variant: exactly the field matching Kind is non-nil.
// Build one with NewCitizen, NewPolice or NewGovernment.
type Principal struct {
	Kind       Kind
	Citizen    *CitizenIdentity
	Police     *PoliceIdentity
	Government *GovernmentIdentity
}

func NewCitizen(citizenID int64, aadharNo string) Principal {
	return Principal{Kind: KindCitizen, Citizen: &CitizenIdentity{CitizenID: citizenID, AadharNo: NormalizeIdentity(aadharNo)}}
}

func NewPolice(memberID, stationID int64, name string) Principal {
	return Principal{Kind: KindPolice, Police: &PoliceIdentity{MemberID: memberID, StationID: stationID, Name: name}}
}

func NewGovernment(memberID int64) Principal {
	return Principal{Kind: KindGovernment, Government: &GovernmentIdentity{MemberID: memberID}}
}

// ActorID is the principal's identifier as recorded on domain events.
func (p Principal) ActorID() string {
	switch p.Kind {
	case KindCitizen:
		return strconv.FormatInt(p.Citizen.CitizenID, 10)
	case KindPolice:
		return strconv.FormatInt(p.Police.MemberID, 10)
	case KindGovernment:
		return strconv.FormatInt(p.Government.MemberID, 10)
	}
	return ""
}

// StationID is the police station of a police principal, 0 otherwise.
func (p Principal) StationID() int64 {
	if p.Kind == KindPolice && p.Police != nil {
		return p.Police.StationID
	}
	return 0
}

// OwnsIdentity reports whether p is a citizen whose identity equals the
// complainant identity stored on an FIR. Both sides are compared trimmed.
func (p Principal) OwnsIdentity(complainantID string) bool {
	if p.Kind != KindCitizen || p.Citizen == nil {
		return false
	}
	own := NormalizeIdentity(p.Citizen.AadharNo)
	return own != "" && own == NormalizeIdentity(complainantID)
}

// NormalizeIdentity is the single normalization applied to national-ID
// strings and credential identifiers before storage and comparison.
func NormalizeIdentity(s string) string {
	return strings.TrimSpace(s)
}

type contextKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom extracts the principal placed by a guard.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
