package account

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/digital-station/platform/internal/auth"
	sharedauth "github.com/digital-station/platform/internal/shared/auth"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/metrics"
	"github.com/digital-station/platform/internal/shared/validate"
)

const invalidCredentials = "Invalid credentials"

// TokenIssuer signs role tokens for authenticated accounts.
type TokenIssuer interface {
	IssueCitizen(citizenID int64, aadharNo string) (string, error)
	IssuePolice(memberID, stationID int64, name string) (string, error)
	IssueGovernment(memberID int64) (string, error)
}

// Service registers accounts and exchanges credentials for tokens.
// Identifiers and passwords are trimmed before they are stored or compared.
type Service struct {
	store      Store
	tokens     TokenIssuer
	bcryptCost int
}

func NewService(store Store, tokens TokenIssuer, bcryptCost int) *Service {
	return &Service{store: store, tokens: tokens, bcryptCost: bcryptCost}
}

// --- Citizens ---

func (s *Service) AddCitizen(ctx context.Context, in CitizenCredentials) (*CitizenCreated, error) {
	in, err := normalizeCitizen(in)
	if err != nil {
		return nil, err
	}

	hash, err := sharedauth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.Internal(err)
	}
	c := &Citizen{AadharNo: in.AadharNo, PasswordHash: hash}
	if err := s.store.CreateCitizen(ctx, c); err != nil {
		return nil, err
	}

	zap.S().Infow("citizen registered", "citizen_id", c.ID)
	return &CitizenCreated{Message: "Citizen added successfully", CitizenID: c.ID}, nil
}

func (s *Service) AuthenticateCitizen(ctx context.Context, in CitizenCredentials) (*CitizenToken, error) {
	in, err := normalizeCitizen(in)
	if err != nil {
		return nil, err
	}

	c, err := s.store.CitizenByAadhar(ctx, in.AadharNo)
	if err = s.verify(auth.KindCitizen, err, func() string { return c.PasswordHash }, in.Password); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueCitizen(c.ID, c.AadharNo)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &CitizenToken{AccessToken: token, TokenType: tokenType, CitizenID: c.ID, AadharNo: c.AadharNo}, nil
}

func normalizeCitizen(in CitizenCredentials) (CitizenCredentials, error) {
	in.AadharNo = auth.NormalizeIdentity(in.AadharNo)
	in.Password = strings.TrimSpace(in.Password)
	if in.AadharNo == "" || in.Password == "" {
		return in, errors.Validation("Aadhar and password are required", nil)
	}
	if err := validate.Struct(in); err != nil {
		return in, err
	}
	return in, nil
}

// --- Police ---

func (s *Service) AddPoliceMember(ctx context.Context, in CreatePoliceMemberRequest) (*PoliceMemberCreated, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := sharedauth.HashPassword(strings.TrimSpace(in.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.Internal(err)
	}
	m := &PoliceMember{StationID: in.StationID, Name: strings.TrimSpace(in.Name), PasswordHash: hash}
	if err := s.store.CreatePoliceMember(ctx, m); err != nil {
		return nil, err
	}

	zap.S().Infow("police member registered", "member_id", m.MemberID, "station_id", m.StationID)
	return &PoliceMemberCreated{Message: "Police member added successfully", MemberID: m.MemberID}, nil
}

func (s *Service) AuthenticatePolice(ctx context.Context, in PoliceCredentials) (*PoliceToken, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	m, err := s.store.PoliceMember(ctx, in.StationID, in.MemberID)
	if err = s.verify(auth.KindPolice, err, func() string { return m.PasswordHash }, strings.TrimSpace(in.Password)); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssuePolice(m.MemberID, m.StationID, m.Name)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &PoliceToken{
		AccessToken:    token,
		TokenType:      tokenType,
		PoliceMemberID: m.MemberID,
		StationID:      m.StationID,
		Name:           m.Name,
	}, nil
}

// Roster lists the members of one station.
func (s *Service) Roster(ctx context.Context, stationID int64) ([]RosterEntry, error) {
	members, err := s.store.PoliceByStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	roster := make([]RosterEntry, 0, len(members))
	for _, m := range members {
		roster = append(roster, RosterEntry{Name: m.Name})
	}
	return roster, nil
}

// --- Government ---

func (s *Service) AddGovernmentMember(ctx context.Context, in GovernmentCredentials) (*Message, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := sharedauth.HashPassword(strings.TrimSpace(in.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.Internal(err)
	}
	g := &GovernmentMember{MemberID: in.MemberID, PasswordHash: hash}
	if err := s.store.CreateGovernmentMember(ctx, g); err != nil {
		return nil, err
	}

	zap.S().Infow("government member registered", "government_member_id", g.MemberID)
	return &Message{Message: "Government added successfully"}, nil
}

func (s *Service) AuthenticateGovernment(ctx context.Context, in GovernmentCredentials) (*GovernmentToken, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	g, err := s.store.GovernmentMember(ctx, in.MemberID)
	if err = s.verify(auth.KindGovernment, err, func() string { return g.PasswordHash }, strings.TrimSpace(in.Password)); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueGovernment(g.MemberID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &GovernmentToken{AccessToken: token, TokenType: tokenType}, nil
}

// verify turns a lookup result and a password into the login outcome. An
// unknown account and a wrong password both yield the same 401.
func (s *Service) verify(kind auth.Kind, lookupErr error, hash func() string, password string) error {
	if lookupErr != nil {
		if errors.Is(lookupErr, errors.ErrNotFound) {
			metrics.RecordLoginAttempt(string(kind), false)
			return errors.Unauthorized(invalidCredentials)
		}
		return lookupErr
	}

	ok, err := sharedauth.CheckPassword(hash(), password)
	if err != nil {
		return errors.Internal(err)
	}
	metrics.RecordLoginAttempt(string(kind), ok)
	if !ok {
		zap.S().Infow("login rejected", "role", kind)
		return errors.Unauthorized(invalidCredentials)
	}
	return nil
}
