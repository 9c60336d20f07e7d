package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	sharedauth "github.com/digital-station/platform/internal/shared/auth"
	"github.com/digital-station/platform/internal/shared/config"
	"github.com/digital-station/platform/internal/shared/errors"
)

func newTestService(t *testing.T) (*Service, *memoryStore, *sharedauth.TokenService) {
	t.Helper()
	tokens, err := sharedauth.NewTokenService(config.AuthConfig{JWTSecret: "account-test", TokenTTL: time.Hour})
	require.NoError(t, err)
	store := newMemoryStore()
	return NewService(store, tokens, bcrypt.MinCost), store, tokens
}

func TestCitizenCredentialsAreTrimmed(t *testing.T) {
	svc, store, tokens := newTestService(t)
	ctx := context.Background()

	created, err := svc.AddCitizen(ctx, CitizenCredentials{AadharNo: " 1234 ", Password: " pw "})
	require.NoError(t, err)
	assert.Equal(t, "Citizen added successfully", created.Message)

	stored, err := store.CitizenByAadhar(ctx, "1234")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", stored.PasswordHash)

	tok, err := svc.AuthenticateCitizen(ctx, CitizenCredentials{AadharNo: "1234", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, "1234", tok.AadharNo)
	assert.Equal(t, created.CitizenID, tok.CitizenID)

	claims, err := tokens.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "1234", claims.AadharNo)

	_, err = svc.AuthenticateCitizen(ctx, CitizenCredentials{AadharNo: "12345", Password: "pw"})
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", errors.From(err).Message)

	_, err = svc.AuthenticateCitizen(ctx, CitizenCredentials{AadharNo: "1234", Password: "wrong"})
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", errors.From(err).Message)
}

func TestAddCitizenErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddCitizen(ctx, CitizenCredentials{AadharNo: "1234", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.AddCitizen(ctx, CitizenCredentials{AadharNo: " 1234", Password: "other"})
	require.ErrorIs(t, err, errors.ErrConflict)
	assert.Equal(t, "Citizen with this Aadhar already exists", errors.From(err).Message)

	_, err = svc.AddCitizen(ctx, CitizenCredentials{AadharNo: "   ", Password: "pw"})
	require.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, "Aadhar and password are required", errors.From(err).Message)

	_, err = svc.AuthenticateCitizen(ctx, CitizenCredentials{AadharNo: "1234", Password: " "})
	require.ErrorIs(t, err, errors.ErrValidation)

	_, err = svc.AddCitizen(ctx, CitizenCredentials{AadharNo: "123", Password: "pw"})
	require.ErrorIs(t, err, errors.ErrValidation)
	assert.Contains(t, errors.From(err).Details, "aadhar_no")
}

func TestPoliceAccounts(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()

	created, err := svc.AddPoliceMember(ctx, CreatePoliceMemberRequest{Name: " Inspector Rao ", Password: "secret", StationID: 5})
	require.NoError(t, err)
	assert.Equal(t, "Police member added successfully", created.Message)
	_, err = svc.AddPoliceMember(ctx, CreatePoliceMemberRequest{Name: "SI Khan", Password: "secret", StationID: 5})
	require.NoError(t, err)
	_, err = svc.AddPoliceMember(ctx, CreatePoliceMemberRequest{Name: "SI Das", Password: "secret", StationID: 6})
	require.NoError(t, err)

	tok, err := svc.AuthenticatePolice(ctx, PoliceCredentials{StationID: 5, MemberID: created.MemberID, Password: " secret "})
	require.NoError(t, err)
	assert.Equal(t, "Inspector Rao", tok.Name)
	assert.Equal(t, int64(5), tok.StationID)
	assert.Equal(t, created.MemberID, tok.PoliceMemberID)

	claims, err := tokens.Verify(tok.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.StationID)
	assert.Equal(t, int64(5), *claims.StationID)

	_, err = svc.AuthenticatePolice(ctx, PoliceCredentials{StationID: 6, MemberID: created.MemberID, Password: "secret"})
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	roster, err := svc.Roster(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []RosterEntry{{Name: "Inspector Rao"}, {Name: "SI Khan"}}, roster)

	empty, err := svc.Roster(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.AddPoliceMember(ctx, CreatePoliceMemberRequest{Name: "x", Password: "y"})
	require.ErrorIs(t, err, errors.ErrValidation)
	assert.Contains(t, errors.From(err).Details, "station_id")
}

func TestGovernmentAccounts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.AddGovernmentMember(ctx, GovernmentCredentials{MemberID: 42, Password: "gov"})
	require.NoError(t, err)
	assert.Equal(t, "Government added successfully", res.Message)

	_, err = svc.AddGovernmentMember(ctx, GovernmentCredentials{MemberID: 42, Password: "gov"})
	assert.ErrorIs(t, err, errors.ErrConflict)

	tok, err := svc.AuthenticateGovernment(ctx, GovernmentCredentials{MemberID: 42, Password: "gov"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)

	_, err = svc.AuthenticateGovernment(ctx, GovernmentCredentials{MemberID: 43, Password: "gov"})
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}
