//go:build integration

package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digital-station/platform/internal/shared/database/dbtest"
	"github.com/digital-station/platform/internal/shared/errors"
)

func TestRepositoryAccounts(t *testing.T) {
	repo := NewRepository(dbtest.NewPool(t))
	ctx := context.Background()

	c := &Citizen{AadharNo: "1234", PasswordHash: "hash"}
	require.NoError(t, repo.CreateCitizen(ctx, c))
	assert.NotZero(t, c.ID)

	err := repo.CreateCitizen(ctx, &Citizen{AadharNo: "1234", PasswordHash: "other"})
	assert.ErrorIs(t, err, errors.ErrConflict)

	found, err := repo.CitizenByAadhar(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)

	_, err = repo.CitizenByAadhar(ctx, "9999")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	m := &PoliceMember{StationID: 5, Name: "Inspector Rao", PasswordHash: "hash"}
	require.NoError(t, repo.CreatePoliceMember(ctx, m))
	require.NoError(t, repo.CreatePoliceMember(ctx, &PoliceMember{StationID: 6, Name: "SI Das", PasswordHash: "hash"}))

	got, err := repo.PoliceMember(ctx, 5, m.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "Inspector Rao", got.Name)

	_, err = repo.PoliceMember(ctx, 6, m.MemberID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	roster, err := repo.PoliceByStation(ctx, 5)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, m.MemberID, roster[0].MemberID)

	g := &GovernmentMember{MemberID: 42, PasswordHash: "hash"}
	require.NoError(t, repo.CreateGovernmentMember(ctx, g))
	assert.ErrorIs(t, repo.CreateGovernmentMember(ctx, &GovernmentMember{MemberID: 42, PasswordHash: "x"}), errors.ErrConflict)

	gm, err := repo.GovernmentMember(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, g.ID, gm.ID)
}
