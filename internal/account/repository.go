package account

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digital-station/platform/internal/shared/database"
	"github.com/digital-station/platform/internal/shared/errors"
)

// Store persists accounts. Lookups return a NotFound AppError when no row
// matches.
type Store interface {
	CreateCitizen(ctx context.Context, c *Citizen) error
	CitizenByAadhar(ctx context.Context, aadharNo string) (*Citizen, error)

	CreatePoliceMember(ctx context.Context, m *PoliceMember) error
	PoliceMember(ctx context.Context, stationID, memberID int64) (*PoliceMember, error)
	PoliceByStation(ctx context.Context, stationID int64) ([]PoliceMember, error)

	CreateGovernmentMember(ctx context.Context, g *GovernmentMember) error
	GovernmentMember(ctx context.Context, memberID int64) (*GovernmentMember, error)
}

// Repository provides database operations for accounts
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new account repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Citizens ---

func (r *Repository) CreateCitizen(ctx context.Context, c *Citizen) error {
	query := `
		INSERT INTO citizens (aadhar_no, password_hash)
		VALUES ($1, $2)
		RETURNING citizen_id, created_at`

	err := r.pool.QueryRow(ctx, query, c.AadharNo, c.PasswordHash).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "citizens_aadhar_no_key") {
			return errors.Conflict("Citizen with this Aadhar already exists")
		}
		return errors.Wrap(err, "failed to create citizen")
	}
	return nil
}

func (r *Repository) CitizenByAadhar(ctx context.Context, aadharNo string) (*Citizen, error) {
	query := `
		SELECT citizen_id, aadhar_no, password_hash, created_at
		FROM citizens
		WHERE aadhar_no = $1`

	c := &Citizen{}
	err := r.pool.QueryRow(ctx, query, aadharNo).Scan(&c.ID, &c.AadharNo, &c.PasswordHash, &c.CreatedAt)
	if database.IsNoRows(err) {
		return nil, errors.NotFound("Citizen", aadharNo)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get citizen")
	}
	return c, nil
}

// --- Police ---

func (r *Repository) CreatePoliceMember(ctx context.Context, m *PoliceMember) error {
	query := `
		INSERT INTO police_members (station_id, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING member_id, created_at`

	if err := r.pool.QueryRow(ctx, query, m.StationID, m.Name, m.PasswordHash).Scan(&m.MemberID, &m.CreatedAt); err != nil {
		return errors.Wrap(err, "failed to create police member")
	}
	return nil
}

func (r *Repository) PoliceMember(ctx context.Context, stationID, memberID int64) (*PoliceMember, error) {
	query := `
		SELECT member_id, station_id, name, password_hash, created_at
		FROM police_members
		WHERE station_id = $1 AND member_id = $2`

	rows, err := r.pool.Query(ctx, query, stationID, memberID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get police member")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[PoliceMember])
	if database.IsNoRows(err) {
		return nil, errors.NotFound("Police member", fmt.Sprintf("%d/%d", stationID, memberID))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get police member")
	}
	return m, nil
}

func (r *Repository) PoliceByStation(ctx context.Context, stationID int64) ([]PoliceMember, error) {
	query := `
		SELECT member_id, station_id, name, password_hash, created_at
		FROM police_members
		WHERE station_id = $1
		ORDER BY member_id`

	rows, err := r.pool.Query(ctx, query, stationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list police members")
	}
	members, err := pgx.CollectRows(rows, pgx.RowToStructByPos[PoliceMember])
	if err != nil {
		return nil, errors.Wrap(err, "failed to list police members")
	}
	return members, nil
}

// --- Government ---

func (r *Repository) CreateGovernmentMember(ctx context.Context, g *GovernmentMember) error {
	query := `
		INSERT INTO government_members (government_member_id, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, g.MemberID, g.PasswordHash).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "government_members_member_id_key") {
			return errors.Conflict("Government member already exists")
		}
		return errors.Wrap(err, "failed to create government member")
	}
	return nil
}

func (r *Repository) GovernmentMember(ctx context.Context, memberID int64) (*GovernmentMember, error) {
	query := `
		SELECT id, government_member_id, password_hash, created_at
		FROM government_members
		WHERE government_member_id = $1`

	g := &GovernmentMember{}
	err := r.pool.QueryRow(ctx, query, memberID).Scan(&g.ID, &g.MemberID, &g.PasswordHash, &g.CreatedAt)
	if database.IsNoRows(err) {
		return nil, errors.NotFound("Government member", strconv.FormatInt(memberID, 10))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get government member")
	}
	return g, nil
}

var _ Store = (*Repository)(nil)
