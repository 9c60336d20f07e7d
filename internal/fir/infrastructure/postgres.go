package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digital-station/platform/internal/fir/domain"
	"github.com/digital-station/platform/internal/shared/database"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/types"
)

// PostgresRepository implements domain.Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const firColumns = `
	f.id, f.fullname, f.age, f.gender, f.address, f.contact_number,
	f.id_proof_type, f.id_proof_value, f.incident_date, f.incident_time,
	f.offence_type, f.incident_location, f.case_narrative,
	f.station_id, f.member_id, f.status, f.created_at,
	EXISTS (SELECT 1 FROM closed_firs c WHERE c.fir_id = f.id)`

// Save inserts a newly registered FIR
func (r *PostgresRepository) Save(ctx context.Context, f *domain.FIR) error {
	query := `
		INSERT INTO firs (
			id, fullname, age, gender, address, contact_number,
			id_proof_type, id_proof_value, incident_date, incident_time,
			offence_type, incident_location, case_narrative,
			station_id, member_id, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)`

	_, err := r.pool.Exec(ctx, query,
		f.ID, f.Fullname, f.Age, f.Gender, f.Address, f.ContactNumber,
		f.IDProofType, f.IDProofValue, f.IncidentDate.Time, clockValue(f.IncidentTime),
		f.OffenceType, f.IncidentLocation, f.CaseNarrative,
		f.StationID, f.MemberID, f.Status, f.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errors.Conflict("FIR with this ID already exists")
		}
		if database.IsForeignKeyViolation(err) {
			return errors.NotFound("Police member", fmt.Sprint(f.MemberID))
		}
		return errors.Wrap(err, "failed to save FIR")
	}
	return nil
}

// FindByID finds an FIR by ID
func (r *PostgresRepository) FindByID(ctx context.Context, id types.ID) (*domain.FIR, error) {
	query := `SELECT ` + firColumns + ` FROM firs f WHERE f.id = $1`

	f, err := scanFIR(r.pool.QueryRow(ctx, query, id))
	if database.IsNoRows(err) {
		return nil, errors.NotFound("FIR", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find FIR")
	}
	return f, nil
}

// Close locks the FIR row for the duration of decide so concurrent closes
// serialize; the loser sees the winner's status and writes nothing.
func (r *PostgresRepository) Close(ctx context.Context, id types.ID, decide func(f *domain.FIR) (*domain.ClosedFIR, error)) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + firColumns + ` FROM firs f WHERE f.id = $1 FOR UPDATE`
	f, err := scanFIR(tx.QueryRow(ctx, query, id))
	if database.IsNoRows(err) {
		return errors.NotFound("FIR", id.String())
	}
	if err != nil {
		return errors.Wrap(err, "failed to lock FIR")
	}
	previous := f.Status

	snapshot, err := decide(f)
	if err != nil {
		return err
	}

	if snapshot != nil {
		insert := `
			INSERT INTO closed_firs (
				fir_id, fullname, age, gender, address, contact_number,
				id_proof_type, id_proof_value, incident_date, incident_time,
				offence_type, incident_location, case_narrative,
				station_id, member_id, closed_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
			)
			ON CONFLICT (fir_id) DO NOTHING`

		_, err = tx.Exec(ctx, insert,
			snapshot.FIRID, snapshot.Fullname, snapshot.Age, snapshot.Gender, snapshot.Address, snapshot.ContactNumber,
			snapshot.IDProofType, snapshot.IDProofValue, snapshot.IncidentDate.Time, clockValue(snapshot.IncidentTime),
			snapshot.OffenceType, snapshot.IncidentLocation, snapshot.CaseNarrative,
			snapshot.StationID, snapshot.MemberID, snapshot.ClosedAt.Time,
		)
		if err != nil {
			return errors.Wrap(err, "failed to archive FIR")
		}
	}

	if f.Status != previous {
		if _, err := tx.Exec(ctx, `UPDATE firs SET status = $2 WHERE id = $1`, id, f.Status); err != nil {
			return errors.Wrap(err, "failed to update FIR status")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// AppendProgress inserts the culprit (if any) and the progress entry in one
// transaction. The culprit id comes from RETURNING, never from a re-query.
func (r *PostgresRepository) AppendProgress(ctx context.Context, p *domain.Progress, c *domain.Culprit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if c != nil {
		query := `
			INSERT INTO culprits (
				fir_id, station_id, member_id, name, age, gender, address,
				identity_marks, custody_status, details, last_known_location, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id`

		err := tx.QueryRow(ctx, query,
			c.FIRID, c.StationID, c.MemberID, c.Name, c.Age, c.Gender, c.Address,
			c.IdentityMarks, c.CustodyStatus, c.Details, c.LastKnownLocation, c.CreatedAt,
		).Scan(&c.ID)
		if err != nil {
			return r.progressError(err, c.FIRID, "failed to save culprit")
		}
		p.CulpritID = &c.ID
	}

	query := `
		INSERT INTO fir_progress (
			fir_id, progress_text, evidence_text, evidence_photos,
			witness_info, other_info, culprit_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		p.FIRID, p.ProgressText, p.EvidenceText, p.EvidencePhotos,
		p.WitnessInfo, p.OtherInfo, p.CulpritID, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return r.progressError(err, p.FIRID, "failed to save progress")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (r *PostgresRepository) progressError(err error, firID types.ID, msg string) error {
	if database.IsForeignKeyViolation(err) {
		return errors.NotFound("FIR", firID.String())
	}
	return errors.Wrap(err, msg)
}

// ListProgress returns entries newest first
func (r *PostgresRepository) ListProgress(ctx context.Context, firID types.ID) ([]domain.Progress, error) {
	query := `
		SELECT id, fir_id, progress_text, evidence_text, evidence_photos,
			witness_info, other_info, culprit_id, created_at
		FROM fir_progress
		WHERE fir_id = $1
		ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query, firID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list progress")
	}

	progress, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Progress, error) {
		var p domain.Progress
		err := row.Scan(
			&p.ID, &p.FIRID, &p.ProgressText, &p.EvidenceText, &p.EvidencePhotos,
			&p.WitnessInfo, &p.OtherInfo, &p.CulpritID, &p.CreatedAt,
		)
		return p, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan progress")
	}
	return progress, nil
}

// ListCulprits returns culprits in the order they were recorded
func (r *PostgresRepository) ListCulprits(ctx context.Context, firID types.ID) ([]domain.Culprit, error) {
	query := `
		SELECT id, fir_id, station_id, member_id, name, age, gender, address,
			identity_marks, custody_status, details, last_known_location, created_at
		FROM culprits
		WHERE fir_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, firID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list culprits")
	}

	culprits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Culprit, error) {
		var c domain.Culprit
		err := row.Scan(
			&c.ID, &c.FIRID, &c.StationID, &c.MemberID, &c.Name, &c.Age, &c.Gender, &c.Address,
			&c.IdentityMarks, &c.CustodyStatus, &c.Details, &c.LastKnownLocation, &c.CreatedAt,
		)
		return c, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan culprits")
	}
	return culprits, nil
}

// List lists FIRs with filters, newest first
func (r *PostgresRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.FIR, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StationID != nil {
		conditions = append(conditions, "f.station_id = "+arg(*filter.StationID))
	}
	if filter.Query != "" {
		p := arg(likePattern(filter.Query))
		conditions = append(conditions, fmt.Sprintf(
			"(f.fullname ILIKE %[1]s OR f.offence_type ILIKE %[1]s OR f.incident_location ILIKE %[1]s)", p))
	}
	if filter.Region != "" {
		conditions = append(conditions, "f.address ILIKE "+arg(likePattern(filter.Region)))
	}
	if filter.ComplainantID != "" {
		conditions = append(conditions, "TRIM(f.id_proof_value) = "+arg(filter.ComplainantID))
	}

	query := `SELECT ` + firColumns + ` FROM firs f`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY f.created_at DESC, f.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list FIRs")
	}

	firs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.FIR, error) {
		f, err := scanFIR(row)
		if err != nil {
			return domain.FIR{}, err
		}
		return *f, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan FIRs")
	}
	return firs, nil
}

func scanFIR(row pgx.Row) (*domain.FIR, error) {
	var (
		f     domain.FIR
		clock pgtype.Time
	)
	err := row.Scan(
		&f.ID, &f.Fullname, &f.Age, &f.Gender, &f.Address, &f.ContactNumber,
		&f.IDProofType, &f.IDProofValue, &f.IncidentDate.Time, &clock,
		&f.OffenceType, &f.IncidentLocation, &f.CaseNarrative,
		&f.StationID, &f.MemberID, &f.Status, &f.CreatedAt,
		&f.Snapshotted,
	)
	if err != nil {
		return nil, err
	}
	f.IncidentTime = domain.Clock(time.Duration(clock.Microseconds) * time.Microsecond)
	return &f, nil
}

func clockValue(c domain.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: time.Duration(c).Microseconds(), Valid: true}
}

// likePattern wraps s for a substring ILIKE, escaping the pattern
// metacharacters so user input matches literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

var _ domain.Repository = (*PostgresRepository)(nil)
