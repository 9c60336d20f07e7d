package escalation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digital-station/platform/internal/shared/database"
	"github.com/digital-station/platform/internal/shared/errors"
)

// Store persists escalations.
type Store interface {
	// Upsert inserts e as pending, or replaces the reason of the existing
	// escalation for (e.FIRID, e.AadharNo). It fills in the stored row and
	// reports whether a new row was created.
	Upsert(ctx context.Context, e *Escalation) (created bool, err error)
	List(ctx context.Context, status *Status) ([]Escalation, error)
	// UpdateStatus overwrites the status and returns the row together with
	// the status it had before.
	UpdateStatus(ctx context.Context, id int64, status Status) (*Escalation, Status, error)
}

// Repository provides database operations for escalations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new escalation repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, fir_id, citizen_id, aadhar_no, reason, status, created_at, updated_at`

// Upsert is a single conditional write, so two concurrent submissions for
// the same pair end as one row.
func (r *Repository) Upsert(ctx context.Context, e *Escalation) (bool, error) {
	query := `
		INSERT INTO escalations (fir_id, citizen_id, aadhar_no, reason, status)
		VALUES ($1, $2, $3, $4, 'pending')
		ON CONFLICT (fir_id, aadhar_no)
		DO UPDATE SET reason = EXCLUDED.reason, updated_at = NOW()
		RETURNING ` + columns + `, (xmax = 0) AS inserted`

	var created bool
	err := r.pool.QueryRow(ctx, query, e.FIRID, e.CitizenID, e.AadharNo, e.Reason).Scan(
		&e.ID, &e.FIRID, &e.CitizenID, &e.AadharNo, &e.Reason, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		&created,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err, "escalations_fir_id_fkey") {
			return false, errors.NotFound("FIR", e.FIRID.String())
		}
		return false, errors.Wrap(err, "failed to upsert escalation")
	}
	return created, nil
}

// List lists escalations newest first, optionally filtered by status
func (r *Repository) List(ctx context.Context, status *Status) ([]Escalation, error) {
	query := `SELECT ` + columns + ` FROM escalations`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list escalations")
	}

	list, err := pgx.CollectRows(rows, scanEscalation)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan escalations")
	}
	return list, nil
}

// UpdateStatus locks the row so the previous status it reports is the one
// this update replaced.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) (*Escalation, Status, error) {
	query := `
		WITH prev AS (
			SELECT id, status FROM escalations WHERE id = $1 FOR UPDATE
		)
		UPDATE escalations e
		SET status = $2, updated_at = NOW()
		FROM prev
		WHERE e.id = prev.id
		RETURNING e.id, e.fir_id, e.citizen_id, e.aadhar_no, e.reason, e.status,
			e.created_at, e.updated_at, prev.status`

	var (
		e        Escalation
		previous Status
	)
	err := r.pool.QueryRow(ctx, query, id, status).Scan(
		&e.ID, &e.FIRID, &e.CitizenID, &e.AadharNo, &e.Reason, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		&previous,
	)
	if database.IsNoRows(err) {
		return nil, "", errors.NotFound("Escalation", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, "", errors.Wrap(err, fmt.Sprintf("failed to update escalation %d", id))
	}
	return &e, previous, nil
}

func scanEscalation(row pgx.CollectableRow) (Escalation, error) {
	var e Escalation
	err := row.Scan(&e.ID, &e.FIRID, &e.CitizenID, &e.AadharNo, &e.Reason, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

var _ Store = (*Repository)(nil)
