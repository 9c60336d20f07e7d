package domain

import (
	"context"

	"github.com/digital-station/platform/internal/shared/types"
)

// Repository defines the interface for FIR persistence
type Repository interface {
	// FIR operations
	Save(ctx context.Context, f *FIR) error
	FindByID(ctx context.Context, id types.ID) (*FIR, error)

	// Close locks the FIR row, hands it to decide and, in the same
	// transaction, stores the returned snapshot (if any) and the FIR's new
	// status. decide runs at most once per call.
	Close(ctx context.Context, id types.ID, decide func(f *FIR) (*ClosedFIR, error)) error

	// Progress operations. The culprit, when non-nil, is inserted first and
	// its id is set on the progress entry; both commit together.
	AppendProgress(ctx context.Context, p *Progress, c *Culprit) error
	ListProgress(ctx context.Context, firID types.ID) ([]Progress, error)
	ListCulprits(ctx context.Context, firID types.ID) ([]Culprit, error)

	// Query operations
	List(ctx context.Context, filter ListFilter) ([]FIR, error)
}

// ListFilter narrows List. Zero fields are ignored; set fields combine with AND.
// Results are ordered newest first.
type ListFilter struct {
	StationID *int64
	// Query matches fullname, offence_type or incident_location, case-insensitively.
	Query string
	// Region matches the complainant address, case-insensitively.
	Region string
	// ComplainantID matches id_proof_value exactly after trimming.
	ComplainantID string
}
