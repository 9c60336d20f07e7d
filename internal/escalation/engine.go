package escalation

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/digital-station/platform/internal/auth"
	"github.com/digital-station/platform/internal/fir/domain"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/events"
	"github.com/digital-station/platform/internal/shared/metrics"
	"github.com/digital-station/platform/internal/shared/types"
	"github.com/digital-station/platform/internal/shared/validate"
)

const eventSource = "escalation"

// FIRFinder is the part of the FIR store the engine reads.
type FIRFinder interface {
	FindByID(ctx context.Context, id types.ID) (*domain.FIR, error)
}

type Engine struct {
	store     Store
	firs      FIRFinder
	publisher events.Publisher
}

func NewEngine(store Store, firs FIRFinder, publisher events.Publisher) *Engine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Engine{store: store, firs: firs, publisher: publisher}
}

// Escalate files or refreshes the citizen's escalation on an FIR they are the
// complainant of. A repeat submission replaces the reason and keeps the
// status.
func (e *Engine) Escalate(ctx context.Context, p auth.Principal, in EscalateInput) (*Record, error) {
	if p.Kind != auth.KindCitizen || p.Citizen == nil {
		return nil, errors.Forbidden("Citizen access required")
	}

	in.FIRID = strings.TrimSpace(in.FIRID)
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validate.Struct(in); err != nil {
		return nil, errors.Validation("fir_id and reason are required", errors.From(err).Details)
	}

	id, err := types.ParseID(in.FIRID)
	if err != nil {
		return nil, errors.NotFound("FIR", in.FIRID)
	}
	f, err := e.firs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnsIdentity(f.ComplainantID()) {
		metrics.RecordAuthorizationDecision("escalation", "submit", false)
		return nil, errors.Forbidden("You are not authorized to escalate this FIR")
	}

	esc := &Escalation{
		FIRID:     f.ID,
		CitizenID: &p.Citizen.CitizenID,
		AadharNo:  p.Citizen.AadharNo,
		Reason:    in.Reason,
	}
	created, err := e.store.Upsert(ctx, esc)
	if err != nil {
		return nil, err
	}

	metrics.RecordEscalationSubmitted(created)
	zap.S().Infow("escalation submitted",
		"escalation_id", esc.ID,
		"fir_id", esc.FIRID,
		"created", created,
	)
	e.publish(ctx, p, events.TypeEscalationSubmitted, esc, f.StationID, map[string]any{
		"escalation_id": esc.ID,
		"fir_id":        esc.FIRID,
		"created":       created,
	})

	return &Record{FIRID: esc.FIRID, AadharNo: esc.AadharNo, Reason: esc.Reason}, nil
}

// List returns escalations newest first. status is a raw filter value, see
// ParseFilter.
func (e *Engine) List(ctx context.Context, status string) ([]Escalation, error) {
	filter, err := ParseFilter(status)
	if err != nil {
		return nil, err
	}
	list, err := e.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Escalation{}
	}
	return list, nil
}

// UpdateStatus moves an escalation to newStatus. There is no transition
// table; any status can follow any other.
func (e *Engine) UpdateStatus(ctx context.Context, p auth.Principal, id int64, newStatus string) (*Escalation, error) {
	if p.Kind != auth.KindGovernment {
		return nil, errors.Forbidden("Government access required")
	}
	if id <= 0 {
		return nil, errors.Validation("validation failed", map[string]string{"id": "must be greater than 0"})
	}
	status, err := ParseStatus(strings.TrimSpace(newStatus))
	if err != nil {
		return nil, err
	}

	esc, previous, err := e.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	metrics.RecordEscalationStatusChange(string(status))
	zap.S().Infow("escalation status changed",
		"escalation_id", esc.ID,
		"from", previous,
		"to", esc.Status,
		"by", p.ActorID(),
	)
	e.publish(ctx, p, events.TypeEscalationStatusChanged, esc, 0, map[string]any{
		"escalation_id": esc.ID,
		"fir_id":        esc.FIRID,
		"from":          previous,
		"to":            esc.Status,
	})

	return esc, nil
}

func (e *Engine) publish(ctx context.Context, p auth.Principal, eventType string, esc *Escalation, stationID int64, data map[string]any) {
	event := events.NewEvent(eventType, eventSource, strconv.FormatInt(esc.ID, 10), data).
		WithActor(p.ActorID(), string(p.Kind), stationID)
	events.PublishBestEffort(ctx, e.publisher, event)
}
