package domain

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/digital-station/platform/internal/auth"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/events"
	"github.com/digital-station/platform/internal/shared/metrics"
	"github.com/digital-station/platform/internal/shared/types"
	"github.com/digital-station/platform/internal/shared/validate"
)

const eventSource = "fir"

// Registration is returned to the officer who registered an incident.
type Registration struct {
	Message          string   `json:"message"`
	ReportID         types.ID `json:"report_id"`
	RegisteredByID   int64    `json:"registered_by_id"`
	RegisteredByName string   `json:"registered_by_name"`
}

type CloseResult struct {
	Message       string `json:"message"`
	AlreadyClosed bool   `json:"-"`
}

// StationListing partitions a station's FIRs by effective status.
type StationListing struct {
	Active []Summary `json:"active"`
	Closed []Summary `json:"closed"`
	All    []Summary `json:"all"`
}

// Engine runs the FIR lifecycle: registration, progress, closure and the
// read views. It holds no state of its own between calls.
type Engine struct {
	repo      Repository
	publisher events.Publisher
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for timestamps and closure dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(repo Repository, publisher events.Publisher, opts ...Option) *Engine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	e := &Engine{
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterIncident creates a new active FIR. Station and member always come
// from the police principal.
func (e *Engine) RegisterIncident(ctx context.Context, p auth.Principal, in RegisterInput) (*Registration, error) {
	if err := requirePolice(p); err != nil {
		return nil, err
	}

	facts, err := in.Facts()
	if err != nil {
		return nil, err
	}

	f := NewFIR(facts, p.Police.MemberID, p.Police.StationID, e.now())
	if err := e.repo.Save(ctx, f); err != nil {
		return nil, err
	}

	metrics.RecordFIRRegistered(f.StationID)
	zap.S().Infow("fir registered",
		"fir_id", f.ID,
		"station_id", f.StationID,
		"member_id", f.MemberID,
	)
	e.publish(ctx, p, events.TypeFIRRegistered, f, map[string]any{
		"fir_id":       f.ID,
		"station_id":   f.StationID,
		"offence_type": f.OffenceType,
	})

	return &Registration{
		Message:          "Incident registered successfully",
		ReportID:         f.ID,
		RegisteredByID:   p.Police.MemberID,
		RegisteredByName: p.Police.Name,
	}, nil
}

// AddProgress appends an entry, creating a culprit first when one is named,
// and returns the FIR's full history newest first.
func (e *Engine) AddProgress(ctx context.Context, p auth.Principal, firID types.ID, in ProgressInput) ([]Progress, error) {
	if err := requirePolice(p); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	f, err := e.repo.FindByID(ctx, firID)
	if err != nil {
		return nil, err
	}

	entry := &Progress{
		FIRID:          f.ID,
		ProgressText:   in.ProgressText,
		EvidenceText:   in.EvidenceText,
		EvidencePhotos: in.EvidencePhotos,
		WitnessInfo:    in.WitnessInfo,
		OtherInfo:      in.OtherInfo,
		CreatedAt:      e.now(),
	}
	culprit := in.newCulprit(f, p.Police.MemberID)
	if culprit != nil {
		culprit.CreatedAt = entry.CreatedAt
	}

	if err := e.repo.AppendProgress(ctx, entry, culprit); err != nil {
		return nil, err
	}

	metrics.RecordProgressAdded(culprit != nil)
	e.publish(ctx, p, events.TypeFIRProgressAdded, f, map[string]any{
		"fir_id":      f.ID,
		"progress_id": entry.ID,
		"culprit_id":  entry.CulpritID,
	})

	return e.progress(ctx, f.ID)
}

// GetProgress returns the history newest first. Police may read any FIR; a
// citizen only one they are the complainant on.
func (e *Engine) GetProgress(ctx context.Context, p auth.Principal, firID types.ID) ([]Progress, error) {
	f, err := e.repo.FindByID(ctx, firID)
	if err != nil {
		return nil, err
	}
	if err := canView(p, f); err != nil {
		return nil, err
	}
	return e.progress(ctx, f.ID)
}

// CloseFIR archives a snapshot and flips the FIR to closed. Closing an
// already closed FIR succeeds without writing anything.
func (e *Engine) CloseFIR(ctx context.Context, p auth.Principal, firID types.ID) (*CloseResult, error) {
	if err := requirePolice(p); err != nil {
		return nil, err
	}

	closedOn := NewDate(e.now())
	var (
		closed   *FIR
		archived bool
	)
	err := e.repo.Close(ctx, firID, func(f *FIR) (*ClosedFIR, error) {
		snapshot, changed := f.Close(closedOn)
		if changed {
			closed = f
			archived = snapshot != nil
		}
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}

	if closed == nil {
		return &CloseResult{Message: "FIR already closed", AlreadyClosed: true}, nil
	}

	metrics.RecordFIRStatusChange(string(StatusActive), string(StatusClosed))
	zap.S().Infow("fir closed",
		"fir_id", closed.ID,
		"station_id", closed.StationID,
		"closed_by", p.Police.MemberID,
		"snapshot", archived,
	)
	e.publish(ctx, p, events.TypeFIRClosed, closed, map[string]any{
		"fir_id":    closed.ID,
		"closed_at": closedOn.String(),
	})

	return &CloseResult{Message: "FIR closed successfully"}, nil
}

// GetDetails is the full view: facts, status, progress newest first and
// every culprit.
func (e *Engine) GetDetails(ctx context.Context, firID types.ID) (*Details, error) {
	f, err := e.repo.FindByID(ctx, firID)
	if err != nil {
		return nil, err
	}
	return e.details(ctx, f)
}

// GetOwnedDetails is GetDetails for police or the FIR's own complainant.
func (e *Engine) GetOwnedDetails(ctx context.Context, p auth.Principal, firID types.ID) (*Details, error) {
	f, err := e.repo.FindByID(ctx, firID)
	if err != nil {
		return nil, err
	}
	if err := canView(p, f); err != nil {
		return nil, err
	}
	return e.details(ctx, f)
}

func (e *Engine) details(ctx context.Context, f *FIR) (*Details, error) {
	progress, err := e.progress(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	culprits, err := e.repo.ListCulprits(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.Status = f.EffectiveStatus()
	return &Details{FIR: f, Progress: progress, Culprits: nonNil(culprits)}, nil
}

func (e *Engine) progress(ctx context.Context, firID types.ID) ([]Progress, error) {
	entries, err := e.repo.ListProgress(ctx, firID)
	if err != nil {
		return nil, err
	}
	return nonNil(entries), nil
}

func (e *Engine) ListAll(ctx context.Context) ([]Summary, error) {
	return e.summaries(ctx, ListFilter{})
}

func (e *Engine) ListByStation(ctx context.Context, stationID int64) (*StationListing, error) {
	all, err := e.summaries(ctx, ListFilter{StationID: &stationID})
	if err != nil {
		return nil, err
	}

	listing := &StationListing{Active: []Summary{}, Closed: []Summary{}, All: all}
	for _, s := range all {
		if s.Status == StatusClosed {
			listing.Closed = append(listing.Closed, s)
		} else {
			listing.Active = append(listing.Active, s)
		}
	}
	return listing, nil
}

// Search matches q against fullname, offence type and location; an FIR
// matching any one of them is returned.
func (e *Engine) Search(ctx context.Context, q string) ([]Summary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.Validation("validation failed", map[string]string{"q": "field required"})
	}
	if !validate.Text(q) {
		return nil, errors.Validation("validation failed", map[string]string{"q": "invalid text"})
	}
	return e.summaries(ctx, ListFilter{Query: q})
}

// ListByCitizenIdentity lists the FIRs filed with aadhar as the complainant ID.
func (e *Engine) ListByCitizenIdentity(ctx context.Context, aadhar string) ([]Summary, error) {
	aadhar = auth.NormalizeIdentity(aadhar)
	if aadhar == "" {
		return []Summary{}, nil
	}
	return e.summaries(ctx, ListFilter{ComplainantID: aadhar})
}

// SearchByRegion lists FIRs whose complainant address mentions region.
func (e *Engine) SearchByRegion(ctx context.Context, region string) ([]FIR, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, errors.Validation("validation failed", map[string]string{"region": "field required"})
	}
	if !validate.Text(region) {
		return nil, errors.Validation("validation failed", map[string]string{"region": "invalid text"})
	}
	firs, err := e.repo.List(ctx, ListFilter{Region: region})
	if err != nil {
		return nil, err
	}
	for i := range firs {
		firs[i].Status = firs[i].EffectiveStatus()
	}
	return nonNil(firs), nil
}

// Lookup returns the FIR record alone, without progress or culprits.
func (e *Engine) Lookup(ctx context.Context, firID types.ID) (*FIR, error) {
	f, err := e.repo.FindByID(ctx, firID)
	if err != nil {
		return nil, err
	}
	f.Status = f.EffectiveStatus()
	return f, nil
}

func (e *Engine) summaries(ctx context.Context, filter ListFilter) ([]Summary, error) {
	firs, err := e.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(firs))
	for i := range firs {
		out = append(out, firs[i].Summary())
	}
	return out, nil
}

func (e *Engine) publish(ctx context.Context, p auth.Principal, eventType string, f *FIR, data map[string]any) {
	event := events.NewEvent(eventType, eventSource, f.ID.String(), data).
		WithActor(p.ActorID(), string(p.Kind), f.StationID)
	events.PublishBestEffort(ctx, e.publisher, event)
}

func requirePolice(p auth.Principal) error {
	if p.Kind != auth.KindPolice || p.Police == nil {
		return errors.Forbidden("Police access required")
	}
	return nil
}

// canView admits police and the citizen whose identity is the FIR's
// complainant ID.
func canView(p auth.Principal, f *FIR) error {
	switch p.Kind {
	case auth.KindPolice:
		return nil
	case auth.KindCitizen:
		if p.OwnsIdentity(f.ComplainantID()) {
			return nil
		}
	}
	metrics.RecordAuthorizationDecision("fir", "view", false)
	return errors.Forbidden("Not authorized to view this FIR")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
