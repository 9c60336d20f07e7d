package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/digital-station/platform/internal/auth"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/types"
	"github.com/digital-station/platform/internal/shared/validate"
)

// Status of an FIR. The zero value is never stored: NewFIR sets StatusActive.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(time.DateOnly) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// Clock is a time of day, stored as the offset from midnight and serialized
// as HH:MM:SS.
type Clock time.Duration

func NewClock(hour, minute, second int) Clock {
	return Clock(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

func (c Clock) String() string {
	d := time.Duration(c)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// Facts are the complainant and incident details recorded at registration.
// They never change afterwards.
type Facts struct {
	Fullname         string  `json:"fullname"`
	Age              int     `json:"age"`
	Gender           string  `json:"gender"`
	Address          string  `json:"address"`
	ContactNumber    string  `json:"contact_number"`
	IDProofType      string  `json:"id_proof_type"`
	IDProofValue     *string `json:"id_proof_value"`
	IncidentDate     Date    `json:"incident_date"`
	IncidentTime     Clock   `json:"incident_time"`
	OffenceType      string  `json:"offence_type"`
	IncidentLocation string  `json:"incident_location"`
	CaseNarrative    string  `json:"case_narrative"`
}

// ComplainantID is the complainant's national-ID string, normalized.
func (f Facts) ComplainantID() string {
	if f.IDProofValue == nil {
		return ""
	}
	return auth.NormalizeIdentity(*f.IDProofValue)
}

// RegisterInput is the client-supplied form of Facts.
type RegisterInput struct {
	Fullname         string  `json:"fullname" validate:"notblank,max=255"`
	Age              *int    `json:"age" validate:"required,gte=0,lte=150"`
	Gender           string  `json:"gender" validate:"notblank,max=32"`
	Address          string  `json:"address" validate:"notblank"`
	ContactNumber    string  `json:"contact_number" validate:"notblank,max=32"`
	IDProofType      string  `json:"id_proof_type" validate:"notblank,max=64"`
	IDProofValue     *string `json:"id_proof_value" validate:"omitempty,text,max=64"`
	IncidentDate     string  `json:"incident_date" validate:"isodate"`
	IncidentTime     string  `json:"incident_time" validate:"clock"`
	OffenceType      string  `json:"offence_type" validate:"notblank,max=128"`
	IncidentLocation string  `json:"incident_location" validate:"notblank"`
	CaseNarrative    string  `json:"case_narrative" validate:"notblank"`
}

// Facts validates the input and converts it. Errors are 422 AppErrors with
// one entry per failing field.
func (in RegisterInput) Facts() (Facts, error) {
	if err := validate.Struct(in); err != nil {
		return Facts{}, err
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(in.IncidentDate))
	if err != nil {
		return Facts{}, errors.Validation("validation failed", map[string]string{"incident_date": "invalid date, expected YYYY-MM-DD"})
	}
	clock, err := validate.ParseClock(in.IncidentTime)
	if err != nil {
		return Facts{}, errors.Validation("validation failed", map[string]string{"incident_time": "invalid time, expected HH:MM or HH:MM:SS"})
	}

	var idProof *string
	if in.IDProofValue != nil {
		v := auth.NormalizeIdentity(*in.IDProofValue)
		idProof = &v
	}

	return Facts{
		Fullname:         strings.TrimSpace(in.Fullname),
		Age:              *in.Age,
		Gender:           strings.TrimSpace(in.Gender),
		Address:          strings.TrimSpace(in.Address),
		ContactNumber:    strings.TrimSpace(in.ContactNumber),
		IDProofType:      strings.TrimSpace(in.IDProofType),
		IDProofValue:     idProof,
		IncidentDate:     NewDate(date),
		IncidentTime:     NewClock(clock.Hour(), clock.Minute(), clock.Second()),
		OffenceType:      strings.TrimSpace(in.OffenceType),
		IncidentLocation: strings.TrimSpace(in.IncidentLocation),
		CaseNarrative:    strings.TrimSpace(in.CaseNarrative),
	}, nil
}

// FIR is the aggregate root of the case lifecycle.
type FIR struct {
	ID types.ID `json:"fir_id"`
	Facts
	StationID int64     `json:"station_id"`
	MemberID  int64     `json:"member_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Snapshotted is set by the store when a ClosedFIR row exists.
	Snapshotted bool `json:"-"`
}

// NewFIR creates an active FIR owned by the registering officer's station.
func NewFIR(facts Facts, memberID, stationID int64, now time.Time) *FIR {
	return &FIR{
		ID:        types.NewID(),
		Facts:     facts,
		StationID: stationID,
		MemberID:  memberID,
		Status:    StatusActive,
		CreatedAt: now,
	}
}

// EffectiveStatus is closed when either the live row says so or a closure
// snapshot exists.
func (f *FIR) EffectiveStatus() Status {
	if f.Status == StatusClosed || f.Snapshotted {
		return StatusClosed
	}
	return StatusActive
}

// Close flips the FIR to closed and returns the snapshot to archive. A FIR
// that is already closed yields (nil, false). A FIR with a snapshot but a
// stale active status is flipped without a second snapshot.
func (f *FIR) Close(closedOn Date) (*ClosedFIR, bool) {
	if f.Status == StatusClosed {
		return nil, false
	}
	f.Status = StatusClosed
	if f.Snapshotted {
		return nil, true
	}
	f.Snapshotted = true
	return &ClosedFIR{
		FIRID:     f.ID,
		Facts:     f.Facts,
		StationID: f.StationID,
		MemberID:  f.MemberID,
		ClosedAt:  closedOn,
	}, true
}

// ClosedFIR is the immutable copy of an FIR taken when it is closed.
type ClosedFIR struct {
	FIRID types.ID `json:"fir_id"`
	Facts
	StationID int64 `json:"station_id"`
	MemberID  int64 `json:"member_id"`
	ClosedAt  Date  `json:"closed_at"`
}

// Progress is one append-only investigation entry.
type Progress struct {
	ID             int64     `json:"id"`
	FIRID          types.ID  `json:"-"`
	ProgressText   *string   `json:"progress_text"`
	EvidenceText   *string   `json:"evidence_text"`
	EvidencePhotos *string   `json:"evidence_photos"`
	WitnessInfo    *string   `json:"witness_info"`
	OtherInfo      *string   `json:"other_info"`
	CulpritID      *int64    `json:"culprit_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Culprit is a suspect recorded while adding progress.
type Culprit struct {
	ID                int64     `json:"id"`
	FIRID             types.ID  `json:"-"`
	StationID         int64     `json:"-"`
	MemberID          int64     `json:"-"`
	Name              string    `json:"name"`
	Age               *int      `json:"age"`
	Gender            *string   `json:"gender"`
	Address           *string   `json:"address"`
	IdentityMarks     *string   `json:"identity_marks"`
	CustodyStatus     *string   `json:"custody_status"`
	Details           *string   `json:"details"`
	LastKnownLocation *string   `json:"last_known_location"`
	CreatedAt         time.Time `json:"-"`
}

type ProgressInput struct {
	ProgressText   *string       `json:"progress_text" validate:"omitempty,text"`
	EvidenceText   *string       `json:"evidence_text" validate:"omitempty,text"`
	EvidencePhotos *string       `json:"evidence_photos" validate:"omitempty,text"`
	WitnessInfo    *string       `json:"witness_info" validate:"omitempty,text"`
	OtherInfo      *string       `json:"other_info" validate:"omitempty,text"`
	Culprit        *CulpritInput `json:"culprit,omitempty"`
}

type CulpritInput struct {
	Name              string  `json:"name" validate:"omitempty,text"`
	Age               *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender            *string `json:"gender" validate:"omitempty,text"`
	Address           *string `json:"address" validate:"omitempty,text"`
	IdentityMarks     *string `json:"identity_marks" validate:"omitempty,text"`
	CustodyStatus     *string `json:"custody_status" validate:"omitempty,text"`
	Details           *string `json:"details" validate:"omitempty,text"`
	LastKnownLocation *string `json:"last_known_location" validate:"omitempty,text"`
}

// newCulprit builds the culprit row for an entry, or nil when no culprit name
// was supplied. Station comes from the FIR, member from the recording officer.
func (in ProgressInput) newCulprit(f *FIR, memberID int64) *Culprit {
	if in.Culprit == nil || strings.TrimSpace(in.Culprit.Name) == "" {
		return nil
	}
	c := in.Culprit
	return &Culprit{
		FIRID:             f.ID,
		StationID:         f.StationID,
		MemberID:          memberID,
		Name:              strings.TrimSpace(c.Name),
		Age:               c.Age,
		Gender:            c.Gender,
		Address:           c.Address,
		IdentityMarks:     c.IdentityMarks,
		CustodyStatus:     c.CustodyStatus,
		Details:           c.Details,
		LastKnownLocation: c.LastKnownLocation,
	}
}

// Summary is the projection used by every list view.
type Summary struct {
	FIRID            types.ID `json:"fir_id"`
	Fullname         string   `json:"fullname"`
	OffenceType      string   `json:"offence_type"`
	IncidentLocation string   `json:"incident_location"`
	Status           Status   `json:"status"`
	IncidentDate     Date     `json:"incident_date"`
	StationID        int64    `json:"station_id"`
}

func (f *FIR) Summary() Summary {
	return Summary{
		FIRID:            f.ID,
		Fullname:         f.Fullname,
		OffenceType:      f.OffenceType,
		IncidentLocation: f.IncidentLocation,
		Status:           f.EffectiveStatus(),
		IncidentDate:     f.IncidentDate,
		StationID:        f.StationID,
	}
}

// Details is the full view of one FIR.
type Details struct {
	*FIR
	Progress []Progress `json:"progress"`
	Culprits []Culprit  `json:"culprits"`
}
