// Package escalation records citizen complaints about FIR handling and lets
// government members moderate them.
package escalation

import (
	"strings"
	"time"

	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/types"
)

// Status of an escalation. Any status may move to any other.
type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in_review"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

// filterAll is the list filter that disables status filtering.
const filterAll = "all"

var statuses = []Status{StatusPending, StatusInReview, StatusResolved, StatusRejected}

// ParseStatus accepts exactly one of the four stored statuses.
func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if s == string(st) {
			return st, nil
		}
	}
	return "", errors.Validation("validation failed", map[string]string{
		"new_status": "must be one of: pending in_review resolved rejected",
	})
}

// ParseFilter turns the status query parameter into a filter. Blank means
// pending, "all" means no filter.
func ParseFilter(s string) (*Status, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		st := StatusPending
		return &st, nil
	case filterAll:
		return nil, nil
	}
	for _, st := range statuses {
		if s == string(st) {
			return &st, nil
		}
	}
	return nil, errors.Validation("validation failed", map[string]string{
		"status": "must be one of: pending in_review resolved rejected all",
	})
}

// Escalation is one citizen's complaint about one FIR. There is at most one
// per (FIR, aadhar) pair.
type Escalation struct {
	ID        int64     `json:"id"`
	FIRID     types.ID  `json:"fir_id"`
	CitizenID *int64    `json:"citizen_id"`
	AadharNo  string    `json:"aadhar_no"`
	Reason    string    `json:"reason"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record is what the citizen gets back after escalating.
type Record struct {
	FIRID    types.ID `json:"fir_id"`
	AadharNo string   `json:"aadhar_no"`
	Reason   string   `json:"reason"`
}

type EscalateInput struct {
	FIRID  string `json:"fir_id" validate:"notblank,max=64"`
	Reason string `json:"reason" validate:"notblank,max=2000"`
}
