// Package account holds the three principal kinds that can sign in: citizens,
// police members and government members. Each has its own credential pair and
// its own token endpoint.
package account

import "time"

// Citizen is keyed by the national ID (aadhar) string, stored trimmed.
type Citizen struct {
	ID           int64     `json:"citizen_id"`
	AadharNo     string    `json:"aadhar_no"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PoliceMember is keyed by (station_id, member_id).
type PoliceMember struct {
	MemberID     int64     `json:"member_id"`
	StationID    int64     `json:"station_id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// GovernmentMember is keyed by the externally assigned member id.
type GovernmentMember struct {
	ID           int64     `json:"-"`
	MemberID     int64     `json:"government_member_id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// --- Requests ---

type CitizenCredentials struct {
	AadharNo string `json:"aadhar_no" validate:"text,min=4,max=64"`
	Password string `json:"password" validate:"text,max=255"`
}

type CreatePoliceMemberRequest struct {
	Name      string `json:"name" validate:"notblank,max=255"`
	Password  string `json:"password" validate:"notblank,max=255"`
	StationID int64  `json:"station_id" validate:"required,gt=0"`
}

type PoliceCredentials struct {
	StationID int64  `json:"station_id" validate:"required,gt=0"`
	MemberID  int64  `json:"member_id" validate:"required,gt=0"`
	Password  string `json:"password" validate:"notblank,max=255"`
}

type GovernmentCredentials struct {
	MemberID int64  `json:"government_member_id" validate:"required,gt=0"`
	Password string `json:"password" validate:"notblank,max=255"`
}

// --- Responses ---

type CitizenCreated struct {
	Message   string `json:"message"`
	CitizenID int64  `json:"citizen_id"`
}

type PoliceMemberCreated struct {
	Message  string `json:"message"`
	MemberID int64  `json:"member_id"`
}

type Message struct {
	Message string `json:"message"`
}

const tokenType = "bearer"

type CitizenToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	CitizenID   int64  `json:"citizen_id"`
	AadharNo    string `json:"aadhar_no"`
}

type PoliceToken struct {
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
	PoliceMemberID int64  `json:"police_member_id"`
	StationID      int64  `json:"station_id"`
	Name           string `json:"name"`
}

type GovernmentToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RosterEntry is one line of a station's member list.
type RosterEntry struct {
	Name string `json:"name"`
}
