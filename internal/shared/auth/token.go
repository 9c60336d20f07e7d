package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/digital-station/platform/internal/shared/config"
)

// Roles carried in the role claim.
const (
	RoleCitizen    = "citizen"
	RolePolice     = "police"
	RoleGovernment = "government"
)

// Claims is the token payload. Only the fields of the token's role are set.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`

	// police
	Name      string `json:"name,omitempty"`
	StationID *int64 `json:"station_id,omitempty"`

	// citizen
	CitizenID *int64 `json:"citizen_id,omitempty"`
	AadharNo  string `json:"aadhar_no,omitempty"`

	// government
	GovernmentMemberID *int64 `json:"government_member_id,omitempty"`
}

// TokenService issues and verifies HS256 tokens. It is built once from
// configuration and shared read-only by every request.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}, nil
}

// IssuePolice returns a token whose subject is the member id.
func (s *TokenService) IssuePolice(memberID, stationID int64, name string) (string, error) {
	return s.sign(Claims{
		RegisteredClaims: s.registered(strconv.FormatInt(memberID, 10)),
		Role:             RolePolice,
		Name:             name,
		StationID:        &stationID,
	})
}

func (s *TokenService) IssueCitizen(citizenID int64, aadharNo string) (string, error) {
	return s.sign(Claims{
		RegisteredClaims: s.registered(strconv.FormatInt(citizenID, 10)),
		Role:             RoleCitizen,
		CitizenID:        &citizenID,
		AadharNo:         aadharNo,
	})
}

func (s *TokenService) IssueGovernment(memberID int64) (string, error) {
	return s.sign(Claims{
		RegisteredClaims:   s.registered(strconv.FormatInt(memberID, 10)),
		Role:               RoleGovernment,
		GovernmentMemberID: &memberID,
	})
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// decoded claims. Role-specific claim checks are the caller's job.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *TokenService) registered(subject string) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
}

func (s *TokenService) sign(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
