package tokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates the two credential classes. A refresh token is never
// accepted where an access token is required, and vice versa.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const kindClaim = "token_kind"

// Claims is the validated content of a verified token.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Clock abstracts current time for deterministic expiry tests.
type Clock interface {
	Now() time.Time
}

// Config carries the process-wide signing material. The secret is read once at
// startup and is immutable for the process lifetime.
type Config struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service issues and verifies signed, expiring tokens. Issuance and
// verification are pure computations with no I/O.
type Service struct {
	config Config
	clock  Clock
}

func NewService(config Config, clock Clock) (*Service, error) {
	if len(config.Secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	if strings.TrimSpace(config.Issuer) == "" {
		config.Issuer = "loanbook"
	}
	if config.AccessTTL <= 0 {
		config.AccessTTL = 15 * time.Minute
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Service{config: config, clock: clock}, nil
}

// IssueAccess mints a short-lived token carrying subject, email and role.
func (s *Service) IssueAccess(subject string, email string, role string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":     subject,
		"email":   email,
		"role":    role,
		"iss":     s.config.Issuer,
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(s.config.AccessTTL)),
		kindClaim: string(KindAccess),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
}

// IssueRefresh mints a long-lived token carrying the subject only.
func (s *Service) IssueRefresh(subject string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":     subject,
		"iss":     s.config.Issuer,
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(s.config.RefreshTTL)),
		kindClaim: string(KindRefresh),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
}

// VerifyAccess validates an access token. The boolean collapses every failure
// mode (bad signature, malformed envelope, expiry, wrong kind) into a single
// outcome so callers cannot leak the sub-cause.
func (s *Service) VerifyAccess(raw string) (Claims, bool) {
	return s.verify(raw, KindAccess)
}

// VerifyRefresh validates a refresh token.
func (s *Service) VerifyRefresh(raw string) (Claims, bool) {
	return s.verify(raw, KindRefresh)
}

func (s *Service) verify(raw string, expected Kind) (Claims, bool) {
	parsed, err := jwt.Parse(
		strings.TrimSpace(raw),
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
			}
			return s.config.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, false
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, false
	}
	kind, _ := mapClaims[kindClaim].(string)
	if Kind(kind) != expected {
		return Claims{}, false
	}
	subject, _ := mapClaims["sub"].(string)
	if subject == "" {
		return Claims{}, false
	}

	claims := Claims{
		Subject: subject,
		Kind:    expected,
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if issuedAt, err := mapClaims.GetIssuedAt(); err == nil && issuedAt != nil {
		claims.IssuedAt = issuedAt.Time
	}
	if expiresAt, err := mapClaims.GetExpirationTime(); err == nil && expiresAt != nil {
		claims.ExpiresAt = expiresAt.Time
	}
	return claims, true
}

func (s *Service) now() time.Time {
	if s.clock != nil {
		return s.clock.Now().UTC()
	}
	return time.Now().UTC()
}
