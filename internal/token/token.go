// Package token issues and verifies the two token classes the API uses:
// short-lived HS256 access tokens carrying identity claims and long-lived
// refresh tokens carrying only the subject. The classes are signed with
// distinct secrets, so neither can ever be verified as the other. Nothing
// is persisted; a token stops being valid only by expiry or signature
// mismatch.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly
	// signed but is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed tokens, wrong signatures and
	// wrong signing methods.
	ErrTokenInvalid = errors.New("token invalid")
)

// Config carries the signing material, loaded once at startup and injected
// here rather than read from the environment ad hoc.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Claims is the payload embedded in access tokens. Refresh tokens reuse
// the type but carry only the registered subject.
type Claims struct {
	Email string `json:"email,omitempty"`
	Plan  string `json:"plan,omitempty"`
	jwt.RegisteredClaims
}

// Service mints and verifies tokens. Verification is pure and safe under
// concurrent use.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service { return &Service{cfg: cfg} }

// IssueAccess signs an access token for the given identity and returns the
// serialized token with its expiry.
func (s *Service) IssueAccess(userID, email, plan string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(s.cfg.AccessTTL)
	claims := Claims{
		Email: email,
		Plan:  plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh signs a subject-only refresh token with the refresh secret.
func (s *Service) IssueRefresh(userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(s.cfg.RefreshTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *Service) VerifyAccess(raw string) (*Claims, error) {
	return verify(raw, s.cfg.AccessSecret)
}

// VerifyRefresh validates a refresh token and returns the subject it is
// bound to. Any email/plan a forged token might embed is discarded.
func (s *Service) VerifyRefresh(raw string) (string, error) {
	claims, err := verify(raw, s.cfg.RefreshSecret)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func verify(raw, secret string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}
