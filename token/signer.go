// Package token issues and verifies the signed, time-bounded tokens used by
// the auth service. Two signers are configured per deployment: one for
// short-lived access tokens and one for long-lived refresh tokens, each with
// its own secret and TTL. The secrets are never interchangeable: a token
// issued by one signer fails signature verification on the other.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrMalformedToken     = errors.New("malformed token")
	ErrMissingTokenClaims = errors.New("token missing required claims")
)

// Payload holds the identity claims embedded in both access and refresh
// tokens. Immutable once signed.
type Payload struct {
	Subject string // user ID
	Email   string
}

// Signer issues and verifies HMAC-signed JWTs with a fixed TTL.
type Signer struct {
	secret  []byte
	ttl     time.Duration
	nowTime func() time.Time
}

// SignerOption defines a function type to modify the Signer instance.
type SignerOption func(*Signer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SignerOption {
	return func(s *Signer) {
		s.nowTime = nowFunc
	}
}

// NewSigner creates a Signer for the given secret and token lifetime.
func NewSigner(secret string, ttl time.Duration, options ...SignerOption) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("[NewSigner] secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("[NewSigner] ttl must be positive")
	}

	signer := &Signer{
		secret:  []byte(secret),
		ttl:     ttl,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(signer)
	}

	return signer, nil
}

// TTL returns the configured token lifetime.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

// Issue produces a signed, self-contained token encoding the payload, an
// issued-at time, and an expiry computed from the signer's TTL.
func (s *Signer) Issue(payload Payload) (string, error) {
	now := s.nowTime()
	claims := tokenClaims{
		Email: payload.Email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   payload.Subject,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.New().String(), // Unique token ID so rotated tokens never collide
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("[Signer.Issue] failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns its payload.
// Expired tokens fail with ErrTokenExpired; tokens signed with a different
// secret (or algorithm) fail with ErrInvalidSignature. Both are rejections,
// the distinction aids logging.
func (s *Signer) Verify(rawToken string) (Payload, error) {
	var claims tokenClaims
	_, err := jwtlib.ParseWithClaims(rawToken, &claims,
		func(t *jwtlib.Token) (any, error) { return s.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.nowTime),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenExpired):
			return Payload{}, ErrTokenExpired
		case errors.Is(err, jwtlib.ErrTokenMalformed):
			return Payload{}, ErrMalformedToken
		default:
			return Payload{}, ErrInvalidSignature
		}
	}

	if claims.Subject == "" {
		return Payload{}, ErrMissingTokenClaims
	}

	return Payload{Subject: claims.Subject, Email: claims.Email}, nil
}
