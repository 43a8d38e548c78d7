// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strconv"
	"strings"
	"time"

	"passgate/config"
	"passgate/internal/domain/entity"
	domainerrors "passgate/internal/domain/errors"
	"passgate/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// DefaultTokenTTL is the lifetime of a session token when none is configured.
	DefaultTokenTTL = time.Hour

	defaultIssuer = "passgate"
)

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
// The secret is read once at construction and never changes afterwards.
type jwtService struct {
	secret []byte           // Symmetric key for signing and verifying tokens.
	ttl    time.Duration    // Default time-to-live for issued tokens.
	issuer string           // Value of the "iss" claim, checked on verification.
	now    func() time.Time // Clock, replaceable in tests.
}

// JWTOption customises a jwtService.
type JWTOption func(*jwtService)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) JWTOption {
	return func(s *jwtService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewJWTService is the constructor for jwtService.
// It fails when no signing secret is configured so that the process refuses to start.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil {
		return nil, errors.New("jwt configuration must be provided")
	}

	ttl := DefaultTokenTTL
	issuer := defaultIssuer
	if cfg.Auth != nil {
		if cfg.Auth.TokenTTL > 0 {
			ttl = cfg.Auth.TokenTTL
		}
		if cfg.Auth.Issuer != "" {
			issuer = cfg.Auth.Issuer
		}
	}

	return NewJWTServiceWithSecret(cfg.SecretKey.Access, ttl, issuer)
}

// NewJWTServiceWithSecret builds a token service from explicit settings.
func NewJWTServiceWithSecret(secret string, ttl time.Duration, issuer string, opts ...JWTOption) (service.TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if issuer == "" {
		issuer = defaultIssuer
	}

	svc := &jwtService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Issue creates a signed token for the identity.
func (s *jwtService) Issue(identity entity.Identity, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	claims := service.Claims{
		AccountID: identity.ID,
		Email:     identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign token")
	}

	// The exp claim has second precision; report what the token actually carries.
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks the signature first and the expiry second.
func (s *jwtService) Verify(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(domainerrors.ErrTokenExpired, "failed to verify token")
		}

		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, err.Error())
	}

	if claims.AccountID == 0 || claims.Email == "" {
		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, "token is missing identity claims")
	}

	return claims, nil
}

// DefaultTTL returns the configured duration for session tokens.
func (s *jwtService) DefaultTTL() time.Duration {
	return s.ttl
}
