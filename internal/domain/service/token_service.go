package service

import (
	"time"

	"passgate/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the custom claims for session tokens.
type Claims struct {
	AccountID int64  `json:"id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the authenticated subject carried by the claims.
func (c *Claims) Identity() entity.Identity {
	return entity.Identity{ID: c.AccountID, Email: c.Email}
}

// TokenService issues and verifies signed, time-limited session tokens.
type TokenService interface {
	// Issue signs a token for the identity that expires ttl after issuance.
	// A non-positive ttl selects DefaultTTL.
	Issue(identity entity.Identity, ttl time.Duration) (token string, expiresAt time.Time, err error)

	// Verify checks the signature and expiry of a token.
	// It fails with domain ErrTokenInvalid or ErrTokenExpired.
	Verify(token string) (*Claims, error)

	// DefaultTTL returns the configured lifetime of issued tokens.
	DefaultTTL() time.Duration
}
