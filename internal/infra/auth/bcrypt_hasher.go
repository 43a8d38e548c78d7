// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"context"
	"runtime"
	"unicode/utf8"

	"passgate/config"
	domainerrors "passgate/internal/domain/errors"
	"passgate/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultBcryptCost is the work factor used when the configuration does not set a valid one.
	DefaultBcryptCost = 10

	minPasswordLength = 8
	// bcrypt only reads the first 72 bytes of its input.
	maxPasswordBytes = 72
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
// Hashing and comparison run on a bounded pool so that bursts of signups and
// logins cannot monopolise every CPU.
type bcryptHasher struct {
	cost int
	pool *semaphore.Weighted
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := DefaultBcryptCost
	concurrency := 0
	if cfg != nil && cfg.Auth != nil {
		cost = cfg.Auth.BcryptCost
		concurrency = cfg.Auth.HashConcurrency
	}

	return NewBcryptHasherWithCost(cost, concurrency)
}

// NewBcryptHasherWithCost creates a hasher with an explicit work factor and pool size.
// An out-of-range cost falls back to DefaultBcryptCost; a non-positive
// concurrency uses GOMAXPROCS.
func NewBcryptHasherWithCost(cost, concurrency int) service.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	return &bcryptHasher{
		cost: cost,
		pool: semaphore.NewWeighted(int64(concurrency)),
	}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt generates a fresh salt per call and embeds it, with the cost, in the digest.
func (h *bcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return "", errors.Wrap(err, "failed to acquire hashing slot")
	}
	defer h.pool.Release(1)

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(ctx context.Context, password, hash string) (bool, error) {
	if password == "" || hash == "" {
		return false, nil
	}
	if err := h.pool.Acquire(ctx, 1); err != nil {
		return false, errors.Wrap(err, "failed to acquire hashing slot")
	}
	defer h.pool.Release(1)

	// err is nil if the password and hash match.
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// ValidatePassword checks the password against the length policy.
func (h *bcryptHasher) ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return domainerrors.ErrPasswordPolicy.WithDetails("password must be at least 8 characters long")
	}
	if len(password) > maxPasswordBytes {
		return domainerrors.ErrPasswordPolicy.WithDetails("password must be at most 72 bytes long")
	}

	return nil
}
