// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "context"

// PasswordHasher defines the interface for password hashing and verification.
// Digests are self-describing: they embed their salt and work factor, so the
// configured cost can change without invalidating existing digests.
type PasswordHasher interface {
	// Hash generates a freshly salted digest from a plaintext password.
	Hash(ctx context.Context, password string) (string, error)

	// Check reports whether the plaintext matches the digest.
	// A malformed digest is a mismatch, not an error. An error is returned only
	// when the comparison could not run, for example because ctx is done.
	Check(ctx context.Context, password, hash string) (bool, error)

	// ValidatePassword enforces the password length policy applied at signup.
	ValidatePassword(password string) error
}
