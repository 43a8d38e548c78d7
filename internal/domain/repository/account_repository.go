// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"passgate/internal/domain/entity"

	"github.com/pkg/errors"
)

var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountConflict is returned by Create when another account already holds the email.
	ErrAccountConflict = errors.New("account email already in use")
)

// AccountRepository defines the persistence operations for accounts.
// Accounts are keyed by their normalised email.
type AccountRepository interface {
	// FindByEmail retrieves an account by exact email match.
	// Returns ErrAccountNotFound when there is none.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Create inserts the account and fills in its ID and CreatedAt.
	// The insert is atomic against the unique email constraint: when the email
	// is already taken, nothing is written and ErrAccountConflict is returned.
	Create(ctx context.Context, account *entity.Account) error
}
