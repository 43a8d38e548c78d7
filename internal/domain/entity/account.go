// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// Account is a registered user of the service, identified by a unique email.
type Account struct {
	ID           int64     // System-assigned identifier; never changes once created.
	Name         *string   // Optional display name. Nil when the account was created without one.
	Email        string    // Normalised (trimmed, lower-cased) email, unique across all accounts.
	PasswordHash string    // bcrypt digest. Stays between the repository and the hasher.
	CreatedAt    time.Time // Timestamp of when the account was registered.
}

// Identity returns the subset of the account that is embedded into session tokens.
func (a *Account) Identity() Identity {
	return Identity{ID: a.ID, Email: a.Email}
}

// Identity is the authenticated subject decoded from a verified session token.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
