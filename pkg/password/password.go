// Package password provides one-way hashing and verification of user
// passwords on top of bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when an empty clear-text password is
// offered for hashing.
var ErrEmptyPassword = errors.New("password must not be empty")

// Hasher hashes and verifies passwords with a tunable bcrypt cost.
// bcrypt embeds a fresh salt in every hash, so hashing the same input
// twice yields different stored values.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost. Costs outside
// the valid bcrypt range fall back to the default cost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of the clear-text password. The empty
// string is rejected so a blank field can never be persisted as a valid
// credential.
func (h *Hasher) Hash(clear string) (string, error) {
	if clear == "" {
		return "", ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(clear), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether clear matches hashed. A mismatch is a normal
// false return, never an error.
func (h *Hasher) Verify(clear, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(clear)) == nil
}
