package seed

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the password policy applied to every seeded account.
// It is injected from config so demo and production secrets never mix.
type Credentials struct {
	Password string
	Cost     int
}

var ErrNoSeedPassword = errors.New("seed password is not configured")

// Hash returns the bcrypt hash of the shared demo password.
func (c Credentials) Hash() (string, error) {
	if c.Password == "" {
		return "", ErrNoSeedPassword
	}
	cost := c.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
