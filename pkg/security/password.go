package security

import (
	"license-tracker/pkg/config"

	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
)

var Module = fx.Module("security", fx.Provide(ProvideHasher))

// Hasher hashes credentials one way and verifies supplied passwords against
// the stored hash.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(stored, supplied string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func ProvideHasher(cfg *config.Config) Hasher {
	return NewBcryptHasher(cfg.Auth.BcryptCost)
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}
