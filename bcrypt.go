package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor used when none is configured
const DefaultPasswordCost = 10

// Hasher hashes passwords with bcrypt. The salt is embedded in the
// resulting hash so verification needs no extra state.
type Hasher struct {
	cost int
}

var _ PasswordAuthenticator = Hasher{}

// NewHasher returns a Hasher using cost, or the default cost when cost is
// outside the range bcrypt accepts.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = passwordHashCost()
	}
	return Hasher{cost: cost}
}

// Cost returns the configured work factor
func (h Hasher) Cost() int {
	if h.cost == 0 {
		return passwordHashCost()
	}
	return h.cost
}

// HashPassword will generate a password hash
func (h Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost())
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", errors.Join(ErrCryptoUnavailable, err)
	}
	return string(b), nil
}

// VerifyPassword reports whether password matches hash. Malformed hashes
// never match.
func (h Hasher) VerifyPassword(password, hash string) bool {
	return ComparePasswordAndHash(password, hash) == nil
}

// HashPassword will generate a password hash with the default cost
func HashPassword(password string) (string, error) {
	return Hasher{}.HashPassword(password)
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
