package operator

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes operator passwords with bcrypt.
// Passwords are pre-hashed with sha256 because bcrypt reads only the
// first 72 bytes of its input.
type BcryptHasher struct{}

var DefaultHasher = BcryptHasher{}

func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digest(password), bcrypt.DefaultCost)
	return string(hash), err
}

func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), digest(password))
}

func digest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return sum[:]
}
