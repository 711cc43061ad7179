package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is a one-way adaptive hash for temporary secrets.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

// BcryptHasher implements Hasher with bcrypt at the default cost.
type BcryptHasher struct{}

var _ Hasher = BcryptHasher{}

func (BcryptHasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hashed), nil
}

func (BcryptHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
