package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 12

// Authenticator decides whether a user-entered password grants admin access
type Authenticator interface {
	Authenticate(password string) bool
}

// StaticPassword compares against a shared secret from configuration
type StaticPassword string

// Authenticate implements Authenticator
func (p StaticPassword) Authenticate(password string) bool {
	if p == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1
}

// HashedPassword compares against a bcrypt hash from configuration
type HashedPassword string

// Authenticate implements Authenticator
func (h HashedPassword) Authenticate(password string) bool {
	return CheckPassword(password, string(h))
}

// NewAuthenticator prefers the bcrypt hash when one is configured
func NewAuthenticator(password, hash string) Authenticator {
	if hash != "" {
		return HashedPassword(hash)
	}
	return StaticPassword(password)
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(bytes), err
}

// CheckPassword compares password with hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
