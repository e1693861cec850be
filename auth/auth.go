// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/blueballot/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

// PasswordCost is the bcrypt work factor for new hashes.
const PasswordCost = bcrypt.DefaultCost

// MaxPasswordLength is the longest password bcrypt accepts, in bytes.
const MaxPasswordLength = 72

// HashPassword returns a bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash against a candidate password.
// Any mismatch, including a malformed hash, is ErrInvalidCredentials.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

var unknownUserHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("no account has this password"), PasswordCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// RejectUnknownUser runs the same bcrypt comparison as CheckPassword
// against a fixed hash, so a missing account costs as much time as a
// wrong password. It always returns ErrInvalidCredentials.
func RejectUnknownUser(password string) error {
	_ = bcrypt.CompareHashAndPassword(unknownUserHash(), []byte(password))
	return ErrInvalidCredentials
}

// Principal is the authenticated caller, passed explicitly to every
// authorization check.
type Principal struct {
	UserID string
	Role   string
}

// PrincipalFor builds the principal of a loaded user
func PrincipalFor(u models.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// HashIP creates a one-way hash of an IP address for audit details
// Keyed so the hash can't be reversed by enumerating addresses
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) are enough to correlate requests
	return hex.EncodeToString(sum[:8])
}
