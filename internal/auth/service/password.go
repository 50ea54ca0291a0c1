package service

import (
	"strings"
	"unicode"

	autherror "github.com/AnthoniusHendriyanto/hotel-auth-service/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt rejects inputs longer than 72 bytes.
	maxPasswordBytes = 72
)

// BcryptHasher hashes and verifies passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify never errors: blank input, malformed hashes and mismatches all
// report false.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if strings.TrimSpace(password) == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength requires at least 8 characters with a letter and
// a digit, and no more than 72 bytes.
func ValidatePasswordStrength(password string) error {
	if len(password) < minPasswordLength {
		return autherror.Validation("password must be at least 8 characters")
	}
	if len(password) > maxPasswordBytes {
		return autherror.Validation("password must be at most 72 bytes")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return autherror.Validation("password must contain letters and numbers")
	}
	return nil
}
