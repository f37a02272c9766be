// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost for password hashing.
const BcryptCost = 10

// MinPasswordLength is the shortest password we accept.
const MinPasswordLength = 8

// HashPassword returns the bcrypt hash of a plain-text password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the password rules: minimum length, at least
// one letter and one digit. Returns a user-safe error describing the
// first failed rule.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
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
		return errors.New("password must contain at least one letter and one digit")
	}
	return nil
}

// PasswordRules returns the rules text shown to users.
func PasswordRules() string {
	return "At least 8 characters, including a letter and a digit."
}

// isValidEmail performs a light structural check: exactly one '@',
// non-empty local part, and a dot inside the domain (not at either end).
func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return true
}

// ValidEmail reports whether email looks structurally valid.
func ValidEmail(email string) bool {
	return isValidEmail(email)
}
