// internal/app/system/authutil/password.go
package authutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is counted in characters.
	MinPasswordLength = 8
	// MaxPasswordLength is counted in bytes; bcrypt ignores anything past 72.
	MaxPasswordLength = 72

	// BcryptCost is the work factor used for password hashes.
	BcryptCost = 12
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
	ErrPasswordCommon   = errors.New("password is too common")
)

// commonPasswords lists well-known passwords that pass the length rule.
// Compared case-insensitively.
var commonPasswords = map[string]bool{
	"12345678":    true,
	"123456789":   true,
	"1234567890":  true,
	"11111111":    true,
	"password":    true,
	"password1":   true,
	"password123": true,
	"passw0rd":    true,
	"qwertyuiop":  true,
	"qwerty123":   true,
	"iloveyou":    true,
	"football":    true,
	"baseball":    true,
	"sunshine":    true,
	"princess":    true,
	"trustno1":    true,
	"welcome1":    true,
	"letmein1":    true,
	"abcd1234":    true,
	"superman":    true,
}

// ValidatePassword checks a candidate password against the policy.
func ValidatePassword(pw string) error {
	switch {
	case utf8.RuneCountInString(pw) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(pw) > MaxPasswordLength:
		return ErrPasswordTooLong
	case commonPasswords[strings.ToLower(pw)]:
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules describes the policy for clients.
func PasswordRules() string {
	return fmt.Sprintf("Passwords must be %d to %d characters and not a commonly used password.",
		MinPasswordLength, MaxPasswordLength)
}

// HashPassword returns the bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether pw matches hash. A malformed hash never
// matches.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
