// Package authutil holds password rules shared by the profile endpoint,
// the user store and mttctl.
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
	ErrPasswordCommon   = errors.New("password is too common")
)

var commonPasswords = map[string]bool{
	"123456": true, "1234567": true, "12345678": true, "123456789": true,
	"password": true, "password1": true, "qwerty": true, "abc123": true,
	"iloveyou": true, "letmein": true, "football": true, "welcome": true,
	"admin123": true, "monkey": true, "dragon": true, "sunshine": true,
}

// ValidatePassword checks length and rejects well-known passwords.
func ValidatePassword(pw string) error {
	if len([]rune(pw)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if commonPasswords[strings.ToLower(pw)] {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules describes ValidatePassword for clients.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters and not a commonly used password.", MinPasswordLength)
}

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
