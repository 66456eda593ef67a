// Package authutil holds credential rules shared by registration, sign-in
// and password reset.
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	// BcryptCost is the work factor for password hashes.
	BcryptCost = 12
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("a valid email address is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	ErrPasswordCommon   = errors.New("password is too common")
)

var commonPasswords = map[string]struct{}{
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"password":    {},
	"password1":   {},
	"password123": {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"iloveyou":    {},
	"letmein1":    {},
	"football":    {},
	"baseball":    {},
	"welcome1":    {},
	"sunshine":    {},
	"princess":    {},
	"trustno1":    {},
	"superman":    {},
	"11111111":    {},
	"00000000":    {},
	"abcd1234":    {},
}

// ValidatePassword checks length and rejects well-known passwords.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, common := commonPasswords[strings.ToLower(pw)]; common {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules describes ValidatePassword for display next to a form.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters. Common passwords are not allowed.", MinPasswordLength)
}

// ValidateCredentials normalizes email and checks both fields for
// registration. It returns the normalized email.
func ValidateCredentials(email, password string) (string, error) {
	email = normalize.Email(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	if !inputval.IsValidEmail(email) {
		return "", ErrInvalidEmail
	}
	if password == "" {
		return "", ErrPasswordRequired
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	return email, nil
}

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
