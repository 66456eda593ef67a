// Package tokens generates opaque URL-safe secrets for invitation links and
// password resets.
package tokens

import (
	"encoding/base64"
	"errors"

	"github.com/gorilla/securecookie"
)

// Size is the number of random bytes behind every token.
const Size = 32

// ErrEntropy is returned when the system random source fails.
var ErrEntropy = errors.New("tokens: random source unavailable")

// New returns a 43-character base64url (unpadded) token carrying 256 bits of
// entropy.
func New() (string, error) {
	b := securecookie.GenerateRandomKey(Size)
	if b == nil {
		return "", ErrEntropy
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Valid reports whether s looks like a token produced by New. It is a cheap
// shape check used before hitting the store.
func Valid(s string) bool {
	if len(s) != base64.RawURLEncoding.EncodedLen(Size) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}
