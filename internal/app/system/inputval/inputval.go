// Package inputval validates request payloads before they reach a service.
package inputval

import (
	"net/mail"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsValidEmail reports whether s is a bare address (no display name) with a
// well-formed local part and domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	return validDotted(local) && validDotted(domain)
}

func validDotted(s string) bool {
	return s != "" && !strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".") && !strings.Contains(s, "..")
}

// IsValidHexColor accepts #rgb and #rrggbb.
func IsValidHexColor(s string) bool {
	return hexColor.MatchString(strings.TrimSpace(s))
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	return primitive.IsValidObjectID(strings.TrimSpace(s))
}
