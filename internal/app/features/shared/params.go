// Package shared holds request helpers used by several features.
package shared

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectIDParam parses the chi URL parameter key as an ObjectID.
func ObjectIDParam(r *http.Request, key string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// Year reads the "year" query parameter. Missing or out-of-range values fall
// back to the current UTC year.
func Year(r *http.Request, now time.Time) int {
	y, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("year")))
	if err != nil || y < 1970 || y > 9999 {
		return now.UTC().Year()
	}
	return y
}

// Bool reads a boolean query parameter; anything unparsable is false.
func Bool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

// Int64 reads an integer query parameter, returning def when it is missing
// or invalid and clamping to [min, max].
func Int64(r *http.Request, key string, def, min, max int64) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ParseObjectID parses a hex ObjectID from a request body field.
func ParseObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(s))
}
