// Package dates converts the date representations found in stored and
// submitted documents into canonical UTC calendar days, formats them for
// display, and provides inclusive date-range arithmetic.
//
// All ranges are inclusive of both endpoints and operate on whole calendar
// days; the time-of-day component is discarded by Day.
package dates

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// ISOLayout is the wire and storage layout for calendar dates.
	ISOLayout = "2006-01-02"
	// DisplayLayout is the human-readable layout used in lists and exports.
	DisplayLayout = "Jan 2, 2006"

	day = 24 * time.Hour
)

// ErrUnrecognized is returned when a value cannot be interpreted as a date.
var ErrUnrecognized = errors.New("unrecognized date value")

// string layouts accepted by ToInstant, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	ISOLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ToInstant converts a heterogeneous date value to a time.Time in UTC.
//
// Accepted: time.Time, *time.Time, primitive.DateTime, primitive.Timestamp,
// strings in any of the accepted layouts, integers and floats as Unix
// milliseconds, json.Number, and timestamp objects of the form
// {"seconds": n, "nanoseconds": n} (with or without leading underscores).
func ToInstant(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, ErrUnrecognized
		}
		return t.UTC(), nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, ErrUnrecognized
		}
		return t.UTC(), nil
	case primitive.DateTime:
		return t.Time().UTC(), nil
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC(), nil
	case string:
		return parseString(t)
	case int:
		return fromMillis(int64(t)), nil
	case int32:
		return fromMillis(int64(t)), nil
	case int64:
		return fromMillis(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, ErrUnrecognized
		}
		return fromMillis(int64(t)), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return time.Time{}, ErrUnrecognized
			}
			n = int64(f)
		}
		return fromMillis(n), nil
	case bson.M:
		return fromTimestampObject(map[string]any(t))
	case map[string]any:
		return fromTimestampObject(t)
	case nil:
		return time.Time{}, ErrUnrecognized
	}
	return time.Time{}, fmt.Errorf("%w: %T", ErrUnrecognized, v)
}

// ToDay is ToInstant followed by Day.
func ToDay(v any) (time.Time, error) {
	t, err := ToInstant(v)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

func parseString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnrecognized
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, s)
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func fromTimestampObject(m map[string]any) (time.Time, error) {
	secs, ok := number(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, ErrUnrecognized
	}
	nanos, _ := number(m, "nanoseconds", "_nanoseconds")
	return time.Unix(int64(secs), int64(nanos)).UTC(), nil
}

func number(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case int:
			return float64(n), true
		case int32:
			return float64(n), true
		case int64:
			return float64(n), true
		case float64:
			return n, true
		case json.Number:
			f, err := n.Float64()
			return f, err == nil
		}
	}
	return 0, false
}

// Day truncates t to midnight UTC of its calendar date (in t's own location).
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / day)
}

// AddDays returns the calendar day n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// Format renders t with DisplayLayout. The zero time renders as "".
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Day(t).Format(DisplayLayout)
}

// FormatISO renders t with ISOLayout. The zero time renders as "".
func FormatISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Day(t).Format(ISOLayout)
}

// Reanchor builds the calendar day month/day in year. A day past the end of
// the month (Feb 29 in a non-leap year) clamps to the month's last day.
func Reanchor(month, dayOfMonth, year int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return time.Time{}, fmt.Errorf("day %d out of range", dayOfMonth)
	}
	last := DaysInMonth(time.Month(month), year)
	if dayOfMonth > last {
		dayOfMonth = last
	}
	return time.Date(year, time.Month(month), dayOfMonth, 0, 0, 0, 0, time.UTC), nil
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
