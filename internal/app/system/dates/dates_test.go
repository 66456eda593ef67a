package dates

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestToInstant(t *testing.T) {
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	ms := want.UnixMilli()

	tests := []struct {
		name string
		in   any
	}{
		{"time.Time", want},
		{"*time.Time", &want},
		{"primitive.DateTime", primitive.NewDateTimeFromTime(want)},
		{"iso date", "2026-03-15"},
		{"rfc3339", "2026-03-15T00:00:00Z"},
		{"rfc3339 offset", "2026-03-15T02:00:00+02:00"},
		{"us date", "03/15/2026"},
		{"padded", "  2026-03-15 "},
		{"int64 millis", ms},
		{"float millis", float64(ms)},
		{"json.Number", json.Number("1773532800000")},
		{"timestamp object", map[string]any{"seconds": float64(want.Unix()), "nanoseconds": float64(0)}},
		{"underscore timestamp", bson.M{"_seconds": want.Unix(), "_nanoseconds": int64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInstant(tt.in)
			if err != nil {
				t.Fatalf("ToInstant(%v) error: %v", tt.in, err)
			}
			if !got.Equal(want) {
				t.Errorf("ToInstant(%v) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestToInstant_Unrecognized(t *testing.T) {
	var nilTime *time.Time
	inputs := []any{nil, "", "not a date", nilTime, time.Time{}, true, map[string]any{"x": 1}}
	for _, in := range inputs {
		if _, err := ToInstant(in); !errors.Is(err, ErrUnrecognized) {
			t.Errorf("ToInstant(%#v) error = %v, want ErrUnrecognized", in, err)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{d(2026, 1, 1), d(2026, 1, 1), 0},
		{d(2026, 1, 1), d(2026, 1, 2), 1},
		{d(2026, 1, 1), d(2026, 12, 31), 364},
		{d(2024, 1, 1), d(2024, 12, 31), 365},
		{d(2026, 3, 31), d(2026, 3, 15), -16},
		{time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC), time.Date(2026, 3, 9, 0, 1, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestReanchor(t *testing.T) {
	got, err := Reanchor(2, 29, 2026)
	if err != nil {
		t.Fatalf("Reanchor error: %v", err)
	}
	if !got.Equal(d(2026, 2, 28)) {
		t.Errorf("Feb 29 in 2026 = %v, want Feb 28", got)
	}

	got, _ = Reanchor(2, 29, 2028)
	if !got.Equal(d(2028, 2, 29)) {
		t.Errorf("Feb 29 in 2028 = %v, want Feb 29", got)
	}

	if _, err := Reanchor(13, 1, 2026); err == nil {
		t.Error("expected error for month 13")
	}
	if _, err := Reanchor(1, 0, 2026); err == nil {
		t.Error("expected error for day 0")
	}
}

func TestRange_Clip(t *testing.T) {
	phase1 := NewRange(d(2026, 1, 1), d(2026, 3, 31))

	tests := []struct {
		name   string
		r      Range
		want   Range
		wantOK bool
	}{
		{"straddles end", NewRange(d(2026, 3, 15), d(2026, 4, 15)), NewRange(d(2026, 3, 15), d(2026, 3, 31)), true},
		{"straddles start", NewRange(d(2025, 12, 1), d(2026, 1, 10)), NewRange(d(2026, 1, 1), d(2026, 1, 10)), true},
		{"inside", NewRange(d(2026, 2, 1), d(2026, 2, 2)), NewRange(d(2026, 2, 1), d(2026, 2, 2)), true},
		{"covers", NewRange(d(2025, 1, 1), d(2027, 1, 1)), phase1, true},
		{"touches last day", NewRange(d(2026, 3, 31), d(2026, 5, 1)), NewRange(d(2026, 3, 31), d(2026, 3, 31)), true},
		{"after", NewRange(d(2026, 4, 1), d(2026, 4, 2)), Range{}, false},
		{"before", NewRange(d(2025, 4, 1), d(2025, 4, 2)), Range{}, false},
		{"inverted", NewRange(d(2026, 2, 2), d(2026, 2, 1)), Range{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.r.Clip(phase1)
			if ok != tt.wantOK {
				t.Fatalf("Clip ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (!got.Start.Equal(tt.want.Start) || !got.End.Equal(tt.want.End)) {
				t.Errorf("Clip = %v, want %v", got, tt.want)
			}
			if ok != tt.r.Overlaps(phase1) {
				t.Errorf("Overlaps disagrees with Clip")
			}
		})
	}
}

func TestYearRange_Days(t *testing.T) {
	if got := YearRange(2026).Days(); got != 365 {
		t.Errorf("2026 days = %d, want 365", got)
	}
	if got := YearRange(2028).Days(); got != 366 {
		t.Errorf("2028 days = %d, want 366", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(d(2026, 3, 5)); got != "Mar 5, 2026" {
		t.Errorf("Format = %q", got)
	}
	if got := FormatISO(d(2026, 3, 5)); got != "2026-03-05" {
		t.Errorf("FormatISO = %q", got)
	}
	if got := Format(time.Time{}); got != "" {
		t.Errorf("Format(zero) = %q, want empty", got)
	}
	r := NewRange(d(2026, 1, 1), d(2026, 3, 31))
	if got := r.String(); got != "Jan 1, 2026 - Mar 31, 2026" {
		t.Errorf("Range.String = %q", got)
	}
}
