package dates

import "time"

// Range is an inclusive interval of calendar days.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewRange builds a Range from two instants, truncated to days.
func NewRange(start, end time.Time) Range {
	return Range{Start: Day(start), End: Day(end)}
}

// YearRange covers January 1 through December 31 of year.
func YearRange(year int) Range {
	return Range{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Days is the inclusive number of days in r. Zero or negative means r is empty.
func (r Range) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Valid reports whether r contains at least one day.
func (r Range) Valid() bool {
	return r.Days() > 0
}

// Contains reports whether t falls within r.
func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Overlaps reports whether r and o share at least one day.
func (r Range) Overlaps(o Range) bool {
	_, ok := r.Clip(o)
	return ok
}

// Clip returns the part of r that lies inside bounds. ok is false when the
// two ranges share no day (or either is empty).
func (r Range) Clip(bounds Range) (clipped Range, ok bool) {
	if !r.Valid() || !bounds.Valid() {
		return Range{}, false
	}
	start := Day(r.Start)
	if b := Day(bounds.Start); b.After(start) {
		start = b
	}
	end := Day(r.End)
	if b := Day(bounds.End); b.Before(end) {
		end = b
	}
	if start.After(end) {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// String renders r as "Jan 2, 2006 - Mar 31, 2006".
func (r Range) String() string {
	return Format(r.Start) + " - " + Format(r.End)
}
