// Package timeline positions campaigns and phase bands inside a visible date
// range. All geometry is expressed as fractions of the range so the UI can
// scale it to any width.
package timeline

import (
	"errors"
	"fmt"

	"github.com/dalemusser/campaignhub/internal/app/system/dates"
	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// View keys accepted by ResolveView.
const (
	ViewYear = "year"
)

// ErrUnknownView is returned for a view key that is neither "year" nor a phase key.
var ErrUnknownView = errors.New("unknown timeline view")

// ErrInvalidPhase is returned when a phase view is requested for a phase whose
// window does not form a valid range in the requested year.
var ErrInvalidPhase = errors.New("phase window is invalid")

// Span is the position of an interval inside a view. Left and Width are
// fractions of the view; Visible is the clipped interval that was drawn.
type Span struct {
	Left         float64     `json:"left"`
	Width        float64     `json:"width"`
	LeftPercent  float64     `json:"left_percent"`
	WidthPercent float64     `json:"width_percent"`
	LeftPx       float64     `json:"left_px,omitempty"`
	WidthPx      float64     `json:"width_px,omitempty"`
	Visible      dates.Range `json:"visible"`
	ClippedStart bool        `json:"clipped_start"`
	ClippedEnd   bool        `json:"clipped_end"`
}

// Layout clips item to view and positions it. ok is false when there is
// nothing to draw: the view is empty, the item is malformed, or the two
// share no day.
func Layout(view, item dates.Range) (Span, bool) {
	total := view.Days()
	if total <= 0 {
		return Span{}, false
	}
	vis, ok := item.Clip(view)
	if !ok {
		return Span{}, false
	}
	left := float64(dates.DaysBetween(view.Start, vis.Start)) / float64(total)
	width := float64(dates.DaysBetween(vis.Start, vis.End)+1) / float64(total)
	return Span{
		Left:         left,
		Width:        width,
		LeftPercent:  left * 100,
		WidthPercent: width * 100,
		Visible:      vis,
		ClippedStart: dates.Day(item.Start).Before(vis.Start),
		ClippedEnd:   dates.Day(item.End).After(vis.End),
	}, true
}

// Scale fills the pixel fields of s for a track of width pixels.
func (s Span) Scale(width float64) Span {
	if width <= 0 {
		return s
	}
	s.LeftPx = s.Left * width
	s.WidthPx = s.Width * width
	return s
}

// PhaseWindow re-anchors p to year. ok is false when the phase has an
// out-of-range month/day or its end falls before its start.
func PhaseWindow(p models.Phase, year int) (dates.Range, bool) {
	start, err := dates.Reanchor(p.StartMonth, p.StartDay, year)
	if err != nil {
		return dates.Range{}, false
	}
	end, err := dates.Reanchor(p.EndMonth, p.EndDay, year)
	if err != nil {
		return dates.Range{}, false
	}
	if end.Before(start) {
		return dates.Range{}, false
	}
	return dates.Range{Start: start, End: end}, true
}

// View is a concrete visible range: a calendar year or one phase window.
type View struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Year  int         `json:"year"`
	Range dates.Range `json:"range"`
}

// ResolveView turns a view key into a concrete range for year. An empty key
// means the full year.
func ResolveView(key string, year int, phases models.PhaseSet) (View, error) {
	if key == "" || key == ViewYear {
		return View{Key: ViewYear, Label: fmt.Sprintf("%d", year), Year: year, Range: dates.YearRange(year)}, nil
	}
	p, ok := phases.Get(key)
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownView, key)
	}
	r, ok := PhaseWindow(p, year)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrInvalidPhase, key)
	}
	return View{Key: key, Label: p.Name, Year: year, Range: r}, nil
}

// Band is a phase background drawn behind the rows.
type Band struct {
	Key   string      `json:"key"`
	Name  string      `json:"name"`
	Color string      `json:"color"`
	Range dates.Range `json:"range"`
	Span  Span        `json:"span"`
}

// PhaseBands positions every valid phase of the view's year inside view.
// Invalid phases and phases outside the view are skipped.
func PhaseBands(view View, phases models.PhaseSet) []Band {
	var out []Band
	for _, key := range models.PhaseKeys {
		p, _ := phases.Get(key)
		r, ok := PhaseWindow(p, view.Year)
		if !ok {
			continue
		}
		span, ok := Layout(view.Range, r)
		if !ok {
			continue
		}
		out = append(out, Band{Key: key, Name: p.Name, Color: p.Color, Range: r, Span: span})
	}
	return out
}

// MonthMarker labels one month column of the view.
type MonthMarker struct {
	Label string `json:"label"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Span  Span   `json:"span"`
}

// MonthMarkers returns one marker for each month that intersects view.
func MonthMarkers(view dates.Range) []MonthMarker {
	if !view.Valid() {
		return nil
	}
	var out []MonthMarker
	cur := dates.Day(view.Start)
	cur = cur.AddDate(0, 0, 1-cur.Day())
	end := dates.Day(view.End)
	for !cur.After(end) {
		monthEnd := cur.AddDate(0, 1, -1)
		if span, ok := Layout(view, dates.Range{Start: cur, End: monthEnd}); ok {
			out = append(out, MonthMarker{
				Label: cur.Format("Jan"),
				Month: int(cur.Month()),
				Year:  cur.Year(),
				Span:  span,
			})
		}
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}
