package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Spring Launch", "Spring Launch"},
		{"trims", "  Q3 push  ", "Q3 push"},
		{"ampersand kept", "Tom & Jerry", "Tom & Jerry"},
		{"strips formatting", "<strong>Bold</strong> plan", "Bold plan"},
		{"drops script", "Launch<script>alert('xss')</script>", "Launch"},
		{"drops attributes", `<a href="javascript:alert(1)">Click</a>`, "Click"},
		{"drops iframe", `<iframe src="https://evil.example"></iframe>Safe`, "Safe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"no tags here", true},
		{"a < b", true},
		{"a > b", true},
		{"<p>para</p>", false},
		{"x <b> y", false},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.input); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
