package tokens

import "testing"

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := New()
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if len(tok) != 43 {
			t.Fatalf("len = %d, want 43", len(tok))
		}
		if !Valid(tok) {
			t.Fatalf("Valid(%q) = false", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"short", false},
		{"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQ", true},
		{"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOP=", false},
		{"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNO+/", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
