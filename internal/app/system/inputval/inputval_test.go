package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"owner@example.com", true},
		{"first.last+plans@mail.example.org", true},
		{"ops@localhost", true},
		{"  padded@example.com  ", true},
		{"", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"owner@", false},
		{".owner@example.com", false},
		{"owner.@example.com", false},
		{"own..er@example.com", false},
		{"owner@example..com", false},
		{"Owner <owner@example.com>", false},
		{"own er@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHexColor(t *testing.T) {
	for s, want := range map[string]bool{
		"#4f46e5": true,
		"#FFF":    true,
		" #abc ":  true,
		"4f46e5":  false,
		"#4f46e":  false,
		"#ggg":    false,
		"":        false,
	} {
		if got := IsValidHexColor(s); got != want {
			t.Errorf("IsValidHexColor(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestIsValidObjectID(t *testing.T) {
	if !IsValidObjectID("64b7f0c2a1b2c3d4e5f60718") {
		t.Error("24 hex characters should be valid")
	}
	for _, s := range []string{"", "64b7f0c2", "zzb7f0c2a1b2c3d4e5f60718"} {
		if IsValidObjectID(s) {
			t.Errorf("IsValidObjectID(%q) = true", s)
		}
	}
}
