package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword_Valid(t *testing.T) {
	for _, pw := range []string{"secure123", "MyP@ssw0rd", "abcdefg1"} {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("expected %q to be valid, got error: %v", pw, err)
		}
	}
}

func TestValidatePassword_TooShort(t *testing.T) {
	for _, pw := range []string{"", "a", "abc", "abcdefg"} {
		if err := ValidatePassword(pw); err != ErrPasswordTooShort {
			t.Errorf("expected ErrPasswordTooShort for %q, got %v", pw, err)
		}
	}
}

func TestValidatePassword_Length(t *testing.T) {
	if err := ValidatePassword(strings.Repeat("a", 129)); err != ErrPasswordTooLong {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
	if err := ValidatePassword(strings.Repeat("a", 128)); err != nil {
		t.Errorf("expected password at max length to be valid, got %v", err)
	}
}

func TestValidatePassword_Common(t *testing.T) {
	for _, pw := range []string{"password", "PASSWORD", "Password123", "iloveyou", "ILoveYou", "12345678"} {
		if err := ValidatePassword(pw); err != ErrPasswordCommon {
			t.Errorf("expected ErrPasswordCommon for %q, got %v", pw, err)
		}
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		wantEmail string
		wantErr   error
	}{
		{"valid", "  Alice@Example.COM ", "correct-horse", "alice@example.com", nil},
		{"missing email", "  ", "correct-horse", "", ErrEmailRequired},
		{"bad email", "alice@", "correct-horse", "", ErrInvalidEmail},
		{"missing password", "a@b.co", "", "", ErrPasswordRequired},
		{"short password", "a@b.co", "short", "", ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateCredentials(tt.email, tt.password)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.wantEmail {
				t.Errorf("email = %q, want %q", got, tt.wantEmail)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	password := "SecurePassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" || hash == password || hash[0] != '$' {
		t.Errorf("unexpected hash %q", hash)
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == hash2 {
		t.Error("expected different hashes for same password (random salt)")
	}

	if !CheckPassword(password, hash) {
		t.Error("expected CheckPassword to return true for correct password")
	}
	if CheckPassword("WrongPassword456", hash) {
		t.Error("expected CheckPassword to return false for wrong password")
	}
	if CheckPassword("", hash) {
		t.Error("expected CheckPassword to return false for empty password")
	}
	if CheckPassword(password, "not-a-valid-hash") {
		t.Error("expected CheckPassword to return false for invalid hash")
	}
}

func TestPasswordRules(t *testing.T) {
	if rules := PasswordRules(); !strings.Contains(rules, "8") {
		t.Errorf("expected PasswordRules to mention minimum length, got %q", rules)
	}
}
