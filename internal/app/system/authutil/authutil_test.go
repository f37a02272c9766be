package authutil

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "Secret123!" {
		t.Error("hash must not equal the plain password")
	}
	if !CheckPassword("Secret123!", hash) {
		t.Error("expected CheckPassword to succeed for the original password")
	}
	if CheckPassword("wrong-password1", hash) {
		t.Error("expected CheckPassword to fail for a different password")
	}
}

func TestHashPassword_DistinctHashes(t *testing.T) {
	h1, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if h1 == h2 {
		t.Error("expected salted hashes to differ")
	}
}

func TestValidatePassword_TooShort(t *testing.T) {
	if err := ValidatePassword("ab1"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestValidatePassword_NoDigit(t *testing.T) {
	if err := ValidatePassword("onlyletters"); err == nil {
		t.Error("expected error for password without digit")
	}
}

func TestValidatePassword_NoLetter(t *testing.T) {
	if err := ValidatePassword("12345678"); err == nil {
		t.Error("expected error for password without letter")
	}
}

func TestValidatePassword_Valid(t *testing.T) {
	for _, p := range []string{"Secret123", "abcdefg1", "1abcdefg!"} {
		if err := ValidatePassword(p); err != nil {
			t.Errorf("expected %q to be valid, got %v", p, err)
		}
	}
}

func TestPasswordRules_NotEmpty(t *testing.T) {
	if !strings.Contains(PasswordRules(), "8 characters") {
		t.Error("rules text should mention the minimum length")
	}
}

func TestIsValidEmail_Valid(t *testing.T) {
	validEmails := []string{
		"test@example.com",
		"user@domain.org",
		"name.surname@company.co.uk",
		"a@b.co",
	}

	for _, email := range validEmails {
		if !isValidEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}
}

func TestIsValidEmail_MissingAt(t *testing.T) {
	if isValidEmail("testexample.com") {
		t.Error("expected email without @ to be invalid")
	}
}

func TestIsValidEmail_MultipleAt(t *testing.T) {
	if isValidEmail("test@@example.com") {
		t.Error("expected email with multiple @ to be invalid")
	}
}

func TestIsValidEmail_EmptyLocalPart(t *testing.T) {
	if isValidEmail("@example.com") {
		t.Error("expected email with empty local part to be invalid")
	}
}

func TestIsValidEmail_NoDomainDot(t *testing.T) {
	if isValidEmail("test@example") {
		t.Error("expected email without domain dot to be invalid")
	}
}

func TestIsValidEmail_DotAtEnd(t *testing.T) {
	if isValidEmail("test@example.") {
		t.Error("expected email with trailing dot to be invalid")
	}
}
