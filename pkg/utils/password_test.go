package utils

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("s3cret-password", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGeneratePassword(t *testing.T) {
	password, err := GeneratePassword(16)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(password) != 16 {
		t.Errorf("expected length 16, got %d", len(password))
	}

	for name, class := range map[string]string{
		"upper":   passwordUpper,
		"lower":   passwordLower,
		"digit":   passwordDigits,
		"special": passwordSpecial,
	} {
		if !strings.ContainsAny(password, class) {
			t.Errorf("password %q missing a %s character", password, name)
		}
	}

	other, err := GeneratePassword(16)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if other == password {
		t.Error("two generated passwords collided")
	}
}

func TestGeneratePasswordMinimumLength(t *testing.T) {
	password, err := GeneratePassword(3)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(password) != 8 {
		t.Errorf("expected minimum length 8, got %d", len(password))
	}
}
