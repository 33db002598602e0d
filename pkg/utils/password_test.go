package utils

import (
	"strings"
	"testing"
)

func TestPasswordHashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plain text password")
	}
	if !ComparePassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if ComparePassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("password below the minimum length accepted")
	}
	if err := ValidatePassword(strings.Repeat("x", 73)); err == nil {
		t.Error("password beyond the bcrypt input limit accepted")
	}
	if err := ValidatePassword("long-enough-pass"); err != nil {
		t.Errorf("valid password rejected: %v", err)
	}
}
