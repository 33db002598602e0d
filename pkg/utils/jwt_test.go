package utils

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	InitJWT("test-access-secret", "test-refresh-secret", 15*time.Minute, 168*time.Hour)

	token, err := GenerateAccessToken(42, "authority", []uint{1, 3})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "authority" {
		t.Errorf("claims = user %d role %s, want 42/authority", claims.UserID, claims.Role)
	}
	if len(claims.HospitalIDs) != 2 || claims.HospitalIDs[0] != 1 || claims.HospitalIDs[1] != 3 {
		t.Errorf("hospital scope = %v, want [1 3]", claims.HospitalIDs)
	}
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	InitJWT("test-access-secret", "test-refresh-secret", -time.Minute, 168*time.Hour)

	token, err := GenerateAccessToken(42, "user", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ValidateAccessToken(token); err == nil {
		t.Error("expired token validated, want error")
	}
}

func TestValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	InitJWT("secret-one", "test-refresh-secret", 15*time.Minute, 168*time.Hour)
	token, err := GenerateAccessToken(42, "user", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	InitJWT("secret-two", "test-refresh-secret", 15*time.Minute, 168*time.Hour)
	if _, err := ValidateAccessToken(token); err == nil {
		t.Error("token signed with a different secret validated, want error")
	}
}

func TestHashRefreshTokenIsDeterministic(t *testing.T) {
	token, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if HashRefreshToken(token) != HashRefreshToken(token) {
		t.Error("hashing the same token twice must give the same digest")
	}
	other, _ := GenerateRefreshToken()
	if HashRefreshToken(token) == HashRefreshToken(other) {
		t.Error("distinct tokens must not collide")
	}
}
