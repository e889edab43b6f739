package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseJWT(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateJWT(secret, "0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c", 8453, "device-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(secret, token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.Address != "0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c" {
		t.Errorf("Address = %q", claims.Address)
	}
	if claims.ChainID != 8453 {
		t.Errorf("ChainID = %d", claims.ChainID)
	}
	if claims.DeviceID != "device-1" {
		t.Errorf("DeviceID = %q", claims.DeviceID)
	}
	if claims.Issuer != "pulse" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret-a", "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", 0, "device-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT("secret-b", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestGenerateJWTExpirationFallback(t *testing.T) {
	// Non-positive expiration falls back to 24h rather than minting
	// an already-expired token.
	token, err := GenerateJWT("secret", "0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c", 8453, "device-1", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT("secret", token); err != nil {
		t.Fatalf("token with fallback expiry should parse: %v", err)
	}
}

func TestParseJWTMalformed(t *testing.T) {
	if _, err := ParseJWT("secret", "not.a.token"); err == nil {
		t.Fatal("expected parse error for malformed token")
	}
}
