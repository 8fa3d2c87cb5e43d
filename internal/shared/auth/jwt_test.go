package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	token, err := SignJWT(Claims{
		Sub:     "google:123",
		Email:   "ada@example.com",
		Name:    "Ada Lovelace",
		Picture: "https://example.com/a.png",
	})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token %q is not three segments", token)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Sub != "google:123" || claims.Email != "ada@example.com" {
		t.Fatalf("claims = %#v", claims)
	}
	if claims.Demo {
		t.Fatal("demo claim should default to false")
	}
	if claims.Exp <= claims.Iat {
		t.Fatalf("exp %d not after iat %d", claims.Exp, claims.Iat)
	}
}

func TestSignJWTRequiresSub(t *testing.T) {
	if _, err := SignJWT(Claims{Email: "nobody@example.com"}); err == nil {
		t.Fatal("expected error for missing sub")
	}
}

func TestVerifyJWTRejectsTamperedToken(t *testing.T) {
	token, err := SignJWT(Claims{Sub: "google:123"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := VerifyJWT(tampered); err == nil {
		t.Fatal("tampered token accepted")
	}

	if _, err := VerifyJWT("garbage"); err == nil {
		t.Fatal("malformed token accepted")
	}
}

func TestVerifyJWTRejectsExpiredToken(t *testing.T) {
	past := time.Now().UTC().Add(-2 * time.Hour).Unix()
	token, err := SignJWT(Claims{Sub: "google:123", Iat: past, Exp: past + 60})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	if _, err := VerifyJWT(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestDemoClaimSurvivesRoundTrip(t *testing.T) {
	token, err := SignJWT(Claims{Sub: "demo-user", Demo: true})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if !claims.Demo {
		t.Fatal("demo claim lost")
	}
}
