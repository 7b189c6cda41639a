package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plain credential")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("correct credential rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("wrong credential accepted")
	}
}

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("test-secret", "teacher@school.be", "TEACHER", 15)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}
	if at.Token == "" {
		t.Fatal("empty token")
	}
	if !at.Exp.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("issued token does not parse: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["sub"] != "teacher@school.be" {
		t.Fatalf("unexpected sub claim: %v", claims["sub"])
	}
	if claims["role"] != "TEACHER" {
		t.Fatalf("unexpected role claim: %v", claims["role"])
	}
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret-a", "u@school.be", "STUDENT", 15)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}
	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	})
	if err == nil && tok.Valid {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestNewRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken failed: %v", err)
	}
	if len(rt.Raw) != 96 { // 48 random bytes hex encoded
		t.Fatalf("unexpected raw length: %d", len(rt.Raw))
	}
	if !rt.Exp.After(time.Now().Add(6 * 24 * time.Hour)) {
		t.Fatal("expiry shorter than requested TTL")
	}

	other, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken failed: %v", err)
	}
	if rt.Raw == other.Raw {
		t.Fatal("two tokens must not collide")
	}
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("token-a")
	h2 := HashRefreshRaw("token-a")
	if h1 != h2 {
		t.Fatal("hash must be deterministic")
	}
	if len(h1) != 64 { // SHA-256 hex
		t.Fatalf("unexpected hash length: %d", len(h1))
	}
	if HashRefreshRaw("token-b") == h1 {
		t.Fatal("different tokens must not share a hash")
	}
}
