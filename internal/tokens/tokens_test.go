package tokens

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-32-bytes-should-be-long-enough"

func TestGenerateAdminToken_ValidAndClaims(t *testing.T) {
	tokenStr, err := GenerateAdminToken(testSecret, "operator-1", 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}

	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("token should be valid")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type assertion failed")
	}
	if claims["sub"] != "operator-1" {
		t.Fatalf("unexpected sub claim: got=%v want=operator-1", claims["sub"])
	}
}

func TestGenerateAdminToken_Expiry(t *testing.T) {
	tokenStr, err := GenerateAdminToken(testSecret, "u2", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	_, err = jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	if err == nil {
		t.Fatalf("expected token parse to fail after expiry")
	}
}

func TestParseToken_WrongSecretFails(t *testing.T) {
	tokenStr, err := GenerateAdminToken(testSecret, "u3", 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	_, err = jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) { return []byte("different-secret-xxxxxxxxxxxxxxxx"), nil })
	if err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := jwt.Parse("not.a.jwt", func(token *jwt.Token) (interface{}, error) { return []byte("x"), nil })
	if err == nil {
		t.Fatalf("expected parse to fail for malformed token")
	}
}

// Rejected when alg=none (unsigned token)
func TestParseToken_AlgNoneRejected(t *testing.T) {
	enc := base64.RawURLEncoding
	headerEnc := enc.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := enc.EncodeToString([]byte(`{"sub":"u-none","exp":9999999999}`))
	tok := headerEnc + "." + payloadEnc + "."
	_, err := jwt.Parse(tok, func(token *jwt.Token) (interface{}, error) { return []byte("x"), nil })
	if err == nil {
		t.Fatalf("expected parse to reject alg=none token")
	}
}

// Tampering with payload must fail signature verification
func TestParseToken_TamperedPayload(t *testing.T) {
	tokenStr, err := GenerateAdminToken(testSecret, "operator-t", 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token parts")
	}
	enc := base64.RawURLEncoding
	payloadBytes, err := enc.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	payloadStr := strings.Replace(string(payloadBytes), "operator-t", "attacker", 1)
	parts[1] = enc.EncodeToString([]byte(payloadStr))
	tampered := strings.Join(parts, ".")
	_, err = jwt.Parse(tampered, func(token *jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	if err == nil {
		t.Fatalf("expected signature verification to fail for tampered token")
	}
}
