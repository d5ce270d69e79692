package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
)

func testClaims(expiresIn time.Duration) *domain.TokenClaims {
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    "user-123",
		Email:     "bob@example.com",
		Name:      "Bob",
		SessionID: "session-789",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(expiresIn).Unix(),
	}
}

func TestNewAdapter(t *testing.T) {
	adapter := NewAdapter("test-secret")
	if string(adapter.jwtSecret) != "test-secret" {
		t.Error("expected jwt secret to be set")
	}
	if adapter.bcryptCost != 10 {
		t.Errorf("expected default bcrypt cost, got %d", adapter.bcryptCost)
	}

	if NewAdapterWithCost("test-secret", 4).bcryptCost != 4 {
		t.Error("expected bcrypt cost 4")
	}
}

func TestHashPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4) // Low cost for faster tests

	hash, err := adapter.HashPassword("mypassword")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "mypassword" || len(hash) < 60 {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}

	again, _ := adapter.HashPassword("mypassword")
	if hash == again {
		t.Error("expected different hashes for same password (due to salt)")
	}
}

func TestVerifyPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4)
	hash, _ := adapter.HashPassword("correctpassword")

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct", "correctpassword", hash, true},
		{"wrong", "wrongpassword", hash, false},
		{"invalid hash", "correctpassword", "not-a-valid-hash", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.VerifyPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")
	original := testClaims(24 * time.Hour)

	token, err := adapter.GenerateToken(original)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected JWT with 3 parts, got %q", token)
	}

	parsed, err := adapter.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if *parsed != *original {
		t.Errorf("expected %+v, got %+v", original, parsed)
	}
}

func TestParseToken_Expired(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")
	token, _ := adapter.GenerateToken(testClaims(-2 * time.Hour))

	if _, err := adapter.ParseToken(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_Invalid(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	signedElsewhere, _ := NewAdapter("other-secret").GenerateToken(testClaims(time.Hour))

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":        "someone-else",
		"session_id": "s",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	foreignIssuer, _ := foreign.SignedString([]byte("test-jwt-secret"))

	noSession := testClaims(time.Hour)
	noSession.SessionID = ""
	withoutSession, _ := adapter.GenerateToken(noSession)

	tests := map[string]string{
		"empty":          "",
		"not a jwt":      "not-a-jwt",
		"garbage parts":  "invalid.token.here",
		"wrong secret":   signedElsewhere,
		"foreign issuer": foreignIssuer,
		"no session":     withoutSession,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := adapter.ParseToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
				t.Errorf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func BenchmarkVerifyPassword(b *testing.B) {
	adapter := NewAdapterWithCost("secret", 4)
	hash, _ := adapter.HashPassword("testpassword")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = adapter.VerifyPassword("testpassword", hash)
	}
}

func BenchmarkParseToken(b *testing.B) {
	adapter := NewAdapter("test-secret")
	token, _ := adapter.GenerateToken(testClaims(24 * time.Hour))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = adapter.ParseToken(token)
	}
}
