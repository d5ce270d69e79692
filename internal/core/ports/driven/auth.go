package driven

import "github.com/custodia-labs/docprocess-core/internal/core/domain"

// AuthAdapter covers password hashing and access token signing.
// Persistence of sessions lives in SessionStore.
type AuthAdapter interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool

	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
