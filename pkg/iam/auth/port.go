package auth

import (
	"context"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

// TokenService defines the contract for JWT token management
type TokenService interface {
	GenerateAccessToken(ac *kernel.AuthContext) (string, error)
	GenerateRefreshToken(ac *kernel.AuthContext) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

// PasswordService hashes and verifies passwords
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// ProfileInitializer creates the empty profile that every new account starts with
type ProfileInitializer interface {
	EnsureProfile(ctx context.Context, userID kernel.UserID) error
}

// AuditService defines the contract for authentication audit logging
type AuditService interface {
	LogRegistration(ctx context.Context, userID kernel.UserID, email string, ip string)
	LogLoginAttempt(ctx context.Context, email string, success bool, ip string, userAgent string)
	LogTokenRefresh(ctx context.Context, userID kernel.UserID, ip string)
}
