package auth

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

// ============================================================================
// Token Types
// ============================================================================

// TokenType distinguishes access from refresh tokens inside the JWT
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims represents validated JWT claims
type TokenClaims struct {
	UserID    kernel.UserID
	Email     string
	Role      kernel.Role
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthContext converts claims into the request identity
func (c *TokenClaims) AuthContext() *kernel.AuthContext {
	return &kernel.AuthContext{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeInvalidCredentials    = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Incorrect email or password")
	CodeInvalidRefreshToken   = ErrRegistry.Register("INVALID_REFRESH_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid refresh token")
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
	CodeTokenValidationFailed = ErrRegistry.Register("TOKEN_VALIDATION_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Token validation failed")

	// Raised by TokenMiddleware before a handler runs.
	CodeUnauthenticated = ErrRegistry.Register("UNAUTHENTICATED", errx.TypeAuthorization, http.StatusUnauthorized, "Sign in to continue")
	CodeInvalidToken    = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Access token is invalid or expired")
	CodeAdminOnly       = ErrRegistry.Register("ADMIN_ONLY", errx.TypeForbidden, http.StatusForbidden, "Admin role required")
)

// Helper functions
func ErrInvalidCredentials() *errx.Error {
	return ErrRegistry.New(CodeInvalidCredentials)
}

func ErrInvalidRefreshToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidRefreshToken)
}

func ErrTokenGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerationFailed)
}

func ErrTokenValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenValidationFailed)
}

func ErrUnauthenticated() *errx.Error { return ErrRegistry.New(CodeUnauthenticated) }
func ErrAdminOnly() *errx.Error       { return ErrRegistry.New(CodeAdminOnly) }

func ErrInvalidToken(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeInvalidToken, cause)
}
