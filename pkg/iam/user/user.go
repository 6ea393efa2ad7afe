package user

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 8

// User is an account able to sign in
type User struct {
	ID           kernel.UserID `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         kernel.Role   `json:"role"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// New builds a user with a fresh id and a normalized email
func New(email, passwordHash string, role kernel.Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           kernel.NewUserID(uuid.NewString()),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AuthContext returns the request identity for this user
func (u *User) AuthContext() *kernel.AuthContext {
	return &kernel.AuthContext{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks the shape of registration input
func ValidateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return ErrInvalidEmail().WithDetail("email", email)
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword().WithDetail("min_length", MinPasswordLength)
	}
	return nil
}

// ============================================================================
// Repository
// ============================================================================

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeEmailTaken   = ErrRegistry.Register("EMAIL_TAKEN", errx.TypeValidation, http.StatusBadRequest, "Email already registered")
	CodeInvalidEmail = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Invalid email address")
	CodeWeakPassword = ErrRegistry.Register("WEAK_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "Password too short")
)

func ErrUserNotFound() *errx.Error { return ErrRegistry.New(CodeUserNotFound) }
func ErrEmailTaken() *errx.Error   { return ErrRegistry.New(CodeEmailTaken) }
func ErrInvalidEmail() *errx.Error { return ErrRegistry.New(CodeInvalidEmail) }
func ErrWeakPassword() *errx.Error { return ErrRegistry.New(CodeWeakPassword) }
