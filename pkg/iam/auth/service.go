package auth

import (
	"context"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/iam/user"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

// Service handles registration, login and token refresh
type Service struct {
	users     user.Repository
	passwords PasswordService
	tokens    TokenService
	profiles  ProfileInitializer
	audit     AuditService
}

func NewService(users user.Repository, passwords PasswordService, tokens TokenService, profiles ProfileInitializer, audit AuditService) *Service {
	return &Service{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		profiles:  profiles,
		audit:     audit,
	}
}

// RequestMeta carries client details for audit logs
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Register creates a customer account together with its empty profile
func (s *Service) Register(ctx context.Context, email, password string, meta RequestMeta) (*user.User, error) {
	email = user.NormalizeEmail(email)
	if err := user.ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, user.ErrEmailTaken().WithDetail("email", email)
	} else if !errx.IsCode(err, user.CodeUserNotFound) {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	u := user.New(email, hash, kernel.RoleCustomer)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.profiles.EnsureProfile(ctx, u.ID); err != nil {
		return nil, err
	}

	s.audit.LogRegistration(ctx, u.ID, u.Email, meta.IP)
	return u, nil
}

// Login verifies credentials and issues a token pair
func (s *Service) Login(ctx context.Context, email, password string, meta RequestMeta) (*TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errx.IsCode(err, user.CodeUserNotFound) {
			s.audit.LogLoginAttempt(ctx, email, false, meta.IP, meta.UserAgent)
			return nil, ErrInvalidCredentials()
		}
		return nil, err
	}

	if !s.passwords.Verify(u.PasswordHash, password) {
		s.audit.LogLoginAttempt(ctx, email, false, meta.IP, meta.UserAgent)
		return nil, ErrInvalidCredentials()
	}

	s.audit.LogLoginAttempt(ctx, email, true, meta.IP, meta.UserAgent)
	return s.issue(u.AuthContext())
}

// Refresh exchanges a refresh token for a new pair.
// The user is reloaded so role changes take effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errx.IsCode(err, user.CodeUserNotFound) {
			return nil, ErrInvalidRefreshToken().WithDetail("error", "user no longer exists")
		}
		return nil, err
	}

	s.audit.LogTokenRefresh(ctx, u.ID, meta.IP)
	return s.issue(u.AuthContext())
}

// Me returns the account behind the caller identity
func (s *Service) Me(ctx context.Context, ac *kernel.AuthContext) (*user.User, error) {
	return s.users.FindByID(ctx, ac.UserID)
}

// EnsureAdmin creates an ADMIN account for email unless one exists.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = user.NormalizeEmail(email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errx.IsCode(err, user.CodeUserNotFound) {
		return false, err
	}
	if err := user.ValidateCredentials(email, password); err != nil {
		return false, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return false, errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}
	u := user.New(email, hash, kernel.RoleAdmin)
	if err := s.users.Create(ctx, u); err != nil {
		return false, err
	}
	if err := s.profiles.EnsureProfile(ctx, u.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) issue(ac *kernel.AuthContext) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(ac)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(ac)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}
