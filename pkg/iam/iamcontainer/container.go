package iamcontainer

import (
	"github.com/Abraxas-365/fittsee/pkg/config"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/fittsee/pkg/iam/user"
	"github.com/Abraxas-365/fittsee/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/jmoiron/sqlx"
)

// ---------------------------------------------------------------------------
// Deps: external dependencies the IAM context needs.
// ---------------------------------------------------------------------------

type Deps struct {
	DB  *sqlx.DB
	Cfg *config.Config

	// Profiles creates the empty profile of a new account. It belongs to the
	// profile context and is injected so IAM never imports it.
	Profiles auth.ProfileInitializer
}

// ---------------------------------------------------------------------------
// Container: the public surface of the IAM module.
// ---------------------------------------------------------------------------

type Container struct {
	Users        user.Repository
	Passwords    auth.PasswordService
	TokenService auth.TokenService
	AuthService  *auth.Service

	// Handlers and middleware used by cmd/ to register routes
	AuthHandlers   *auth.AuthHandlers
	AuthMiddleware *auth.TokenMiddleware
}

// New builds the IAM graph: repos → services → handlers → middleware.
func New(deps Deps) *Container {
	logx.Info("🔧 Initializing IAM container...")

	c := &Container{}

	c.Users = userinfra.NewPostgresUserRepository(deps.DB)
	c.Passwords = authinfra.NewBcryptPasswordService(0)
	c.TokenService = auth.NewJWTService(
		deps.Cfg.Auth.JWTSecret,
		deps.Cfg.Auth.AccessTokenTTL,
		deps.Cfg.Auth.RefreshTokenTTL,
		deps.Cfg.Auth.Issuer,
	)

	c.AuthService = auth.NewService(
		c.Users,
		c.Passwords,
		c.TokenService,
		deps.Profiles,
		authinfra.NewLogxAuditService(),
	)

	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService)
	c.AuthHandlers = auth.NewAuthHandlers(c.AuthService, c.AuthMiddleware)

	logx.Info("✅ IAM container initialized")
	return c
}
