package auth

import (
	"strings"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// TokenMiddleware middleware para autenticación JWT con Fiber
type TokenMiddleware struct {
	tokenService TokenService
}

// NewAuthMiddleware crea un nuevo middleware de autenticación
func NewAuthMiddleware(tokenService TokenService) *TokenMiddleware {
	return &TokenMiddleware{tokenService: tokenService}
}

// Authenticate valida el token (header Bearer o cookie access_token)
// y guarda el AuthContext en c.Locals.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies("access_token")
		}
		if token == "" {
			return ErrUnauthenticated()
		}

		claims, err := am.tokenService.ValidateAccessToken(token)
		if err != nil {
			return ErrInvalidToken(err)
		}

		c.Locals(string(kernel.AuthContextKey), claims.AuthContext())
		return c.Next()
	}
}

// RequireAdmin middleware que requiere rol ADMIN
func (am *TokenMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, err := FromContext(c)
		if err != nil {
			return err
		}
		if !ac.IsAdmin() {
			return ErrAdminOnly()
		}
		return c.Next()
	}
}

// FromContext returns the caller identity set by Authenticate
func FromContext(c *fiber.Ctx) (*kernel.AuthContext, error) {
	ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	if !ok || !ac.IsValid() {
		return nil, ErrUnauthenticated()
	}
	return ac, nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
