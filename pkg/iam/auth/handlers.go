package auth

import (
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/gofiber/fiber/v2"
)

// AuthHandlers exposes /api/v1/auth
type AuthHandlers struct {
	service    *Service
	middleware *TokenMiddleware
}

func NewAuthHandlers(service *Service, middleware *TokenMiddleware) *AuthHandlers {
	return &AuthHandlers{service: service, middleware: middleware}
}

func (h *AuthHandlers) RegisterRoutes(router fiber.Router) {
	group := router.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/refresh", h.Refresh)
	group.Get("/me", h.middleware.Authenticate(), h.Me)
}

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r credentialsRequest) login() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func meta(c *fiber.Ctx) RequestMeta {
	return RequestMeta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

func (h *AuthHandlers) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}

	u, err := h.service.Register(c.UserContext(), req.login(), req.Password, meta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(userResponse{ID: u.ID.String(), Email: u.Email, Role: string(u.Role)})
}

// Login accepts OAuth2-style form fields (username, password) or JSON
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}
	if req.login() == "" || req.Password == "" {
		return errx.Validation("username and password are required")
	}

	pair, err := h.service.Login(c.UserContext(), req.login(), req.Password, meta(c))
	if err != nil {
		return err
	}
	return c.JSON(pair)
}

func (h *AuthHandlers) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return errx.Validation("refresh_token is required")
	}

	pair, err := h.service.Refresh(c.UserContext(), req.RefreshToken, meta(c))
	if err != nil {
		return err
	}
	return c.JSON(pair)
}

func (h *AuthHandlers) Me(c *fiber.Ctx) error {
	ac, err := FromContext(c)
	if err != nil {
		return err
	}
	u, err := h.service.Me(c.UserContext(), ac)
	if err != nil {
		return err
	}
	return c.JSON(userResponse{ID: u.ID.String(), Email: u.Email, Role: string(u.Role)})
}
