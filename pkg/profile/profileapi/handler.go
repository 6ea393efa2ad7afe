package profileapi

import (
	"io"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth"
	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/profile/profilesrv"
	"github.com/gofiber/fiber/v2"
)

// ProfileHandlers exposes /api/v1/profile for the authenticated user
type ProfileHandlers struct {
	service    *profilesrv.Service
	middleware *auth.TokenMiddleware
}

func NewProfileHandlers(service *profilesrv.Service, middleware *auth.TokenMiddleware) *ProfileHandlers {
	return &ProfileHandlers{service: service, middleware: middleware}
}

func (h *ProfileHandlers) RegisterRoutes(router fiber.Router) {
	group := router.Group("/profile", h.middleware.Authenticate())
	group.Get("/", h.Get)
	group.Put("/", h.Update)
	group.Post("/upload-body-photo", h.UploadBodyPhoto)
	group.Delete("/body-photo", h.DeleteBodyPhoto)
}

func (h *ProfileHandlers) Get(c *fiber.Ctx) error {
	ac, err := auth.FromContext(c)
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.UserContext(), ac.UserID)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *ProfileHandlers) Update(c *fiber.Ctx) error {
	ac, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	var req profile.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}

	p, err := h.service.Update(c.UserContext(), ac.UserID, req)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *ProfileHandlers) UploadBodyPhoto(c *fiber.Ctx) error {
	ac, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return profile.ErrInvalidPhoto().WithDetail("reason", "multipart field 'file' is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errx.Wrap(err, "failed to open upload", errx.TypeInternal)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errx.Wrap(err, "failed to read upload", errx.TypeInternal)
	}

	p, err := h.service.UploadBodyPhoto(c.UserContext(), ac.UserID, fh.Filename, data)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *ProfileHandlers) DeleteBodyPhoto(c *fiber.Ctx) error {
	ac, err := auth.FromContext(c)
	if err != nil {
		return err
	}
	p, err := h.service.DeleteBodyPhoto(c.UserContext(), ac.UserID)
	if err != nil {
		return err
	}
	return c.JSON(p)
}
