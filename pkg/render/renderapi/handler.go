package renderapi

import (
	"strings"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/render"
	"github.com/Abraxas-365/fittsee/pkg/render/rendersrv"
	"github.com/gofiber/fiber/v2"
)

type RenderHandlers struct {
	service    *rendersrv.Service
	middleware *auth.TokenMiddleware
}

func NewRenderHandlers(service *rendersrv.Service, middleware *auth.TokenMiddleware) *RenderHandlers {
	return &RenderHandlers{service: service, middleware: middleware}
}

func (h *RenderHandlers) RegisterRoutes(router fiber.Router) {
	group := router.Group("/renders", h.middleware.Authenticate())
	group.Post("/", h.CreateJob)
	group.Get("/:job_id", h.GetJob)
}

type createJobRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
}

func (h *RenderHandlers) CreateJob(c *fiber.Ctx) error {
	ac, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("invalid request body")
	}
	size, ok := kernel.ParseSize(req.Size)
	if !ok {
		return render.ErrInvalidSize(req.Size)
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return errx.Validation("product_id is required")
	}

	job, err := h.service.CreateJob(c.UserContext(), *ac, kernel.NewProductID(productID), size)
	if err != nil {
		return err
	}
	return c.JSON(job)
}

func (h *RenderHandlers) GetJob(c *fiber.Ctx) error {
	ac, err := auth.FromContext(c)
	if err != nil {
		return err
	}

	job, err := h.service.GetJob(c.UserContext(), *ac, kernel.JobID(c.Params("job_id")))
	if err != nil {
		return err
	}
	return c.JSON(job)
}
