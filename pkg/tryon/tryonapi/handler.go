package tryonapi

import (
	"github.com/Abraxas-365/fittsee/pkg/iam/auth"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/tryon"
	"github.com/Abraxas-365/fittsee/pkg/tryon/tryonsrv"
	"github.com/gofiber/fiber/v2"
)

type TryOnHandlers struct {
	service    *tryonsrv.TryOnService
	middleware *auth.TokenMiddleware
}

func NewTryOnHandlers(service *tryonsrv.TryOnService, middleware *auth.TokenMiddleware) *TryOnHandlers {
	return &TryOnHandlers{service: service, middleware: middleware}
}

func (h *TryOnHandlers) RegisterRoutes(router fiber.Router) {
	router.Get("/try/:product_id", h.middleware.Authenticate(), h.Try)
}

// Try handles GET /try/:product_id?size=M
func (h *TryOnHandlers) Try(c *fiber.Ctx) error {
	ac, err := auth.FromContext(c)
	if err != nil {
		return err
	}
	size, ok := kernel.ParseSize(c.Query("size"))
	if !ok {
		return tryon.ErrInvalidSize(c.Query("size"))
	}

	out, err := h.service.Compose(c.UserContext(), ac.UserID, kernel.NewProductID(c.Params("product_id")), size)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
