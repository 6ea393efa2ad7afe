package catalogapi

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/catalog/catalogsrv"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandlers struct {
	service    *catalogsrv.CatalogService
	middleware *auth.TokenMiddleware
}

func NewCatalogHandlers(service *catalogsrv.CatalogService, middleware *auth.TokenMiddleware) *CatalogHandlers {
	return &CatalogHandlers{service: service, middleware: middleware}
}

// RegisterRoutes mounts the public catalog under /products and the admin API under /admin
func (h *CatalogHandlers) RegisterRoutes(router fiber.Router) {
	public := router.Group("/products/products")
	public.Get("/", h.ListProducts)
	public.Get("/:id", h.GetProduct)
	public.Get("/:id/variants", h.ListVariants)

	admin := router.Group("/admin", h.middleware.Authenticate(), h.middleware.RequireAdmin())
	admin.Post("/products", h.CreateProduct)
	admin.Put("/products/:id", h.UpdateProduct)
	admin.Delete("/products/:id", h.DeleteProduct)
	admin.Post("/products/:id/variants", h.CreateVariants)
	admin.Post("/products/:id/upload-garment-asset", h.UploadGarmentAsset)
	admin.Post("/mannequin/upload-video", h.UploadMannequinVideo)
}

func productID(c *fiber.Ctx) kernel.ProductID {
	return kernel.NewProductID(c.Params("id"))
}

// ============================================================================
// Public
// ============================================================================

func (h *CatalogHandlers) ListProducts(c *fiber.Ctx) error {
	filter := catalog.ListFilter{
		Search:  c.Query("search"),
		FitType: catalog.FitType(c.Query("fit_type")),
		PaginationOptions: kernel.PaginationOptions{
			Page:     c.QueryInt("page", 1),
			PageSize: c.QueryInt("limit", 20),
		},
	}

	page, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *CatalogHandlers) GetProduct(c *fiber.Ctx) error {
	p, err := h.service.GetProduct(c.UserContext(), productID(c))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *CatalogHandlers) ListVariants(c *fiber.Ctx) error {
	variants, err := h.service.ListVariants(c.UserContext(), productID(c))
	if err != nil {
		return err
	}
	return c.JSON(variants)
}

// ============================================================================
// Admin
// ============================================================================

func (h *CatalogHandlers) CreateProduct(c *fiber.Ctx) error {
	var in catalog.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return errx.Validation("invalid request body")
	}
	p, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *CatalogHandlers) UpdateProduct(c *fiber.Ctx) error {
	var in catalog.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return errx.Validation("invalid request body")
	}
	p, err := h.service.UpdateProduct(c.UserContext(), productID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (h *CatalogHandlers) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), productID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func (h *CatalogHandlers) CreateVariants(c *fiber.Ctx) error {
	variants, err := h.service.CreateVariants(c.UserContext(), productID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Variants created", "count": len(variants), "variants": variants})
}

func (h *CatalogHandlers) UploadGarmentAsset(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return catalog.ErrInvalidAsset().WithDetail("reason", "multipart field 'file' is required")
	}
	upload, err := readUpload(fh)
	if err != nil {
		return err
	}

	size, _ := kernel.ParseSize(c.FormValue("size"))
	asset, err := h.service.UploadGarmentAsset(
		c.UserContext(),
		productID(c),
		size,
		catalog.AssetType(c.FormValue("asset_type")),
		ptrx.NonEmpty(c.FormValue("note")),
		upload,
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "uploaded", "url": asset.URL, "asset": asset})
}

// UploadMannequinVideo accepts a video_url (form or query) or a multipart file
func (h *CatalogHandlers) UploadMannequinVideo(c *fiber.Ctx) error {
	in := catalogsrv.MannequinInput{
		VideoURL:        c.FormValue("video_url", c.Query("video_url")),
		DurationMS:      formInt(c, "duration_ms"),
		RotationDegrees: formInt(c, "rotation_degrees"),
	}
	if fh, err := c.FormFile("file"); err == nil {
		upload, err := readUpload(fh)
		if err != nil {
			return err
		}
		in.File = &upload
	}

	m, err := h.service.SetMannequinVideo(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "updated", "video_url": m.VideoURL})
}

func formInt(c *fiber.Ctx, key string) int {
	if v := c.FormValue(key); v != "" {
		n, _ := strconv.Atoi(v)
		return n
	}
	return c.QueryInt(key, 0)
}

func readUpload(fh *multipart.FileHeader) (catalogsrv.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return catalogsrv.Upload{}, errx.Wrap(err, "failed to open upload", errx.TypeInternal)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return catalogsrv.Upload{}, errx.Wrap(err, "failed to read upload", errx.TypeInternal)
	}
	return catalogsrv.Upload{Filename: fh.Filename, Data: data}, nil
}
