package catalog

import (
	"net/http"

	"github.com/Abraxas-365/fittsee/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("CATALOG")

var (
	CodeProductNotFound   = ErrRegistry.Register("PRODUCT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Product not found")
	CodeInvalidProduct    = ErrRegistry.Register("INVALID_PRODUCT", errx.TypeValidation, http.StatusBadRequest, "Invalid product")
	CodeInvalidAsset      = ErrRegistry.Register("INVALID_ASSET", errx.TypeValidation, http.StatusBadRequest, "Invalid garment asset")
	CodeMannequinNotFound = ErrRegistry.Register("MANNEQUIN_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Mannequin asset not found")
	CodeMannequinSource   = ErrRegistry.Register("MANNEQUIN_SOURCE_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Provide video_url or file")
)

func ErrProductNotFound() *errx.Error   { return ErrRegistry.New(CodeProductNotFound) }
func ErrInvalidProduct() *errx.Error    { return ErrRegistry.New(CodeInvalidProduct) }
func ErrInvalidAsset() *errx.Error      { return ErrRegistry.New(CodeInvalidAsset) }
func ErrMannequinNotFound() *errx.Error { return ErrRegistry.New(CodeMannequinNotFound) }
func ErrMannequinSource() *errx.Error   { return ErrRegistry.New(CodeMannequinSource) }
