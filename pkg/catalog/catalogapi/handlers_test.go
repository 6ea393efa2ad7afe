package catalogapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/catalog/catalogapi"
	"github.com/Abraxas-365/fittsee/pkg/catalog/cataloginfra"
	"github.com/Abraxas-365/fittsee/pkg/catalog/catalogsrv"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

type fixture struct {
	app      *fiber.App
	admin    string
	customer string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	files, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	repo := cataloginfra.NewMemoryCatalogRepository()
	svc := catalogsrv.NewCatalogService(repo, repo, files, "/static")
	tokens := auth.NewJWTService("secret", time.Hour, time.Hour, "test")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *errx.Error
			if errx.As(err, &e) {
				return c.Status(e.HTTPStatus).JSON(e.ToResponse(""))
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	catalogapi.NewCatalogHandlers(svc, auth.NewAuthMiddleware(tokens)).RegisterRoutes(app.Group("/api/v1"))

	admin, _ := tokens.GenerateAccessToken(&kernel.AuthContext{UserID: "admin", Role: kernel.RoleAdmin})
	customer, _ := tokens.GenerateAccessToken(&kernel.AuthContext{UserID: "cust", Role: kernel.RoleCustomer})
	return &fixture{app: app, admin: admin, customer: customer}
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	f := newFixture(t)
	body := `{"name":"Classic Tee","fit_type":"REGULAR"}`

	if status, _ := f.do(t, http.MethodPost, "/api/v1/admin/products", "", body); status != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", status)
	}
	if status, _ := f.do(t, http.MethodPost, "/api/v1/admin/products", f.customer, body); status != http.StatusForbidden {
		t.Errorf("expected 403 for customer, got %d", status)
	}
}

func TestProductLifecycle(t *testing.T) {
	f := newFixture(t)

	status, created := f.do(t, http.MethodPost, "/api/v1/admin/products", f.admin, `{"name":"Classic Tee","fit_type":"REGULAR"}`)
	if status != http.StatusCreated {
		t.Fatalf("create: got %d %v", status, created)
	}
	id := created["id"].(string)

	status, body := f.do(t, http.MethodPost, "/api/v1/admin/products/"+id+"/variants", f.admin, "")
	if status != http.StatusOK || body["count"] != float64(5) {
		t.Errorf("variants: got %d %v", status, body)
	}

	status, body = f.do(t, http.MethodGet, "/api/v1/products/products?search=classic", "", "")
	if status != http.StatusOK {
		t.Fatalf("list: got %d", status)
	}
	if items := body["items"].([]any); len(items) != 1 {
		t.Errorf("expected one product, got %v", items)
	}

	if status, _ = f.do(t, http.MethodDelete, "/api/v1/admin/products/"+id, f.admin, ""); status != http.StatusOK {
		t.Errorf("delete: got %d", status)
	}
	status, body = f.do(t, http.MethodGet, "/api/v1/products/products/"+id, "", "")
	if status != http.StatusNotFound || body["code"] != "CATALOG_PRODUCT_NOT_FOUND" {
		t.Errorf("expected soft-deleted product to 404, got %d %v", status, body)
	}
}
