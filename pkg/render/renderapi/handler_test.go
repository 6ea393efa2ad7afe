package renderapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/catalog"
	"github.com/Abraxas-365/fittsee/pkg/catalog/cataloginfra"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth"
	"github.com/Abraxas-365/fittsee/pkg/jobx"
	"github.com/Abraxas-365/fittsee/pkg/jobx/jobxmem"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/profile"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
	"github.com/Abraxas-365/fittsee/pkg/render/renderapi"
	"github.com/Abraxas-365/fittsee/pkg/render/renderinfra"
	"github.com/Abraxas-365/fittsee/pkg/render/rendersrv"
	"github.com/gofiber/fiber/v2"
)

type profiles map[kernel.UserID]*profile.Profile

func (p profiles) FindByUserID(_ context.Context, id kernel.UserID) (*profile.Profile, error) {
	if found, ok := p[id]; ok {
		return found, nil
	}
	return nil, profile.ErrProfileNotFound()
}

type env struct {
	app     *fiber.App
	product *catalog.Product
	tokens  map[kernel.UserID]string
}

func setup(t *testing.T) *env {
	t.Helper()

	complete := profile.NewEmpty("owner")
	complete.HeightCM, complete.ChestCM, complete.ShouldersCM = ptrx.Float64(178), ptrx.Float64(96), ptrx.Float64(45)
	partial := profile.NewEmpty("partial")
	partial.HeightCM = ptrx.Float64(160)

	products := cataloginfra.NewMemoryCatalogRepository()
	product := catalog.NewProduct(catalog.ProductInput{Name: "Classic Tee", Category: "tshirt", FitType: catalog.FitRegular})
	if err := products.Create(context.Background(), product); err != nil {
		t.Fatal(err)
	}

	svc := rendersrv.NewService(
		renderinfra.NewMemoryRepository(),
		profiles{"owner": complete, "partial": partial},
		products,
		jobx.NewClient(jobxmem.NewMemoryQueue()),
		rendersrv.Options{Queue: "renders", EnqueueAttempts: 1, EnqueueBackoff: time.Millisecond},
	)
	jwt := auth.NewJWTService("secret", time.Hour, time.Hour, "test")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *errx.Error
			if errx.As(err, &e) {
				return c.Status(e.HTTPStatus).JSON(e.ToResponse(""))
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	renderapi.NewRenderHandlers(svc, auth.NewAuthMiddleware(jwt)).RegisterRoutes(app.Group("/api/v1"))

	e := &env{app: app, product: product, tokens: map[kernel.UserID]string{}}
	for _, ac := range []kernel.AuthContext{
		{UserID: "owner", Email: "o@fittsee.local", Role: kernel.RoleCustomer},
		{UserID: "partial", Email: "p@fittsee.local", Role: kernel.RoleCustomer},
		{UserID: "ghost", Email: "g@fittsee.local", Role: kernel.RoleCustomer},
		{UserID: "stranger", Email: "s@fittsee.local", Role: kernel.RoleCustomer},
		{UserID: "staff", Email: "a@fittsee.local", Role: kernel.RoleAdmin},
	} {
		token, err := jwt.GenerateAccessToken(&ac)
		if err != nil {
			t.Fatal(err)
		}
		e.tokens[ac.UserID] = token
	}
	return e
}

func (e *env) do(t *testing.T, method, path, body string, user kernel.UserID) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[user])
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (e *env) createBody(size string) string {
	return `{"product_id":"` + e.product.ID.String() + `","size":"` + size + `"}`
}

func TestCreateAndPollJob(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodPost, "/api/v1/renders", e.createBody("M"), "owner")
	if status != http.StatusOK {
		t.Fatalf("create: got %d %v", status, body)
	}
	if body["status"] != "QUEUED" || body["progress"] != float64(0) || body["video_url"] != nil {
		t.Errorf("unexpected created job: %v", body)
	}
	if _, leaked := body["user_id"]; leaked {
		t.Error("owner id must not be serialized")
	}
	id, _ := body["job_id"].(string)
	if id == "" {
		t.Fatalf("expected job_id, got %v", body)
	}

	status, body = e.do(t, http.MethodGet, "/api/v1/renders/"+id, "", "owner")
	if status != http.StatusOK || body["job_id"] != id || body["size"] != "M" {
		t.Errorf("owner poll: got %d %v", status, body)
	}

	status, _ = e.do(t, http.MethodGet, "/api/v1/renders/"+id, "", "staff")
	if status != http.StatusOK {
		t.Errorf("admin poll: expected 200, got %d", status)
	}

	status, body = e.do(t, http.MethodGet, "/api/v1/renders/"+id, "", "stranger")
	if status != http.StatusForbidden || body["code"] != "FORBIDDEN" {
		t.Errorf("stranger poll: expected 403 FORBIDDEN, got %d %v", status, body)
	}
}

func TestCreateJobErrors(t *testing.T) {
	e := setup(t)

	cases := []struct {
		name   string
		body   string
		user   kernel.UserID
		status int
		code   string
	}{
		{"missing size", e.createBody(""), "owner", http.StatusBadRequest, "INVALID_SIZE"},
		{"unknown size", e.createBody("XXL"), "owner", http.StatusBadRequest, "INVALID_SIZE"},
		{"no profile", e.createBody("M"), "ghost", http.StatusConflict, "PROFILE_MISSING"},
		{"partial profile", e.createBody("M"), "partial", http.StatusConflict, "PROFILE_INCOMPLETE"},
		{"unknown product", `{"product_id":"nope","size":"M"}`, "owner", http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := e.do(t, http.MethodPost, "/api/v1/renders", tc.body, tc.user)
			if status != tc.status || body["code"] != tc.code {
				t.Errorf("expected %d %s, got %d %v", tc.status, tc.code, status, body)
			}
		})
	}
}

func TestProfileIncompleteListsMissingFields(t *testing.T) {
	e := setup(t)

	_, body := e.do(t, http.MethodPost, "/api/v1/renders", e.createBody("L"), "partial")
	details, _ := body["details"].(map[string]any)
	missing, _ := details["missing_fields"].([]any)
	if len(missing) != 2 || missing[0] != "chest_cm" || missing[1] != "shoulders_cm" {
		t.Errorf("expected [chest_cm shoulders_cm], got %v", details)
	}
}

func TestGetUnknownJob(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodGet, "/api/v1/renders/"+kernel.NewJobID().String(), "", "owner")
	if status != http.StatusNotFound || body["code"] != "JOB_NOT_FOUND" {
		t.Errorf("expected 404 JOB_NOT_FOUND, got %d %v", status, body)
	}
}

func TestRendersRequireAuth(t *testing.T) {
	e := setup(t)

	status, _ := e.do(t, http.MethodPost, "/api/v1/renders", e.createBody("M"), "")
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
}
