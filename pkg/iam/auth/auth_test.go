package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth"
	"github.com/Abraxas-365/fittsee/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/fittsee/pkg/iam/user"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type memUsers struct {
	mu    sync.Mutex
	byID  map[kernel.UserID]*user.User
	email map[string]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[kernel.UserID]*user.User{}, email: map[string]*user.User{}}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[u.Email]; ok {
		return user.ErrEmailTaken()
	}
	m.byID[u.ID] = u
	m.email[u.Email] = u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound()
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.email[user.NormalizeEmail(email)]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound()
}

type recordingProfiles struct {
	created []kernel.UserID
}

func (r *recordingProfiles) EnsureProfile(_ context.Context, id kernel.UserID) error {
	r.created = append(r.created, id)
	return nil
}

type fixture struct {
	service  *auth.Service
	tokens   *auth.JWTService
	users    *memUsers
	profiles *recordingProfiles
	app      *fiber.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := newMemUsers()
	profiles := &recordingProfiles{}
	tokens := auth.NewJWTService("secret", time.Hour, 24*time.Hour, "test")
	service := auth.NewService(users, authinfra.NewBcryptPasswordService(4), tokens, profiles, authinfra.NewLogxAuditService())
	middleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*errx.Error); ok {
				return c.Status(e.HTTPStatus).JSON(e.ToResponse(""))
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	api := app.Group("/api/v1")
	auth.NewAuthHandlers(service, middleware).RegisterRoutes(api)
	api.Get("/admin/ping", middleware.Authenticate(), middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	return &fixture{service: service, tokens: tokens, users: users, profiles: profiles, app: app}
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestJWTRoundTripAndTypeCheck(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Hour, time.Hour, "test")
	ac := &kernel.AuthContext{UserID: "u-1", Email: "a@b.co", Role: kernel.RoleAdmin}

	access, err := svc.GenerateAccessToken(ac)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.ValidateAccessToken(access)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u-1" || claims.Role != kernel.RoleAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ValidateRefreshToken(access); !errx.IsCode(err, auth.CodeInvalidRefreshToken) {
		t.Errorf("access token must not be accepted as refresh, got %v", err)
	}

	other := auth.NewJWTService("other-secret", time.Hour, time.Hour, "test")
	if _, err := other.ValidateAccessToken(access); err == nil {
		t.Error("expected signature mismatch to fail")
	}
}

func TestExpiredToken(t *testing.T) {
	svc := auth.NewJWTService("secret", -time.Minute, time.Hour, "test")
	token, err := svc.GenerateAccessToken(&kernel.AuthContext{UserID: "u-1", Role: kernel.RoleCustomer})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Error("expected expired token to fail")
	}
}

func TestRegisterLoginRefreshMe(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "Alice@Example.com", "password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %v", resp.StatusCode, body)
	}
	if body["email"] != "alice@example.com" || body["role"] != "CUSTOMER" {
		t.Errorf("unexpected register body: %v", body)
	}
	if len(f.profiles.created) != 1 {
		t.Errorf("expected profile to be created on register")
	}

	resp, body = doJSON(t, f.app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "secret123",
	})
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "USER_EMAIL_TAKEN" {
		t.Errorf("expected duplicate email to fail, got %d %v", resp.StatusCode, body)
	}

	form := url.Values{"username": {"alice@example.com"}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginResp, err := f.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var pair auth.TokenPair
	if err := json.NewDecoder(loginResp.Body).Decode(&pair); err != nil {
		t.Fatal(err)
	}
	if loginResp.StatusCode != http.StatusOK || pair.AccessToken == "" || pair.TokenType != "bearer" {
		t.Fatalf("unexpected login response: %d %+v", loginResp.StatusCode, pair)
	}

	resp, body = doJSON(t, f.app, http.MethodGet, "/api/v1/auth/me", pair.AccessToken, nil)
	if resp.StatusCode != http.StatusOK || body["email"] != "alice@example.com" {
		t.Errorf("me: unexpected %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, f.app, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	if resp.StatusCode != http.StatusOK || body["access_token"] == "" {
		t.Errorf("refresh: unexpected %d %v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, f.app, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": pair.AccessToken,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("refresh with access token: expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Register(ctx, "bob@example.com", "secret123", auth.RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	_, err := f.service.Login(ctx, "bob@example.com", "wrong-pass", auth.RequestMeta{})
	if !errx.IsCode(err, auth.CodeInvalidCredentials) {
		t.Errorf("expected invalid credentials, got %v", err)
	}
	_, err = f.service.Login(ctx, "nobody@example.com", "secret123", auth.RequestMeta{})
	if !errx.IsCode(err, auth.CodeInvalidCredentials) {
		t.Errorf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Register(ctx, "not-an-email", "secret123", auth.RequestMeta{}); !errx.IsCode(err, user.CodeInvalidEmail) {
		t.Errorf("expected invalid email, got %v", err)
	}
	if _, err := f.service.Register(ctx, "c@example.com", "short", auth.RequestMeta{}); !errx.IsCode(err, user.CodeWeakPassword) {
		t.Errorf("expected weak password, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodGet, "/api/v1/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized || body["code"] != "AUTH_UNAUTHENTICATED" {
		t.Errorf("expected 401 without token, got %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, f.app, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized || body["code"] != "AUTH_INVALID_TOKEN" {
		t.Errorf("expected 401 for bad token, got %d %v", resp.StatusCode, body)
	}

	customer, _ := f.tokens.GenerateAccessToken(&kernel.AuthContext{UserID: "u-1", Role: kernel.RoleCustomer})
	resp, body = doJSON(t, f.app, http.MethodGet, "/api/v1/admin/ping", customer, nil)
	if resp.StatusCode != http.StatusForbidden || body["code"] != "AUTH_ADMIN_ONLY" {
		t.Errorf("expected 403 for customer on admin route, got %d %v", resp.StatusCode, body)
	}

	admin, _ := f.tokens.GenerateAccessToken(&kernel.AuthContext{UserID: "u-2", Role: kernel.RoleAdmin})
	resp, _ = doJSON(t, f.app, http.MethodGet, "/api/v1/admin/ping", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.EnsureAdmin(ctx, "Admin@Fittsee.local", "admin12345")
	if err != nil || !created {
		t.Fatalf("expected admin to be created, got %v %v", created, err)
	}
	created, err = f.service.EnsureAdmin(ctx, "admin@fittsee.local", "other-password")
	if err != nil || created {
		t.Fatalf("expected second call to be a no-op, got %v %v", created, err)
	}

	u, err := f.users.FindByEmail(ctx, "admin@fittsee.local")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != kernel.RoleAdmin {
		t.Errorf("expected ADMIN role, got %s", u.Role)
	}
	if len(f.profiles.created) != 1 || f.profiles.created[0] != u.ID {
		t.Errorf("expected one profile for the admin, got %v", f.profiles.created)
	}

	pair, err := f.service.Login(ctx, "admin@fittsee.local", "admin12345", auth.RequestMeta{})
	if err != nil || pair.AccessToken == "" {
		t.Errorf("expected admin login to succeed, got %v", err)
	}
}
