package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/asyncx"
	"github.com/Abraxas-365/fittsee/pkg/catalog/catalogapi"
	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/profile/profileapi"
	"github.com/Abraxas-365/fittsee/pkg/render/renderapi"
	"github.com/Abraxas-365/fittsee/pkg/tryon/tryonapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const healthTimeout = 3 * time.Second

// runServer serves the HTTP API until SIGINT/SIGTERM.
func runServer(container *Container) error {
	cfg := container.Config

	app := fiber.New(fiber.Config{
		AppName:               "Fittsee API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             cfg.Server.BodyLimitMB * 1024 * 1024,
		IdleTimeout:           120 * time.Second,
	})

	// Global middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !cfg.IsProduction(),
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// Health, info and static files
	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler)
	if cfg.Storage.Mode == "local" && strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		app.Static(cfg.Storage.PublicBaseURL, cfg.Storage.LocalPath)
	}

	// API routes
	api := app.Group("/api/v1")
	mw := container.IAM.AuthMiddleware

	container.IAM.AuthHandlers.RegisterRoutes(api)
	profileapi.NewProfileHandlers(container.ProfileService, mw).RegisterRoutes(api)
	catalogapi.NewCatalogHandlers(container.CatalogService, mw).RegisterRoutes(api)
	tryonapi.NewTryOnHandlers(container.TryOnService, mw).RegisterRoutes(api)
	renderapi.NewRenderHandlers(container.RenderService, mw).RegisterRoutes(api)
	logx.Info("✓ API routes registered")

	app.Use(notFoundHandler)

	printRouteSummary()

	errCh := make(chan error, 1)
	go func() {
		logx.Info(strings.Repeat("=", 61))
		logx.Infof("🚀 Server listening on port %s", cfg.Server.Port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", cfg.Server.Port)
		logx.Info(strings.Repeat("=", 61))
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	return gracefulShutdown(app, cfg.Server.ShutdownTimeout, errCh)
}

// ============================================================================
// Handlers
// ============================================================================

// healthCheckHandler pings the database and Redis and reads the render queue
// depth concurrently. Any failure degrades the response to 503.
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		queue := container.Config.Render.Queue
		results := asyncx.AllSettled(ctx,
			func(ctx context.Context) (any, error) {
				return "healthy", container.DB.PingContext(ctx)
			},
			func(ctx context.Context) (any, error) {
				return "healthy", container.Queue.Ping(ctx)
			},
			func(ctx context.Context) (any, error) {
				n, err := container.Jobs.Depth(ctx, queue)
				return n, err
			},
		)

		health := fiber.Map{
			"status":  "healthy",
			"service": "fittsee-api",
			"version": getEnv("APP_VERSION", "1.0.0"),
		}
		for i, name := range []string{"db", "redis", "render_queue_depth"} {
			r := results[i]
			if !r.OK() {
				health[name] = "unhealthy"
				health[name+"_error"] = r.Err.Error()
				health["status"] = "degraded"
				continue
			}
			health[name] = r.Value
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

func infoHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":     "Fittsee API",
		"version":     getEnv("APP_VERSION", "1.0.0"),
		"description": "Virtual try-on for apparel",
		"endpoints": fiber.Map{
			"health":   "/health",
			"auth":     "/api/v1/auth",
			"profile":  "/api/v1/profile",
			"products": "/api/v1/products/products",
			"try":      "/api/v1/try/:product_id",
			"renders":  "/api/v1/renders",
		},
	})
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errx.Response{
		Error:     fmt.Sprintf("route %s %s not found", c.Method(), c.Path()),
		Code:      "NOT_FOUND",
		Type:      string(errx.TypeNotFound),
		Status:    fiber.StatusNotFound,
		RequestID: requestID(c),
	})
}

// ============================================================================
// Error handler
// ============================================================================

// globalErrorHandler converts errors to the standard JSON body
func globalErrorHandler(c *fiber.Ctx, err error) error {
	log := logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": requestID(c),
	}).WithError(err)

	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(errx.Response{
			Error:     e.Message,
			Code:      "FIBER_ERROR",
			Type:      string(errx.TypeValidation),
			Status:    e.Code,
			RequestID: requestID(c),
		})
	}

	var e *errx.Error
	if errx.As(err, &e) {
		if e.HTTPStatus >= fiber.StatusInternalServerError {
			log.Error("request failed")
		} else {
			log.Debug("request rejected")
		}
		return c.Status(e.HTTPStatus).JSON(e.ToResponse(requestID(c)))
	}

	log.Error("unhandled request error")
	return c.Status(fiber.StatusInternalServerError).JSON(errx.Response{
		Error:     "Internal Server Error",
		Code:      "INTERNAL_ERROR",
		Type:      string(errx.TypeInternal),
		Status:    fiber.StatusInternalServerError,
		RequestID: requestID(c),
	})
}

// ============================================================================
// Utilities
// ============================================================================

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

func printRouteSummary() {
	logx.Info("📋 Route Summary:")
	logx.Info("   ├─ Auth: /api/v1/auth/*")
	logx.Info("   ├─ Profile: /api/v1/profile/*")
	logx.Info("   ├─ Catalog: /api/v1/products/*, /api/v1/admin/*")
	logx.Info("   ├─ Try-on: /api/v1/try/:product_id")
	logx.Info("   ├─ Renders: /api/v1/renders/*")
	logx.Info("   └─ Health: /health")
}

// gracefulShutdown waits for a signal or a listen error and drains the server
func gracefulShutdown(app *fiber.App, timeout time.Duration, errCh <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigChan:
		logx.Infof("🛑 Received signal: %v", sig)
	}

	logx.Info("Shutting down gracefully...")
	if err := app.ShutdownWithTimeout(timeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
		return err
	}
	logx.Info("✅ Server exited successfully")
	return nil
}
