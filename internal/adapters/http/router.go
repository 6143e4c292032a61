package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/bikepark/internal/pkg/metrics"
)

const defaultRequestTimeout = 15 * time.Second

// SetupRoutes registers the page, REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Map page
	app.Get("/", PageHandler())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	d := deps.RequestTimeout
	if d <= 0 {
		d = defaultRequestTimeout
	}
	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, d)
	}

	v1 := app.Group("/v1")
	v1.Get("/locations", withTimeout(ListLocationsHandler(deps)))

	sessions := v1.Group("/sessions")
	sessions.Post("/", withTimeout(CreateSessionHandler(deps)))
	sessions.Get("/:id", GetSessionHandler(deps))
	sessions.Delete("/:id", DeleteSessionHandler(deps))
	sessions.Get("/:id/markers", SessionMarkersHandler(deps))
	sessions.Get("/:id/selection", SessionSelectionHandler(deps))
	sessions.Post("/:id/markers/:markerId/click", ClickMarkerHandler(deps))
	sessions.Post("/:id/locate", LocateHandler(deps))
	sessions.Post("/:id/address", withTimeout(AddressHandler(deps)))
	sessions.Post("/:id/filter/lit", FilterLitHandler(deps))
	sessions.Post("/:id/filter/all", FilterAllHandler(deps))
	sessions.Post("/:id/directions", withTimeout(DirectionsHandler(deps)))

	// GraphQL
	app.Post("/graphql", withTimeout(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app, DefaultSpecPath)

	// WebSocket
	app.Use("/ws", wsUpgrade(deps))
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
