package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/bikepark/internal/adapters/feed"
	"github.com/samirrijal/bikepark/internal/adapters/googlemaps"
	"github.com/samirrijal/bikepark/internal/adapters/http"
	"github.com/samirrijal/bikepark/internal/adapters/memory"
	natsadapter "github.com/samirrijal/bikepark/internal/adapters/nats"
	"github.com/samirrijal/bikepark/internal/adapters/nominatim"
	"github.com/samirrijal/bikepark/internal/adapters/valkey"
	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/ports"
	"github.com/samirrijal/bikepark/internal/core/usecases"
	"github.com/samirrijal/bikepark/internal/pkg/config"
	"github.com/samirrijal/bikepark/internal/pkg/logging"
	"github.com/samirrijal/bikepark/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("bikepark-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{
		FeedURL:        cfg.Feed.URL,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		Version:        version,
	}

	// Cache (optional)
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS (optional)
	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer nc.Close()
			publisher = nc
			deps.Broker = nc
		}

		// Raw NATS connection for WebSocket relay
		conn, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			sub := natsadapter.NewSubscriber(conn)
			defer sub.Close()
			deps.Events = sub
		}
	}

	// Mapping services
	geocoder, directions, err := mappingServices(cfg.Maps)
	if err != nil {
		log.Fatalf("maps: %v", err)
	}

	// Repos
	sessionRepo := memory.NewSessionRepo()

	// Use cases
	feedClient := feed.NewClient(time.Duration(cfg.Feed.Timeout)*time.Second, cfg.Maps.UserAgent)
	deps.Locations = usecases.NewLocationStore(feedClient, cache, cfg.Feed.CacheTTL)
	deps.Sessions = usecases.NewSessionService(sessionRepo, deps.Locations, usecases.NewMarkerPresenter(), publisher, usecases.SessionOptions{
		FeedURL: cfg.Feed.URL,
		Viewport: domain.Viewport{
			Center: domain.GeoPoint{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng},
			Zoom:   cfg.Map.Zoom,
		},
		IdleTTL: cfg.Session.IdleTTLDuration(),
	})
	deps.Filter = usecases.NewFilterService(sessionRepo, publisher)
	deps.Geocoding = usecases.NewGeocodingService(sessionRepo, geocoder, cache, publisher, cfg.Maps.GeocodeCacheTTL)
	deps.Directions = usecases.NewDirectionsService(sessionRepo, directions, publisher)

	go deps.Sessions.RunSweeper(ctx, cfg.Session.SweepIntervalDuration())

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // request bodies are small JSON objects
		AppName:      "Bike Parking Map",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "geocoder", geocoder.Name(), "feed", cfg.Feed.URL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// mappingServices picks the geocoder named in cfg. Directions always use
// Google; without an API key every route request is denied.
func mappingServices(cfg config.MapsConfig) (ports.Geocoder, ports.DirectionsProvider, error) {
	var directions ports.DirectionsProvider = googlemaps.Unconfigured{}
	var google *googlemaps.Client
	if cfg.APIKey != "" {
		c, err := googlemaps.NewClient(cfg.APIKey)
		if err != nil {
			return nil, nil, err
		}
		google = c
		directions = c
	} else {
		slog.Warn("maps.api_key not set, directions are disabled")
	}

	switch cfg.Geocoder {
	case "nominatim":
		return nominatim.NewClient(cfg.NominatimURL, cfg.UserAgent, time.Duration(cfg.Timeout)*time.Second), directions, nil
	default:
		if google == nil {
			return nil, nil, fmt.Errorf("geocoder %q requires maps.api_key", cfg.Geocoder)
		}
		return google, directions, nil
	}
}
