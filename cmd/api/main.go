package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/spin-wheel-promo/internal/catalog"
	"github.com/fairyhunter13/spin-wheel-promo/internal/config"
	"github.com/fairyhunter13/spin-wheel-promo/internal/handler"
	"github.com/fairyhunter13/spin-wheel-promo/internal/repository"
	"github.com/fairyhunter13/spin-wheel-promo/internal/service"
	"github.com/fairyhunter13/spin-wheel-promo/internal/validator"
	"github.com/fairyhunter13/spin-wheel-promo/internal/wheel"
	"github.com/fairyhunter13/spin-wheel-promo/pkg/database"
)

// awardStore is what the service and handlers need from the ledger.
type awardStore interface {
	service.AwardRecorder
	handler.AwardReader
	handler.Pinger
}

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	prizes, err := catalog.Load(cfg.Wheel.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Wheel.CatalogFile).Msg("failed to load prize catalog")
	}
	log.Info().Int("prizes", len(prizes)).Msg("prize catalog loaded")

	// The award ledger is optional; without a database awards are only logged.
	var store awardStore = repository.NewNopAwardRepository()
	var closeDB func()
	if cfg.DB.Enabled {
		pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.Retries)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		store = repository.NewAwardRepository(pool)
		closeDB = pool.Close
	} else {
		log.Warn().Msg("DB_ENABLED=false, awards will not be persisted")
	}

	sessions, err := service.NewSessionService(store, service.Options{
		Catalog: prizes,
		Timings: wheel.Timings{
			Anticipation: cfg.Wheel.Anticipation,
			Spin:         cfg.Wheel.Spin,
			Celebration:  cfg.Wheel.Celebration,
		},
		Rotations:       wheel.RotationRange{Min: cfg.Wheel.MinRotations, Max: cfg.Wheel.MaxRotations},
		Seed:            cfg.Wheel.Seed,
		ValidationDelay: cfg.Wizard.ValidationDelay,
		MaxUploadBytes:  cfg.Wizard.MaxUploadBytes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session service")
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	go sessions.RunJanitor(janitorCtx, cfg.Wizard.CleanupInterval, cfg.Wizard.SessionTTL)

	app := fiber.New(fiber.Config{
		AppName:      "Spin Wheel Promo",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	validate := validator.New()

	healthHandler := handler.NewHealthHandler(store)
	wheelHandler := handler.NewWheelHandler(sessions)
	sessionHandler := handler.NewSessionHandler(sessions, validate)
	awardHandler := handler.NewAwardHandler(store)

	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/wheel", wheelHandler.GetWheel)
	api.Get("/wheel.svg", wheelHandler.GetWheelSVG)
	sessionHandler.Register(api)
	api.Get("/awards", awardHandler.ListAwards)
	api.Get("/awards/stats", awardHandler.Stats)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Stop wheels before the ledger goes away so no settle callback writes to a closed pool.
	stopJanitor()
	sessions.Close()
	log.Info().Msg("sessions closed")

	if closeDB != nil {
		log.Info().Msg("closing database connections...")
		closeDB()
		log.Info().Msg("database connections closed")
	}
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
