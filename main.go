package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitxp/achievements"
	"habitxp/config"
	"habitxp/database"
	"habitxp/handlers"
	"habitxp/logger"
	"habitxp/middleware"
	"habitxp/services"
	"habitxp/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootFail("load config", err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		bootFail("init logger", err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	if cfg.IsProduction() && cfg.CORSOrigins == "http://localhost:3000" {
		log.Warn("CORS_ORIGINS not properly configured for production")
	}

	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)

	db, err := database.InitDB(cfg.Database, log)
	if err != nil {
		log.Fatal("database init failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := database.InitRedis(ctx, cfg.RateLimit)
	if err != nil {
		// The in-memory limiter takes over.
		log.Warn("redis unavailable, rate limiting per instance", "error", err)
		rdb = nil
	}

	engine := achievements.NewEngine(achievements.NewGormStore(), log)
	recorder := services.NewCompletionRecorder(database.NewTxRunner(db), engine, log)
	handlers.InitHandlers(handlers.Deps{
		Recorder: recorder,
		Google:   services.NewGoogleVerifier(cfg.GoogleClientID),
		Log:      log,
		TimeZone: cfg.TimeZone,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(cfg, log),
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowCredentials: true,
	}))

	authLimiter := fiber.Handler(middleware.Disabled)
	if cfg.RateLimit.Enabled {
		general := middleware.NewLimiter(rdb, middleware.LimiterKeyPrefix("general"), cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		auth := middleware.NewLimiter(rdb, middleware.LimiterKeyPrefix("auth"), cfg.RateLimit.AuthMax, cfg.RateLimit.AuthWindow)
		startCleanup(ctx, general, cfg.RateLimit.Window)
		startCleanup(ctx, auth, cfg.RateLimit.AuthWindow)

		app.Use(middleware.RateLimit(general, log, "Muitas requisições. Tente novamente mais tarde."))
		authLimiter = middleware.RateLimit(auth, log, "Muitas tentativas de autenticação. Tente novamente mais tarde.")
	}

	handlers.SetupRoutes(app, authLimiter)

	go func() {
		log.Info("HTTP server starting",
			"port", cfg.Port,
			"env", cfg.AppEnv,
			"db_driver", cfg.Database.Driver,
			"redis", rdb != nil,
			"google_login", cfg.GoogleClientID != "",
		)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "error", err)
	}
	if err := database.CloseDB(); err != nil {
		log.Error("database close failed", "error", err)
	}
	if rdb != nil {
		closeRedis(rdb, log)
	}
}

// startCleanup evicts idle in-memory buckets. Redis keys expire on
// their own.
func startCleanup(ctx context.Context, l middleware.Limiter, window time.Duration) {
	mem, ok := l.(*middleware.MemoryLimiter)
	if !ok {
		return
	}
	go mem.RunCleanup(ctx, 5*time.Minute, 2*window)
}

func closeRedis(rdb *redis.Client, log *logger.Logger) {
	if err := rdb.Close(); err != nil {
		log.Error("redis close failed", "error", err)
	}
}

func errorHandler(cfg *config.Config, log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", "path", c.Path(), "error", err)
			// Don't expose internal errors in production
			if cfg.IsProduction() {
				message = "An error occurred. Please try again later."
			}
		}

		return c.Status(code).JSON(fiber.Map{"message": message})
	}
}

// bootFail reports errors that happen before the logger exists.
func bootFail(step string, err error) {
	_, _ = os.Stderr.WriteString("FATAL: " + step + ": " + err.Error() + "\n")
	os.Exit(1)
}
