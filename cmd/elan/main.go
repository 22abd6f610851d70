package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/terraincognita07/elan/internal/api"
	"github.com/terraincognita07/elan/internal/cache"
	"github.com/terraincognita07/elan/internal/cli"
	"github.com/terraincognita07/elan/internal/config"
	"github.com/terraincognita07/elan/internal/db"
	"github.com/terraincognita07/elan/internal/i18n"
	"github.com/terraincognita07/elan/internal/logger"
	"github.com/terraincognita07/elan/internal/media"
	"github.com/terraincognita07/elan/internal/services"
	"gorm.io/gorm"
)

const usage = `usage:
  elan [serve]
  elan reset-password <email>
  elan create-admin <email>`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := "serve"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	time.Local = mustLoadLocation(cfg.Timezone)

	log, err := logger.New(cfg.Environment)
	if err != nil {
		return err
	}
	defer log.Sync()

	database, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN(), log)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx := context.Background()
	switch command {
	case "serve":
		return serve(cfg, log, database)
	case "reset-password":
		email, err := singleEmailArgument(args)
		if err != nil {
			return err
		}
		return cli.RunResetPasswordCommand(ctx, database, email, os.Stdout)
	case "create-admin":
		email, err := singleEmailArgument(args)
		if err != nil {
			return err
		}
		return cli.RunCreateAdminCommand(ctx, database, email, cli.TerminalPasswordSource(os.Stdin, os.Stdout), os.Stdout)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func serve(cfg *config.Config, log *logger.Logger, database *gorm.DB) error {
	port, err := resolvePort(cfg.Port)
	if err != nil {
		return err
	}

	i18nManager, err := i18n.NewManager(cfg.DefaultLanguage, i18n.Locales())
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()

	var catalogCache services.CurriculumCache = cache.NopCatalogCache{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCatalogCache(startupCtx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CatalogCacheTTL,
		})
		if err != nil {
			log.Warn("catalog cache disabled", "error", err)
		} else {
			defer redisCache.Close()
			catalogCache = redisCache
		}
	}

	var videoSigner *media.VideoSigner
	if cfg.MediaSigningEnabled() {
		videoSigner, err = media.NewS3VideoSigner(startupCtx, media.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			TTL:       cfg.VideoURLTTL,
		})
		if err != nil {
			return fmt.Errorf("media signer init failed: %w", err)
		}
	}

	handler, err := api.NewHandler(database, api.HandlerOptions{
		SecretKey:    cfg.SecretKey,
		CookieSecure: cfg.CookieSecure(),
		Development:  cfg.IsDevelopment(),
		I18n:         i18nManager,
		Logger:       log,
		CatalogCache: catalogCache,
		VideoSigner:  videoSigner,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Elan",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(compress.New())
	app.Use(handler.LanguageMiddleware)
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure())))

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("elan listening", "port", port, "db_driver", cfg.DBDriver, "env", cfg.Environment, "tz", time.Local.String())
	if err := app.Listen(":" + port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

// csrfMiddlewareConfig reads the token from a header so fetch and htmx
// clients can send it alongside JSON bodies.
func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "elan_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
		Expiration:     12 * time.Hour,
	}
}

func resolvePort(raw string) (string, error) {
	if raw == "" {
		return "8080", nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return strconv.Itoa(port), nil
}

func singleEmailArgument(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", errors.New(usage)
	}
	return args[0], nil
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return location
}
