package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ayah/internal/app"
	"ayah/internal/clientstore"
	"ayah/internal/config"
	"ayah/internal/events"
	"ayah/internal/handlers"
	"ayah/internal/identity"
	"ayah/internal/logging"
	"ayah/internal/mailer"
	"ayah/internal/models"
	"ayah/internal/repositories"
	"ayah/internal/services"
	"ayah/internal/site"
	"ayah/pkg/outbound"
)

const (
	outboundTimeout = 10 * time.Second
	janitorInterval = time.Minute
	stateMaxIdle    = 2 * time.Hour
	disposableIdle  = 5 * time.Minute
)

// Application is the wired service with the resources it must release on shutdown.
type Application struct {
	App      *fiber.App
	Registry *app.Registry
	closers  []func() error
}

// Close releases client states first, then every backing connection in reverse open order.
func (a *Application) Close() error {
	a.Registry.Close()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := NewApp(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to start", zap.Error(err))
	}

	go application.Registry.RunJanitor(ctx, janitorInterval, stateMaxIdle)

	go func() {
		zl.Info("Starting server", zap.String("port", cfg.AppPort))
		if err := application.App.Listen(cfg.AppPort); err != nil {
			zl.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("Shutting down server...")

	if err := application.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("Error during Fiber shutdown", zap.Error(err))
	}
	if err := application.Close(); err != nil {
		zl.Error("Error releasing resources", zap.Error(err))
	}
	zl.Info("Server gracefully stopped")
}

// NewApp wires every component described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*Application, error) {
	application := &Application{}
	fail := func(err error) (*Application, error) {
		for i := len(application.closers) - 1; i >= 0; i-- {
			_ = application.closers[i]()
		}
		return nil, err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fail(err)
	}
	if sqlDB, err := db.DB(); err == nil {
		application.closers = append(application.closers, sqlDB.Close)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Lesson{}); err != nil {
		return fail(fmt.Errorf("failed to auto-migrate database: %w", err))
	}

	lessonRepo := repositories.NewGORMLessonRepository(db)
	if err := lessonRepo.Seed(ctx, site.Lessons()); err != nil {
		return fail(fmt.Errorf("failed to seed lessons: %w", err))
	}

	store, closeStore, err := openClientStore(ctx, cfg, zl)
	if err != nil {
		return fail(err)
	}
	application.closers = append(application.closers, closeStore)

	breakerLog := func(name string, from, to gobreaker.State) {
		zl.Warn("Circuit breaker state changed",
			zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
	}

	var idp identity.Factory
	if cfg.UsesHostedIdentity() {
		zl.Info("Using hosted identity provider", zap.String("url", cfg.IdentityURL))
		idp = identity.NewGoTrue(cfg.IdentityURL, cfg.IdentityAnonKey, outbound.New("identity", outboundTimeout, breakerLog), zl)
	} else {
		idp = identity.NewLocalDirectory(repositories.NewGORMUserRepository(db), cfg.JWTSecret, zl)
	}

	mail := mailer.Select(cfg, outbound.New("mail", outboundTimeout, breakerLog), zl)

	bus, err := events.Connect(cfg, zl)
	if err != nil {
		return fail(err)
	}
	application.closers = append(application.closers, bus.Close)

	confirmations := events.NewConfirmationHandler(mail, cfg.ContactFrom, zl)
	if err := bus.SubscribeOrderPlaced(confirmations.Handle); err != nil {
		return fail(fmt.Errorf("failed to start order consumer: %w", err))
	}

	application.Registry = app.NewRegistry(app.Deps{
		Store:          store,
		Identity:       idp,
		Publisher:      bus,
		CheckoutDelay:  cfg.CheckoutDelay,
		Logger:         zl,
		DisposableIdle: disposableIdle,
	})

	f := fiber.New(fiber.Config{
		AppName: "ayah",
	})
	f.Use(recover.New())
	f.Use(requestid.New())
	f.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))

	f.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"mail":   mail.Name(),
			"broker": brokerName(cfg),
		})
	})

	siteConfig := site.Default()
	handlers.Mount(f, application.Registry, !isDevelopment(cfg), zl,
		handlers.NewSiteHandler(siteConfig),
		handlers.NewPreferencesHandler(zl),
		handlers.NewLessonHandler(services.NewCatalogService(lessonRepo, siteConfig.Features.ShowMaterials), zl),
		handlers.NewCartHandler(zl),
		handlers.NewCheckoutHandler(zl),
		handlers.NewAuthHandler(services.NewAuthService(zl), zl),
		handlers.NewContactHandler(services.NewContactService(mail, cfg.ContactFrom, cfg.ContactTo, zl), zl),
	)

	application.App = f
	return application, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}

	level := gormlogger.Warn
	if isDevelopment(cfg) {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}

func openClientStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (clientstore.Store, func() error, error) {
	if cfg.RedisAddr == "" {
		zl.Info("Using in-memory client store")
		return clientstore.NewMemoryStore(), func() error { return nil }, nil
	}
	client, err := clientstore.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	zl.Info("Using Redis client store", zap.String("addr", cfg.RedisAddr))
	return clientstore.NewRedisStore(client, cfg.ClientStateTTL), client.Close, nil
}

func isDevelopment(cfg *config.Config) bool {
	return cfg.AppEnv == "development"
}

func brokerName(cfg *config.Config) string {
	if cfg.EventBroker == config.BrokerNone {
		return "none"
	}
	return cfg.EventBroker
}
