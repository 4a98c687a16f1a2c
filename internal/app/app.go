package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storeapi/internal/config"
	"storeapi/internal/database"
	"storeapi/internal/handlers"
	"storeapi/internal/middleware"
	"storeapi/internal/repositories"
	"storeapi/internal/services"
	"storeapi/pkg/rabbitmq"
	"storeapi/pkg/validator"
)

const pingTimeout = 2 * time.Second

// App wires configuration, storage, services and HTTP routes together.
type App struct {
	Fiber *fiber.App

	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	mq     *rabbitmq.Client
}

// New builds the application. Storage follows cfg.Database.Driver and events
// are published only when cfg.RabbitMQ.URL is set.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	var (
		userRepo    repositories.UserRepository
		productRepo repositories.ProductRepository
		ping        handlers.PingFunc
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		userRepo = repositories.NewMemoryUserRepository()
		productRepo = repositories.NewMemoryProductRepository()
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		db, err := database.Open(cfg.Database, logger, !cfg.IsProduction() && cfg.Log.Level == "debug")
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		a.db = db
		userRepo = repositories.NewGORMUserRepository(db)
		productRepo = repositories.NewGORMProductRepository(db)
		ping = func(ctx context.Context) error { return database.Ping(ctx, db, pingTimeout) }
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		}, logger)
		if err != nil {
			a.closeDB()
			return nil, err
		}
		a.mq = mq
		publisher = mq
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		a.release()
		return nil, err
	}

	tokens := services.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	userService := services.NewUserService(userRepo, cfg.PasswordCost)
	authService := services.NewAuthService(userService, tokens)
	productService := services.NewProductService(productRepo, publisher, logger)

	a.Fiber = fiber.New(fiber.Config{
		AppName:               "storeapi",
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          errorHandler,
	})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(requestid.New())
	a.Fiber.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	a.Fiber.Use(middleware.RequestLogger(logger.Named("http")))

	guard := middleware.AuthRequired(tokens, logger)
	apiV1 := a.Fiber.Group("/api/v1")
	handlers.NewAuthHandler(authService, userService, v, logger).RegisterRoutes(apiV1, guard)
	handlers.NewProductHandler(productService, v, logger).RegisterRoutes(apiV1, guard)
	handlers.NewHealthHandler(ping, logger).RegisterRoutes(a.Fiber)

	return a, nil
}

// errorHandler renders errors that escape the handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	msg := "Internal server error"
	if code != fiber.StatusInternalServerError {
		msg = err.Error()
	}
	return c.Status(code).JSON(fiber.Map{
		"message": msg,
		"error":   fmt.Sprintf("HTTP_%d", code),
	})
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	a.logger.Info("starting server", zap.String("addr", a.cfg.Addr()), zap.String("env", a.cfg.AppEnv))
	return a.Fiber.Listen(a.cfg.Addr())
}

// ConsumeEvents runs the audit consumer until ctx is done. It returns
// immediately when events are disabled.
func (a *App) ConsumeEvents(ctx context.Context) error {
	if a.mq == nil {
		return nil
	}
	return a.mq.Consume(ctx, AuditHandler(a.logger.Named("audit")))
}

// Shutdown stops the HTTP server and releases the broker and database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
	}
	if err := a.release(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) release() error {
	var errs []error
	// a.mq stays set: ConsumeEvents may still be reading it, and Close is
	// safe to repeat.
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.db == nil {
		return nil
	}
	err := database.Close(a.db)
	a.db = nil
	return err
}
