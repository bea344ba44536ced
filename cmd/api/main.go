package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	appanalytics "github.com/jhoicas/facturacion-dte/internal/application/analytics"
	"github.com/jhoicas/facturacion-dte/internal/application/billing"
	"github.com/jhoicas/facturacion-dte/internal/application/inventory"
	"github.com/jhoicas/facturacion-dte/internal/infrastructure/cache"
	"github.com/jhoicas/facturacion-dte/internal/infrastructure/metrics"
	"github.com/jhoicas/facturacion-dte/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/facturacion-dte/internal/interfaces/http"
	"github.com/jhoicas/facturacion-dte/pkg/config"
	"github.com/jhoicas/facturacion-dte/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("allow_negative_stock", cfg.Inventory.AllowNegativeStock).
		Msg("iniciando aplicación")

	if cfg.App.MigrateOnStart {
		if err := postgres.MigrateUp(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout)

	promMetrics := metrics.NewPrometheus(true)

	// Idempotencia opcional: sin REDIS_ADDR las solicitudes con Idempotency-Key se procesan normalmente.
	var idem billing.IdempotencyStore
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		idem = cache.NewRedisIdempotencyStore(client, "", cfg.Redis.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("almacén de idempotencia en Redis")
	}

	ledgerUC := inventory.NewStockLedgerUseCase(
		txRunner, productRepo, movementRepo,
		inventory.Options{AllowNegativeStock: cfg.Inventory.AllowNegativeStock},
		promMetrics,
	)
	lowStockUC := inventory.NewLowStockUseCase(productRepo, cfg.Inventory.LowStockThreshold)
	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, ledgerUC,
		branchRepo, clientRepo, productRepo, invoiceRepo, sequenceRepo,
		idem, promMetrics,
		billing.IdentifierConfig{Environment: cfg.DTE.Environment, POSCode: cfg.DTE.POSCode},
	)
	dashboardUC := appanalytics.NewDashboardUseCase(dashboardRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Facturación DTE API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promMetrics.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Invoices:  invoiceUC,
		Sequences: invoiceUC,
		Stock:     ledgerUC,
		LowStock:  lowStockUC,
		Dashboard: dashboardUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
