package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/logging"
	"catalog/internal/metrics"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/storage"
	"catalog/pkg/rabbitmq"
)

// application is a wired Fiber app and the resources it owns.
type application struct {
	app     *fiber.App
	store   *repositories.Store
	service *services.ProductService
	closers []func(context.Context) error
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if cfg.SeedProducts {
		seedProducts(ctx, a.service, logger)
	}

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.AppPort))
		serverErr <- a.app.Listen(cfg.AppPort)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		logger.Error("Server stopped unexpectedly", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := a.app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	if err := a.close(shutdownCtx); err != nil {
		logger.Error("Error releasing resources", zap.Error(err))
	}
	logger.Info("Server gracefully stopped")
}

// newApp connects the configured backends and builds the HTTP app.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*application, error) {
	a := &application{}

	// --- Product store ---
	store, err := repositories.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	// --- Attachment store ---
	var attachments storage.AttachmentStore
	var uploadDir string
	switch cfg.Upload.Driver {
	case config.UploadS3:
		s3Store, err := storage.NewS3Store(storage.S3Config{
			Bucket:    cfg.Upload.S3Bucket,
			Region:    cfg.Upload.S3Region,
			Endpoint:  cfg.Upload.S3Endpoint,
			AccessKey: cfg.Upload.S3AccessKey,
			SecretKey: cfg.Upload.S3SecretKey,
			Prefix:    cfg.Upload.S3Prefix,
			PublicURL: cfg.Upload.S3PublicURL,
		})
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		attachments = s3Store
	default:
		disk, err := storage.NewDiskStore(cfg.Upload.Dir, cfg.Upload.URLPrefix)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		attachments = disk
		uploadDir = disk.Dir()
	}

	// --- Event publisher ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue}, logger)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		publisher = mqClient
		a.closers = append(a.closers, func(context.Context) error { return mqClient.Close() })
	} else {
		logger.Info("RABBITMQ_URL is not set. Product events are disabled.")
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("catalog")
	if err := m.Register(reg); err != nil {
		a.close(ctx)
		return nil, err
	}

	// --- Services and handlers ---
	a.service = services.NewProductService(store.Products, attachments, publisher, m, logger)
	productHandler := handlers.NewProductHandler(a.service, logger)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.Metrics(m))

	// --- API Routes ---
	api := app.Group("/api")
	productHandler.RegisterRoutes(api)

	if uploadDir != "" {
		app.Static(cfg.Upload.URLPrefix, uploadDir, fiber.Static{Browse: false})
	}

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
				"store":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  cfg.Store.Driver,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	a.app = app
	return a, nil
}

// close releases the resources in reverse order of acquisition.
func (a *application) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// errorHandler renders errors that escape the handlers, such as an
// oversized body or an unknown route, as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": utils.StatusMessage(code),
		"error":   err.Error(),
	})
}

// seedProducts creates a few sample products when the store is empty.
func seedProducts(ctx context.Context, service *services.ProductService, logger *zap.Logger) {
	existing, err := service.ListProducts(ctx)
	if err != nil {
		logger.Error("Error checking products before seeding", zap.Error(err))
		return
	}
	if len(existing) > 0 {
		return
	}

	samples := []services.ProductFields{
		{Title: "Ceramic Mug", Category: "Home", Price: "9.99", StockQuantity: "50",
			ShortDescription: "A 350ml mug", Description: "Dishwasher-safe ceramic mug."},
		{Title: "Desk Lamp", Category: "Home", Brand: "Lumen", Price: "24.50", StockQuantity: "12",
			Weight: "1.2", Dimensions: `{"length":30,"width":12,"height":45}`,
			ShortDescription: "LED desk lamp", Description: "Adjustable LED desk lamp with three brightness levels."},
		{Title: "Notebook", Category: "Stationery", Price: "4.00", SalePrice: "3.20", StockQuantity: "200",
			ShortDescription: "A5 dotted notebook", Description: "120 pages of dotted paper.", Status: "draft"},
	}

	for _, fields := range samples {
		product, err := service.CreateProduct(ctx, fields, nil)
		if err != nil {
			logger.Error("Error seeding product", zap.String("title", fields.Title), zap.Error(err))
			continue
		}
		logger.Info("Seeded product", zap.String("title", product.Title), zap.String("id", product.ID))
	}
}
