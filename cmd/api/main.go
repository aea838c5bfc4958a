// cmd/api/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/analytics"
	"github.com/your-org/campus-delivery-backend/internal/domain/cart"
	"github.com/your-org/campus-delivery-backend/internal/domain/catalog"
	"github.com/your-org/campus-delivery-backend/internal/domain/checkout"
	"github.com/your-org/campus-delivery-backend/internal/domain/ledger"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/domain/pricing"
	"github.com/your-org/campus-delivery-backend/internal/domain/session"
	"github.com/your-org/campus-delivery-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/campus-delivery-backend/internal/infrastructure/database/redis"
	"github.com/your-org/campus-delivery-backend/internal/infrastructure/messaging/kafka"
	"github.com/your-org/campus-delivery-backend/internal/infrastructure/metrics"
	"github.com/your-org/campus-delivery-backend/internal/infrastructure/telemetry"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/handlers"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/realtime"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/routes"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
	"github.com/your-org/campus-delivery-backend/internal/pkg/email"
	"github.com/your-org/campus-delivery-backend/internal/pkg/logger"
	"github.com/your-org/campus-delivery-backend/internal/pkg/pdf"
	"github.com/your-org/campus-delivery-backend/internal/pkg/recaptcha"
	"github.com/your-org/campus-delivery-backend/internal/pkg/sheets"
)

func main() {
	resetDB := flag.Bool("reset-db", false, "drop every table before migrating")
	dbInfo := flag.Bool("db-info", false, "print table row counts and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	appLogger.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.Setup(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to set up tracing")
	}

	// Connect to database
	db, err := postgres.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	if err := db.Health(); err != nil {
		appLogger.WithError(err).Fatal("Database health check failed")
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), appLogger)
	if *dbInfo {
		if err := migration.GetTableInfo(); err != nil {
			appLogger.WithError(err).Fatal("Failed to read table info")
		}
		return
	}
	if *resetDB {
		if cfg.IsProduction() {
			appLogger.Fatal("Refusing to reset the database in production")
		}
		if err := migration.DropAllTables(); err != nil {
			appLogger.WithError(err).Fatal("Failed to drop tables")
		}
	}
	if err := migration.RunAutoMigrations(); err != nil {
		appLogger.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		appLogger.WithError(err).Warn("Index creation failed")
	}
	if cfg.App.SeedData {
		if err := migration.SeedInitialData(); err != nil {
			appLogger.WithError(err).Warn("Data seeding failed")
		}
	}

	sessions, closeSessions, err := newSessionStore(cfg, redisClient, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open session store")
	}
	defer closeSessions()

	registry := metrics.NewRegistry()
	hub := realtime.NewHub(registry, appLogger.WithField("component", "realtime"))

	var wg sync.WaitGroup

	// Order events reach the hub directly, or through Kafka so every
	// instance feeds its own websocket subscribers
	publishers := order.Publishers{registry}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewPublisher(cfg.Kafka)
		defer producer.Close()
		publishers = append(publishers, producer)

		consumer := kafka.NewConsumer(cfg.Kafka, consumerGroup(cfg), appLogger.WithField("component", "kafka"))
		defer consumer.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Consume(ctx, hub); err != nil {
				appLogger.WithError(err).Error("Kafka consumer stopped")
			}
		}()
		appLogger.WithField("topic", cfg.Kafka.OrderTopic).Info("📡 Order events routed through Kafka")
	} else {
		publishers = append(publishers, hub)
	}

	// Customer emails go out from the instance that handled the order
	if cfg.Email.Provider != "" {
		sender, err := email.NewSender(cfg.Email)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to set up email sender")
		}
		notifier := email.NewNotifier(email.NewEmailService(cfg, sender), cfg.Email.QueueSize, appLogger.WithField("component", "email"))
		publishers = append(publishers, notifier)
		wg.Add(1)
		go func() {
			defer wg.Done()
			notifier.Run(ctx)
		}()
		appLogger.WithField("provider", cfg.Email.Provider).Info("📧 Order emails enabled")
	}

	// Services
	catalogService := catalog.NewService(db.GetDB(), cfg)
	selection := session.NewSelection(sessions, catalogService, appLogger)
	cartService := cart.NewService(sessions, selection, registry, appLogger)
	pricingService := pricing.NewService(pricing.NewGormRepository(db.GetDB()), redisClient.GetClient(), cfg, appLogger)
	orderService := order.NewService(db.GetDB(), cfg, publishers, appLogger)
	checkoutService := checkout.NewService(checkout.Dependencies{
		Carts:       cartService,
		Selection:   selection,
		Restaurants: catalogService,
		Fees:        pricingService,
		Orders:      orderService,
		Verifier:    recaptcha.NewVerifier(cfg.Recaptcha, appLogger),
		Hooks:       []order.TxHook{ledger.OutboxHook(cfg.Location())},
	}, cfg, appLogger)
	analyticsService := analytics.NewService(orderService, cfg)
	receipts := pdf.NewService(cfg)

	// Spreadsheet projection
	ledgerRepo := ledger.NewGormRepository(db.GetDB())
	var flusher handlers.LedgerFlusher
	if sheetsClient := sheets.NewClient(cfg.Sheets); sheetsClient.Enabled() {
		relay := ledger.NewRelay(ledgerRepo, sheetsClient, registry, cfg.Sheets, appLogger.WithField("component", "ledger"))
		flusher = relay
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(ctx)
		}()
		appLogger.Info("📒 Ledger relay started")
	} else {
		appLogger.Warn("SHEETS_BASE_URL not set, orders stay in the outbox until it is configured")
	}

	jwtManager := auth.NewJWTManager(cfg)
	server := http.NewServer(cfg, appLogger, http.Dependencies{
		Redis:   redisClient.GetClient(),
		Metrics: registry,
		Checks: map[string]http.HealthChecker{
			"database": db,
			"redis":    redisClient,
		},
		Handlers: routes.Handlers{
			Catalog:   handlers.NewCatalogHandler(catalogService),
			Cart:      handlers.NewCartHandler(cartService, selection, checkoutService),
			Checkout:  handlers.NewCheckoutHandler(checkoutService),
			Orders:    handlers.NewOrderHandler(orderService, receipts),
			Settings:  handlers.NewSettingsHandler(pricingService),
			Analytics: handlers.NewAnalyticsHandler(analyticsService),
			Ledger:    handlers.NewLedgerHandler(ledgerRepo, flusher),
			Realtime:  realtime.NewHandler(hub, jwtManager, cfg.Security.CORSAllowedOrigins, appLogger),
		},
		Authenticator: jwtManager,
	})

	appLogger.Info("✅ All systems operational!")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			appLogger.WithError(err).Error("HTTP server failed")
		}
		stop()
	}

	appLogger.Info("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	wg.Wait()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Warn("Failed to flush traces")
	}

	appLogger.Info("✅ Server shutdown completed")
}

// newSessionStore opens the store selected by SESSION_STORE
func newSessionStore(cfg *config.Config, redisClient *redis.Client, logger logrus.FieldLogger) (session.Store, func(), error) {
	switch cfg.Session.Store {
	case "pebble":
		store, err := session.NewPebbleStore(cfg.Session.PebbleDir, cfg.Session.TTL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close session store")
			}
		}, nil
	case "", "redis":
		return session.NewRedisStore(redisClient.GetClient(), cfg.Session.TTL), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

// consumerGroup gives each instance its own group so every instance sees every event
func consumerGroup(cfg *config.Config) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = fmt.Sprintf("pid-%d", os.Getpid())
	}
	return fmt.Sprintf("%s-realtime-%s", cfg.App.Name, host)
}
