package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "guestsync/internal/common/api"
	"guestsync/internal/config"
	"guestsync/internal/connectors"
	"guestsync/internal/database"
	"guestsync/internal/features/ledger"
	"guestsync/internal/features/mapping"
	"guestsync/internal/features/sync"
	"guestsync/internal/features/tenant"
	"guestsync/internal/logger"
	"guestsync/internal/middleware"
	"guestsync/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	utils.SetSecret(cfg.JWTSecret)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, connRepo tenant.ConnectionRepository, mappingRepo mapping.MappingRepository, ledgerRepo ledger.LedgerRepository, markerRepo ledger.MarkerRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := connRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure tenant connection indexes: %v", err)
				}
				if err := mappingRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure mapping indexes: %v", err)
				}
				if err := ledgerRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure ledger indexes: %v", err)
				}
				if err := markerRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure marker indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// ScheduleLedgerExport runs the warehouse export on the configured schedule.
func ScheduleLedgerExport(lc fx.Lifecycle, cfg *config.Config, ledgerSvc ledger.LedgerService, zapLogger *zap.Logger) {
	if cfg.LedgerPGDSN == "" {
		zapLogger.Info("ledger warehouse not configured; export scheduler disabled")
		return
	}

	scheduler := cron.New()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := scheduler.AddFunc(cfg.ExportSchedule, func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				if _, err := ledgerSvc.Export(ctx); err != nil {
					zapLogger.Error("scheduled ledger export failed", zap.Error(err))
				}
			})
			if err != nil {
				return err
			}
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// External collaborators
			connectors.NewGHLClient,
			connectors.NewVenueDirectory,
			connectors.NewWarehouseExporter,

			// Initialize Repository
			tenant.NewConnectionRepository,
			mapping.NewMappingRepository,
			ledger.NewLedgerRepository,
			ledger.NewMarkerRepository,

			// Initialize Service
			tenant.NewConnectionService,
			mapping.NewMappingService,
			ledger.NewLedgerService,
			sync.NewSyncService,

			// Initialize Controller
			tenant.NewConnectionController,
			mapping.NewMappingController,
			ledger.NewLedgerController,
			sync.NewSyncController,

			// Initialize API Routes
			AsRoute(tenant.NewTenantApi),
			AsRoute(mapping.NewMappingApi),
			AsRoute(ledger.NewLedgerApi),
			AsRoute(sync.NewSyncApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
			ScheduleLedgerExport,
		),
	)

	app.Run()
}
