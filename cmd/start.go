package cmd

import (
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"rental-sync/core/config"
	"rental-sync/core/database"
	"rental-sync/core/loader"
	"rental-sync/core/logger"
	"rental-sync/core/middleware/auth"
	"rental-sync/core/middleware/rayid"
	"rental-sync/core/storage"

	"rental-sync/feature/booking"
	"rental-sync/feature/channel"
	syncfeature "rental-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the synchronization server",
	Long:  `Starts the HTTP server, the sync scheduler and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}

		store, err := storage.New(db)
		if err != nil {
			logg.Fatal("Failed to initialize storage", zap.Error(err))
		}

		// 4. Build the sync pipeline. The online flag is shared between the
		// transport gate and the scheduler.
		online := &atomic.Bool{}
		online.Store(true)

		pool := channel.NewProxyPool(cfg.Sync.ProxyBase)
		transport := channel.NewTransport(pool, online.Load,
			time.Duration(cfg.Sync.TimeoutSeconds)*time.Second, logg)
		engine := syncfeature.NewEngine(store, transport, logg)
		syncSvc := syncfeature.NewService(store, engine, online, logg)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		mgr.Register(booking.NewFeature(store, logg))
		mgr.Register(channel.NewFeature(store, logg, syncSvc))
		mgr.Register(syncfeature.NewFeature(syncSvc))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start the Scheduler
		if err := syncSvc.Start(cfg.Sync.Interval); err != nil {
			logg.Fatal("Failed to start sync scheduler", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("port", cfg.Server.Port),
				zap.String("sync_interval", cfg.Sync.Interval),
			)
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		syncSvc.Stop()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
