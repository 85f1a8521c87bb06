package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"travel-ops/core/loader"
	"travel-ops/core/logger"
	"travel-ops/core/metrics"
	"travel-ops/core/middleware/auth"
	"travel-ops/core/middleware/rayid"
	"travel-ops/core/migrate"

	"travel-ops/feature/departures"
	"travel-ops/feature/integrity"
	"travel-ops/feature/snapshot"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the travel ops server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration, logger and stores. The database is optional.
		d, err := loadDeps(ctx, false)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer d.Close(ctx)
		logg := d.logger
		zap.ReplaceGlobals(logg)
		cfg := d.cfg

		// 2. Metrics
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(cfg.Metrics.Namespace, reg)

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager()
		snapshotFeature := snapshot.NewFeature(d.backend, logg, m)
		mgr.Register(departures.NewFeature(d.db, logg, m))
		mgr.Register(snapshotFeature)
		mgr.Register(integrity.NewFeature(integrity.Options{
			DB:             d.db,
			Client:         d.store,
			Bucket:         cfg.Storage.Bucket,
			Region:         cfg.Storage.Region,
			SnapshotObject: cfg.Snapshot.ObjectName,
			Backend:        d.backend,
		}, logg))

		snapshotFeature.Manager().Subscribe(func(state migrate.State) {
			logg.Debug("Snapshot state changed", zap.Int("schema_version", state.Version()))
		})

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray id
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

		// 3. Auth. The scrape endpoint stays public.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{cfg.Metrics.Path}}))
		app.Get(cfg.Metrics.Path, m.Handler())

		// 5. Load Features
		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Graceful shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
