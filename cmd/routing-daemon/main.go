package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/routing-go/internal/adapters/httpapi"
	"github.com/andrescamacho/routing-go/internal/adapters/persistence"
	"github.com/andrescamacho/routing-go/internal/application/setup"
	"github.com/andrescamacho/routing-go/internal/infrastructure/config"
	"github.com/andrescamacho/routing-go/internal/infrastructure/database"
	"github.com/andrescamacho/routing-go/internal/infrastructure/logging"
	"github.com/andrescamacho/routing-go/internal/infrastructure/pidfile"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Parse command-line flags
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	configFlag := flag.String("config", "", "Path to config file (default: search standard locations)")
	flag.Parse()

	fmt.Printf("Routing Daemon %s\n", version)
	fmt.Println("==========================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)

	// Try to acquire the lock
	err := pf.Acquire()
	if err != nil {
		if *forceFlag {
			// Force mode: kill existing daemon and try again
			fmt.Println("Force mode enabled - attempting to kill existing daemon...")
			if killErr := pf.KillExisting(); killErr != nil {
				log.Fatalf("Failed to kill existing daemon: %v", killErr)
			}
			fmt.Println("Existing daemon killed")

			// Try to acquire lock again
			if err := pf.Acquire(); err != nil {
				log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
			}
		} else {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}
	}

	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	// Initialize application
	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	// 1. Set up logging
	logger, err := logging.Setup(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	// 2. Setup database connection
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Println("Database connected")

	// 3. Initialize the solve journal
	journalRepo := persistence.NewGormSolveJournalRepository(db, nil) // nil = use RealClock in production

	// 4. Build the application container: registries, caches, collectors,
	// mediator with every handler bound
	container, err := setup.NewContainer(cfg, logger, journalRepo, nil)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	fmt.Printf("Container ready: %d engines, %d adapters\n",
		container.Engines.Len(), container.Providers.Len())

	// 5. Initialize the HTTP server
	server := httpapi.NewServer(
		&cfg.Server,
		container.Mediator,
		logger,
		container.ResponseCache,
		container.HTTPMetrics,
		container.Uptime,
		version,
	)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("HTTP server listening on http://%s\n", server.Addr())
		serverErr <- server.Start()
	}()

	// 6. Optional metrics listener on its own port
	var metricsServer *http.Server
	if cfg.Metrics.Enabled && container.MetricsRegistry != nil {
		metricsServer = startMetricsListener(&cfg.Metrics, container.MetricsRegistry, logger)
	}

	fmt.Println("\n✓ Daemon is ready to accept connections")
	fmt.Println("Press Ctrl+C to stop")

	// Block until a shutdown signal arrives or the server dies on its own
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case sig := <-stop:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("failed to shut down metrics listener")
		}
	}

	fmt.Println("Daemon stopped")
	return nil
}

// startMetricsListener serves the prometheus registry on its own address so
// scrapes never contend with solve traffic.
func startMetricsListener(cfg *config.MetricsConfig, reg *prometheus.Registry, logger *logrus.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}

	go func() {
		fmt.Printf("Metrics listening on http://%s%s\n", srv.Addr, cfg.Path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("metrics listener failed")
		}
	}()

	return srv
}
