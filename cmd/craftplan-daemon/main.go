package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/andrescamacho/craftplan-go/internal/adapters/grpc"
	"github.com/andrescamacho/craftplan-go/internal/adapters/logging"
	"github.com/andrescamacho/craftplan-go/internal/adapters/metrics"
	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/bootstrap"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/config"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/pidfile"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search ., ./configs, /etc/craftplan)")
	flag.Parse()

	fmt.Println("craftplan daemon")
	fmt.Println("================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		log.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		log.Printf("Fatal error: %v", err)
		pf.Release()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// 1. Logger
	logger, closer, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = common.WithLogger(ctx, logger)

	// 2. Planner stack: database, catalog, storage, mediator
	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	fmt.Printf("Planner initialized (catalog: %s, storage: %s, database: %s)\n",
		cfg.Catalog.Source, cfg.Storage.Backend, cfg.Database.Type)

	// 3. Metrics endpoint
	serveErrs := make(chan error, 1)
	if cfg.Metrics.Enabled {
		metricsServer, err := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		if err != nil {
			return err
		}
		metricsServer.Start(serveErrs)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
		fmt.Printf("Metrics served on %s\n", cfg.Metrics.Endpoint())
	}

	// 4. Daemon server
	socketPath := cfg.Daemon.SocketPath
	fmt.Printf("Starting daemon server on: %s\n", socketPath)

	// Ensure socket directory exists
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	daemonServer, err := grpc.NewDaemonServer(app.Mediator, socketPath, grpc.ServerOptions{
		RequestsPerSecond: cfg.Daemon.RequestsPerSecond,
		Burst:             cfg.Daemon.Burst,
		ShutdownTimeout:   cfg.Daemon.ShutdownTimeout,
		Logger:            logger,
		DefaultCeiling:    cfg.Planner.CostCeiling,
	})
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}

	fmt.Println("\n✓ Daemon is ready to accept connections")
	fmt.Println("Press Ctrl+C to stop")

	// Serve until a signal arrives or the metrics endpoint fails
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case err := <-serveErrs:
			logger.Log("ERROR", "Metrics server failed", map[string]interface{}{"error": err.Error()})
			cancel()
		case <-serveCtx.Done():
		}
	}()

	if err := daemonServer.Start(serveCtx); err != nil {
		return fmt.Errorf("daemon server error: %w", err)
	}

	fmt.Println("\nDaemon stopped")
	return nil
}
