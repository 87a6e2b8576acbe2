package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"rentiva-backend/internal/config"
	"rentiva-backend/internal/jobs"
	"rentiva-backend/internal/logger"
	"rentiva-backend/internal/repository/postgres"
	"rentiva-backend/internal/scheduler"
	"rentiva-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'auto-complete-orders')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentiva Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	notifier := service.NewNotifier(store, service.NewNoopEmailService(), nil)
	feePolicy := service.NewCommissionPolicy(cfg.Settlement.CommissionPercent)
	orderSvc := service.NewOrderService(store, feePolicy, notifier)

	jobRunner := jobs.NewJobRunner(store, orderSvc, cfg)

	// One-shot mode for manual runs and container cron
	if *runOnce != "" {
		switch *runOnce {
		case "auto-complete-orders":
			jobRunner.AutoCompleteOrders()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		return
	}

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received")
	sched.Stop()
}
