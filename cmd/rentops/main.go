package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/rentops-lab/rentops/internal/aggregation"
	"github.com/rentops-lab/rentops/internal/availability"
	corecfg "github.com/rentops-lab/rentops/internal/core/config"
	"github.com/rentops-lab/rentops/internal/core/proration"
	"github.com/rentops-lab/rentops/internal/core/storage"
	"github.com/rentops-lab/rentops/internal/core/storage/memory"
	"github.com/rentops-lab/rentops/internal/core/storage/postgres"
	"github.com/rentops-lab/rentops/internal/core/storage/unitcache"
	"github.com/rentops-lab/rentops/internal/events"
	"github.com/rentops-lab/rentops/internal/metrics"
	"github.com/rentops-lab/rentops/internal/migrations"
	"github.com/rentops-lab/rentops/internal/obs"
	"github.com/rentops-lab/rentops/internal/reporting"
	"github.com/rentops-lab/rentops/internal/server"
)

func main() {
	configPath := flag.String("config", "rentops.yaml", "Path to configuration file")
	envFile := flag.String("env-file", ".env", "Optional env file loaded before RENTOPS_* variables")
	flag.Parse()

	// 0. Bootstrap logger until the configured one is available
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath, *envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := obs.NewLogger(cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		slog.Error("Failed to build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	slog.Info("Loaded config",
		"database", cfg.Database.Type,
		"month_count", cfg.Proration.MonthCount,
		"report_cache", cfg.Reporting.Cache.Enabled,
		"events", cfg.Events.Enabled,
	)

	m := metrics.New()

	// 2. Initialize Storage
	store, health, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var units storage.UnitStore = store
	if ttl := cfg.Database.UnitCacheTTLDuration(); ttl > 0 {
		cache := unitcache.New(store, unitcache.Options{TTL: ttl})
		defer cache.Stop()
		units = cache
		slog.Info("Unit cache enabled", "ttl", ttl)
	}

	// 3. Initialize Event Publisher
	var publisher events.Publisher = events.Noop{}
	if cfg.Events.Enabled {
		kafka, err := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.ClientID, m)
		if err != nil {
			slog.Error("Failed to initialize event publisher", "error", err)
			os.Exit(1)
		}
		publisher = kafka
		slog.Info("Event publisher initialized", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}
	defer publisher.Close()

	// 4. Initialize Availability (checks, gaps, two-phase reserve)
	availabilitySvc := availability.NewService(store, units, availability.Options{
		MaxSuggestions: cfg.Availability.MaxSuggestions,
		Publisher:      publisher,
		Metrics:        m,
	})

	// 5. Initialize Aggregation + Reporting
	prorater := proration.NewEngine(cfg.Proration.ProrationPolicy())
	engine := aggregation.NewEngine(store, units, prorater, aggregation.Options{
		DailyMaxDays: cfg.Reporting.DailyMaxDays,
		WorkerCount:  cfg.Reporting.WorkerCount,
		Metrics:      m,
	})

	var reportCache reporting.Cache
	if cfg.Reporting.Cache.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Reporting.Cache.Addr,
			Password: cfg.Reporting.Cache.Password,
			DB:       cfg.Reporting.Cache.DB,
		})
		defer client.Close()
		reportCache = reporting.NewRedisCache(client, cfg.Reporting.Cache.TTLDuration())
		slog.Info("Report cache enabled", "addr", cfg.Reporting.Cache.Addr, "ttl", cfg.Reporting.Cache.TTLDuration())
	}
	reportingSvc := reporting.NewService(engine, reportCache, m)

	slog.Info("Proration policy",
		"long_stay_threshold_days", prorater.Policy().LongStayThresholdDays,
		"month_divisor_days", prorater.Policy().MonthDivisorDays,
		"month_count", prorater.Policy().MonthCount,
	)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), health, cfg.Server.Mode, m, cfg.Server.RequestTimeoutDuration())
	availabilitySvc.RegisterRoutes(srv.Engine)
	reportingSvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Reporting.Warm.Enabled && reportCache != nil {
		warmer := reporting.NewWarmer(cfg.Reporting.Warm.IntervalDuration(), reportingSvc, cfg.Reporting.Warm.Owners)
		go func() {
			if err := warmer.Start(ctx); err != nil {
				slog.Error("Warmer stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Report cache warmer disabled by config")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// openStore returns the configured store and, for postgres, the handle /health pings.
func openStore(cfg *corecfg.Config) (storage.Store, server.HealthChecker, error) {
	switch cfg.Database.Type {
	case "memory":
		store := memory.NewStore()
		if cfg.Database.SeedPath != "" {
			if err := store.LoadSeedFile(cfg.Database.SeedPath); err != nil {
				return nil, nil, fmt.Errorf("seed memory store: %w", err)
			}
			slog.Info("Memory store seeded", "path", cfg.Database.SeedPath)
		}
		return store, nil, nil
	default:
		db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		// Migrations run before the adapter prepares statements against the schema.
		if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		adapter, err := postgres.NewAdapterFromDB(db)
		if err != nil {
			return nil, nil, err
		}
		return adapter, db, nil
	}
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
