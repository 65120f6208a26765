// API server entry point for PhytoTrait-Intelligence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/application/enhancement"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/config"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/domain/glossary"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/trait_inference"
	httpserver "github.com/turtacn/PhytoTrait-Intelligence/internal/interfaces/http"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)

	if *migrate {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
			log.Fatal("migration failed", logging.Err(err))
		}
		log.Info("migrations applied")
		return
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("apiserver exited", logging.Err(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func run(cfg *config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics
	var (
		metrics   *prometheus.AppMetrics
		collector prometheus.MetricsCollector
	)
	if cfg.Metrics.Enabled {
		var err error
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
		}, log)
		if err != nil {
			return err
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	readiness := map[string]handlers.ReadinessCheck{}

	// Glossary source
	var repo glossary.Repository
	if cfg.Glossary.Source == config.GlossarySourcePostgres {
		conn, err := postgres.NewConnection(cfg.Database, log)
		if err != nil {
			return err
		}
		defer conn.Close()
		repo = repositories.NewPostgresGlossaryRepo(conn, log)
		readiness["postgres"] = conn.HealthCheck
	}

	gls, err := enhancement.LoadGlossary(ctx, cfg.Glossary, repo, metrics, log)
	if err != nil {
		return err
	}

	// Optional redis enhancement cache
	var redisCache trait_inference.EnhancementCache
	if cfg.Engine.CacheEnabled && cfg.Engine.CacheBackend == config.CacheBackendRedis {
		client, err := redisdb.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer client.Close()
		cache := redisdb.NewRedisCache(client, log, redisdb.WithPrefix(cfg.Redis.KeyPrefix))
		redisCache = redisdb.NewEnhancementCache(cache, cfg.Engine.CacheTTL, log)
		readiness["redis"] = client.Ping
	}

	engine, err := enhancement.BuildEngine(cfg.Engine, gls, redisCache, metrics, log)
	if err != nil {
		return err
	}

	service, err := enhancement.NewService(engine, gls, enhancement.BatchRunnerConfig(cfg.Batch), metrics, log)
	if err != nil {
		return err
	}

	server := httpserver.NewServer(cfg.Server, httpserver.RouterConfig{
		EnhanceHandler:   handlers.NewEnhanceHandler(service, log),
		GlossaryHandler:  handlers.NewGlossaryHandler(service, log),
		HealthHandler:    handlers.NewHealthHandler(readiness),
		Logger:           log,
		Metrics:          metrics,
		MetricsCollector: collector,
	}, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}
