package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/wnt/swaplens/internal/classifier"
	"github.com/wnt/swaplens/internal/config"
	"github.com/wnt/swaplens/internal/database"
	"github.com/wnt/swaplens/internal/indexer"
	"github.com/wnt/swaplens/internal/logger"
	"github.com/wnt/swaplens/internal/queue"
	"github.com/wnt/swaplens/internal/worker"
)

func main() {
	envFile := flag.String("envFile", ".env", "Path to .env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("No .env file found at %s, using environment variables", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg := logger.New(cfg.LogLevel)
	lg.Info().
		Str("strategy", cfg.SwapperStrategy).
		Int("endpoints", len(cfg.IndexerEndpoints)).
		Msg("Starting swaplens")

	db, err := database.Connect(cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to connect to database")
	}
	store := database.NewStore(db)

	queueClient, err := queue.NewClient(cfg.RedisURL, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer queueClient.Close()

	pool := indexer.NewPool(cfg.IndexerEndpoints, lg)
	pipeline := buildPipeline(cfg, lg)

	manager := worker.NewManager(cfg, queueClient, pool, store, pipeline, lg)
	if err := manager.Start(); err != nil {
		lg.Fatal().Err(err).Msg("Failed to start worker manager")
	}

	go serveMetrics(cfg.MetricsPort, lg)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	lg.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	if err := manager.Stop(); err != nil {
		lg.Error().Err(err).Msg("Error stopping worker manager")
	}

	lg.Info().Msg("Swaplens stopped")
}

func buildPipeline(cfg config.Config, lg zerolog.Logger) *classifier.Pipeline {
	opts := []classifier.RegistryOption{
		classifier.WithProtocol(cfg.ProtocolTag),
		classifier.WithRentThreshold(cfg.RentThreshold),
		classifier.WithThresholds(cfg.IntermediateEpsilon, cfg.DustThreshold, cfg.SignificanceThreshold),
	}
	if len(cfg.ExtraExcludedAddrs) > 0 {
		opts = append(opts, classifier.WithExcludedAddresses(cfg.ExtraExcludedAddrs...))
	}
	if len(cfg.PriorityMints) > 0 {
		opts = append(opts, classifier.WithPriorityMints(cfg.PriorityMints...))
	}
	if cfg.DisableDerivedCheck {
		opts = append(opts, classifier.WithDerivedAddressPredicate(classifier.NoDerivedAddressDetection))
	}

	registry := classifier.NewRegistry(opts...)
	identifier, err := classifier.NewIdentifier(cfg.SwapperStrategy, registry)
	if err != nil {
		// Config validation already rejected unknown strategies.
		lg.Fatal().Err(err).Msg("Failed to build swapper identifier")
	}
	return classifier.NewPipeline(registry, identifier, lg)
}

func serveMetrics(port string, lg zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lg.Info().Str("port", port).Msg("Serving metrics")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Error().Err(err).Msg("Metrics server failed")
	}
}
