package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/impact-sim-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/impact-sim-service/internal/adapter/kafka"
	"github.com/couchcryptid/impact-sim-service/internal/adapter/mapbox"
	"github.com/couchcryptid/impact-sim-service/internal/adapter/neows"
	"github.com/couchcryptid/impact-sim-service/internal/adapter/overpass"
	"github.com/couchcryptid/impact-sim-service/internal/config"
	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/pipeline"
	"github.com/couchcryptid/impact-sim-service/internal/simulator"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const serviceName = "impact-sim-service"

// readiness is ready only when every check passes.
type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: serviceName,
		Exporter:    cfg.TracingExporter,
		Endpoint:    cfg.TracingEndpoint,
		SampleRatio: cfg.TracingSampleRatio,
	}, logger)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}

	neo := neows.NewClient(cfg.NASABaseURL, cfg.NASAAPIKey, cfg.NASATimeout, metrics, logger)
	catalog := neows.NewCachedCatalog(neo, cfg.CatalogCacheSize, cfg.CatalogCacheTTL, metrics)
	if cfg.NASAAPIKey == "DEMO_KEY" {
		logger.Warn("using NASA DEMO_KEY, requests are heavily rate limited")
	}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	places := overpass.NewClient(cfg.OverpassURL, cfg.OverpassTimeout, metrics, logger)

	checks := readiness{}
	var (
		publisher *kafkaadapter.Publisher
		pipe      *pipeline.Pipeline
		pipeDone  = make(chan struct{})
	)
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		pipe = pipeline.New(publisher, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		checks = append(checks, pipe)
		go func() {
			defer close(pipeDone)
			if err := pipe.Run(ctx); err != nil {
				logger.Error("publish pipeline error", "error", err)
			}
		}()
		logger.Info("simulation publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		close(pipeDone)
		logger.Info("simulation publishing disabled")
	}

	deps := simulator.Deps{
		Catalog:           catalog,
		Geocoder:          geocoder,
		Places:            places,
		Metrics:           metrics,
		Logger:            logger,
		MaxPlacesRadiusKm: cfg.PlacesMaxRadiusKm,
	}
	if pipe != nil {
		deps.Publisher = pipe
	}
	svc := simulator.New(deps)
	checks = append(checks, svc)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, checks, cfg.CORSOrigins, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()
	metrics.ServiceReady.Set(1)

	<-ctx.Done()
	logger.Info("shutting down")
	svc.Drain()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-pipeDone:
	case <-shutdownCtx.Done():
		logger.Warn("publish pipeline did not drain before shutdown timeout")
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	observability.ShutdownTracing(shutdownCtx, shutdownTracing, logger)
	logger.Info("shutdown complete")
}
