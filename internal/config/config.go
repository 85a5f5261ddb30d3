package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
// It is read once at start-up and never mutated.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// NASA NeoWs catalog configuration.
	NASAAPIKey       string
	NASABaseURL      string
	NASATimeout      time.Duration
	CatalogCacheSize int
	CatalogCacheTTL  time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Overpass place search configuration.
	OverpassURL       string
	OverpassTimeout   time.Duration
	PlacesMaxRadiusKm float64

	// Result publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	BatchFlushInterval time.Duration

	TracingEnabled     bool
	TracingExporter    string
	TracingEndpoint    string
	TracingSampleRatio float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	nasaTimeout, err := parseDuration("NASA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	catalogCacheTTL, err := parseDuration("CATALOG_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	catalogCacheSize, err := parsePositiveInt("CATALOG_CACHE_SIZE", 500)
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	mapboxCacheSize, err := parsePositiveInt("MAPBOX_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	overpassTimeout, err := parseDuration("OVERPASS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	maxRadius, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("PLACES_MAX_RADIUS_KM", "500"), 64)
	if err != nil || maxRadius <= 0 {
		return nil, errors.New("invalid PLACES_MAX_RADIUS_KM")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	batchFlushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	sampleRatio, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("TRACING_SAMPLE_RATIO", "1.0"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return nil, errors.New("invalid TRACING_SAMPLE_RATIO")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		NASAAPIKey:       sharedcfg.EnvOrDefault("NASA_API_KEY", "DEMO_KEY"),
		NASABaseURL:      strings.TrimRight(sharedcfg.EnvOrDefault("NASA_NEO_API_URL", "https://api.nasa.gov/neo/rest/v1"), "/"),
		NASATimeout:      nasaTimeout,
		CatalogCacheSize: catalogCacheSize,
		CatalogCacheTTL:  catalogCacheTTL,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,

		OverpassURL:       sharedcfg.EnvOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassTimeout:   overpassTimeout,
		PlacesMaxRadiusKm: maxRadius,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "impact-simulations"),
		BatchSize:          batchSize,
		BatchFlushInterval: batchFlushInterval,

		TracingEnabled:     os.Getenv("TRACING_ENABLED") == "true",
		TracingExporter:    strings.ToLower(sharedcfg.EnvOrDefault("TRACING_EXPORTER", "stdout")),
		TracingEndpoint:    os.Getenv("TRACING_ENDPOINT"),
		TracingSampleRatio: sampleRatio,
	}

	if cfg.NASABaseURL == "" {
		return nil, errors.New("NASA_NEO_API_URL is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
