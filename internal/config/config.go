package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Hour index strategies.
const (
	HourIndexWallClock = "wallclock"
	HourIndexTimestamp = "timestamp"
)

// Locator modes.
const (
	LocatorNone   = "none"
	LocatorStatic = "static"
	LocatorIP     = "ip"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	GeocodingBaseURL  string
	ForecastBaseURL   string
	GeocodingLanguage string
	HTTPTimeout       time.Duration
	GeocodeCacheSize  int
	DefaultCity       string
	HourIndex         string

	// Location capability.
	Locator          string
	LocatorLatitude  float64
	LocatorLongitude float64
	LocatorIPURL     string
	LocatorTimeout   time.Duration

	// Kafka notice sink.
	NotifyKafkaEnabled bool
	KafkaBrokers       []string
	KafkaNoticeTopic   string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first if present; it
// never overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	// The zero http.Client never times out, so upstream calls always get a bound.
	httpTimeout, err := parsePositiveDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	locatorTimeout, err := parsePositiveDuration("LOCATOR_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GeocodingBaseURL:  sharedcfg.EnvOrDefault("GEOCODING_BASE_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		ForecastBaseURL:   sharedcfg.EnvOrDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		GeocodingLanguage: sharedcfg.EnvOrDefault("GEOCODING_LANGUAGE", "en"),
		HTTPTimeout:       httpTimeout,
		GeocodeCacheSize:  cacheSize,
		DefaultCity:       sharedcfg.EnvOrDefault("DEFAULT_CITY", "London"),
		HourIndex:         strings.ToLower(sharedcfg.EnvOrDefault("HOUR_INDEX", HourIndexWallClock)),

		Locator:        strings.ToLower(sharedcfg.EnvOrDefault("LOCATOR", LocatorNone)),
		LocatorIPURL:   sharedcfg.EnvOrDefault("LOCATOR_IP_URL", "http://ip-api.com/json/"),
		LocatorTimeout: locatorTimeout,

		NotifyKafkaEnabled: os.Getenv("NOTIFY_KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaNoticeTopic:   sharedcfg.EnvOrDefault("KAFKA_NOTICE_TOPIC", "weather-notices"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	switch cfg.HourIndex {
	case HourIndexWallClock, HourIndexTimestamp:
	default:
		return nil, fmt.Errorf("invalid HOUR_INDEX %q", cfg.HourIndex)
	}

	switch cfg.Locator {
	case LocatorNone, LocatorIP:
	case LocatorStatic:
		if cfg.LocatorLatitude, err = parseCoordinate("LOCATOR_LATITUDE", 90); err != nil {
			return nil, err
		}
		if cfg.LocatorLongitude, err = parseCoordinate("LOCATOR_LONGITUDE", 180); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid LOCATOR %q", cfg.Locator)
	}

	if cfg.GeocodingBaseURL == "" {
		return nil, errors.New("GEOCODING_BASE_URL is required")
	}
	if cfg.ForecastBaseURL == "" {
		return nil, errors.New("FORECAST_BASE_URL is required")
	}
	if cfg.NotifyKafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when NOTIFY_KAFKA_ENABLED is true")
		}
		if cfg.KafkaNoticeTopic == "" {
			return nil, errors.New("KAFKA_NOTICE_TOPIC is required when NOTIFY_KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() (int, error) {
	s := os.Getenv("GEOCODE_CACHE_SIZE")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid GEOCODE_CACHE_SIZE")
	}
	return n, nil
}

func parseCoordinate(key string, limit float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, fmt.Errorf("%s is required when LOCATOR is static", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -limit || v > limit {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
