package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/weather-now/internal/adapter/geolocation"
	"github.com/couchcryptid/weather-now/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-now/internal/adapter/kafka"
	"github.com/couchcryptid/weather-now/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-now/internal/config"
	"github.com/couchcryptid/weather-now/internal/domain"
	"github.com/couchcryptid/weather-now/internal/observability"
	"github.com/couchcryptid/weather-now/internal/weather"
)

const (
	warmUpInitialBackoff = time.Second
	warmUpMaxBackoff     = 30 * time.Second
)

func main() {
	city := flag.String("city", "", "look up current conditions for a city (defaults to DEFAULT_CITY)")
	here := flag.Bool("here", false, "look up current conditions for this host's location")
	serve := flag.Bool("serve", false, "run the HTTP API instead of printing a single card")
	flag.Parse()

	if *here && *city != "" {
		fmt.Fprintln(os.Stderr, "-city and -here are mutually exclusive")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if *serve {
		logger = observability.NewLogger(cfg)
	} else {
		logger = observability.NewLoggerTo(os.Stderr, cfg)
	}
	metrics := observability.NewMetrics()

	orch, closeNotifier := newOrchestrator(cfg, metrics, logger)
	defer closeNotifier()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		runServer(ctx, cfg, orch, logger)
		return
	}

	if err := runOnce(ctx, orch, cfg.DefaultCity, *city, *here, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", domain.UserMessage(err))
		stop()
		closeNotifier()
		os.Exit(1)
	}
}

// newOrchestrator wires the Open-Meteo client, the optional geocoding cache,
// the locator, and the notifiers. The returned func closes the Kafka writer
// when one was created.
func newOrchestrator(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*weather.Orchestrator, func()) {
	client := openmeteo.NewClient(cfg, metrics, logger)

	var geocoder domain.Geocoder = client
	if cfg.GeocodeCacheSize > 0 {
		geocoder = openmeteo.NewCachedGeocoder(client, cfg.GeocodeCacheSize, metrics)
		logger.Info("geocoding cache enabled", "cache_size", cfg.GeocodeCacheSize)
	}

	var opts []weather.Option
	if cfg.HourIndex == config.HourIndexTimestamp {
		opts = append(opts, weather.WithHourResolver(domain.ProviderHour{}))
	}

	switch cfg.Locator {
	case config.LocatorStatic:
		opts = append(opts, weather.WithLocator(geolocation.NewStatic(cfg.LocatorLatitude, cfg.LocatorLongitude)))
		logger.Info("static locator enabled", "lat", cfg.LocatorLatitude, "lon", cfg.LocatorLongitude)
	case config.LocatorIP:
		opts = append(opts, weather.WithLocator(geolocation.NewIPLocator(cfg.LocatorIPURL, cfg.LocatorTimeout, logger)))
		logger.Info("ip locator enabled", "url", cfg.LocatorIPURL)
	default:
		logger.Info("geolocation disabled")
	}

	notifiers := weather.MultiNotifier{weather.NewLogNotifier(logger)}
	closeFn := func() {}
	if cfg.NotifyKafkaEnabled {
		writer := kafkaadapter.NewNoticeWriter(cfg, logger)
		notifiers = append(notifiers, writer)
		closeFn = func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("kafka notices enabled", "topic", cfg.KafkaNoticeTopic)
	}
	opts = append(opts, weather.WithNotifier(notifiers))

	return weather.New(geocoder, client, logger, metrics, opts...), closeFn
}

// runOnce performs a single search and prints the resulting card to w.
func runOnce(ctx context.Context, orch *weather.Orchestrator, defaultCity, city string, here bool, w io.Writer) error {
	var err error
	switch {
	case here:
		err = orch.SearchByCurrentLocation(ctx)
	case city != "":
		err = orch.SearchByCity(ctx, city)
	default:
		err = orch.SearchByCity(ctx, defaultCity)
	}
	if err != nil {
		return err
	}
	return renderCard(w, *orch.State().Snapshot)
}

func runServer(ctx context.Context, cfg *config.Config, orch *weather.Orchestrator, logger *slog.Logger) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the default city so /readyz turns green.
	go warmUp(ctx, orch, cfg.DefaultCity, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// warmUp searches for city until it succeeds or a newer search overtakes it,
// backing off between network failures. A city the provider does not know is not retried.
func warmUp(ctx context.Context, orch *weather.Orchestrator, city string, logger *slog.Logger) {
	backoff := warmUpInitialBackoff
	for {
		err := orch.SearchByCity(ctx, city)
		if err == nil || errors.Is(err, weather.ErrSuperseded) {
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			logger.Error("default city not found, service stays unready", "city", city)
			return
		}
		logger.Warn("default city search failed, retrying", "city", city, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return
		}
		backoff = retry.NextBackoff(backoff, warmUpMaxBackoff)
	}
}
