//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/weather-now/internal/adapter/kafka"
	"github.com/couchcryptid/weather-now/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-now/internal/config"
	"github.com/couchcryptid/weather-now/internal/domain"
	"github.com/couchcryptid/weather-now/internal/observability"
	"github.com/couchcryptid/weather-now/internal/weather"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNoticeTopic = "test-weather-notices"

// publishedNotice holds a deserialized message read from the notice topic.
type publishedNotice struct {
	Notice  domain.Notice
	Key     string
	Headers map[string]string
}

func readNotice(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedNotice {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from notice topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var n domain.Notice
	require.NoError(t, json.Unmarshal(msg.Value, &n), "unmarshal notice")

	return publishedNotice{Notice: n, Key: string(msg.Key), Headers: headers}
}

// stubOpenMeteo knows only London.
func stubOpenMeteo(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("name") == "London" {
			_, _ = w.Write([]byte(`{"results":[{"latitude":51.5085,"longitude":-0.1257,"name":"London","country":"United Kingdom"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":15.2,"windspeed":10.5,"weathercode":45,"time":"2024-01-01T12:00"},"hourly":{}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestNoticeWriter_PublishesSearchOutcomes drives real searches through the
// orchestrator and reads the resulting notices back from Kafka.
func TestNoticeWriter_PublishesSearchOutcomes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testNoticeTopic)

	upstream := stubOpenMeteo(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	cfg := &config.Config{
		GeocodingBaseURL:  upstream.URL + "/v1/search",
		ForecastBaseURL:   upstream.URL + "/v1/forecast",
		GeocodingLanguage: "en",
		HTTPTimeout:       5 * time.Second,
		KafkaBrokers:      []string{broker},
		KafkaNoticeTopic:  testNoticeTopic,
	}

	writer := kafka.NewNoticeWriter(cfg, logger)
	t.Cleanup(func() { _ = writer.Close() })

	client := openmeteo.NewClient(cfg, metrics, logger)
	orch := weather.New(client, client, logger, metrics, weather.WithNotifier(writer))

	require.NoError(t, orch.SearchByCity(ctx, "London"))
	require.ErrorIs(t, orch.SearchByCity(ctx, "Atlantis"), domain.ErrNotFound)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testNoticeTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1e6,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	success := readNotice(ctx, t, consumer)
	assert.Equal(t, domain.NoticeSuccess, success.Notice.Kind)
	assert.Equal(t, "Weather Updated", success.Notice.Title)
	assert.Equal(t, "Found weather data for London, United Kingdom", success.Notice.Message)
	assert.Equal(t, success.Notice.SearchID, success.Key)
	assert.Equal(t, "success", success.Headers["kind"])
	assert.NotEmpty(t, success.Headers["emitted_at"])

	failure := readNotice(ctx, t, consumer)
	assert.Equal(t, domain.NoticeError, failure.Notice.Kind)
	assert.Equal(t, "City not found", failure.Notice.Message)
	assert.Equal(t, domain.KindNotFound, failure.Notice.ErrorKind)
	assert.Equal(t, "error", failure.Headers["kind"])
	assert.NotEqual(t, success.Key, failure.Key)

	snap := orch.State().Snapshot
	require.NotNil(t, snap)
	assert.Equal(t, "Cloudy", snap.Condition)
}
