package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/weather-now/internal/config"
	"github.com/couchcryptid/weather-now/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 5, 0, time.UTC)
	notice := domain.Notice{
		SearchID:  "search-1",
		Kind:      domain.NoticeSuccess,
		Title:     "Weather Updated",
		Message:   "Found weather data for London, United Kingdom",
		City:      "London",
		Country:   "United Kingdom",
		EmittedAt: now,
	}

	msg, err := serializeToMessage(notice)
	require.NoError(t, err)

	assert.Equal(t, []byte("search-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"title":"Weather Updated"`)
	assert.NotContains(t, string(msg.Value), "error_kind")
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("success"), msg.Headers[0].Value)
	assert.Equal(t, "emitted_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.Notice
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, notice, decoded)
}

func TestSerializeToMessage_ErrorNotice(t *testing.T) {
	notice := domain.Notice{
		SearchID:  "search-2",
		Kind:      domain.NoticeError,
		Title:     "Error",
		Message:   "City not found",
		ErrorKind: domain.KindNotFound,
	}

	msg, err := serializeToMessage(notice)
	require.NoError(t, err)

	assert.Contains(t, string(msg.Value), `"error_kind":"not_found"`)
	assert.NotContains(t, string(msg.Value), `"city"`)
	assert.Equal(t, []byte("error"), msg.Headers[0].Value)
}

func TestNewNoticeWriter(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:     []string{"broker-1:9092", "broker-2:9092"},
		KafkaNoticeTopic: "weather-notices",
	}

	w := NewNoticeWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "weather-notices", w.writer.Topic)
	assert.Contains(t, w.writer.Addr.String(), "broker-1:9092")
}
