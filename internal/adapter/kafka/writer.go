package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-now/internal/config"
	"github.com/couchcryptid/weather-now/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// NoticeWriter publishes search notices to a Kafka topic.
// It implements domain.Notifier.
type NoticeWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNoticeWriter creates a Kafka producer for the configured notice topic.
func NewNoticeWriter(cfg *config.Config, logger *slog.Logger) *NoticeWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaNoticeTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &NoticeWriter{writer: w, logger: logger}
}

// Notify serializes and publishes a single notice. Notices from the same
// search share a key and land on the same partition.
func (w *NoticeWriter) Notify(ctx context.Context, notice domain.Notice) error {
	msg, err := serializeToMessage(notice)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	w.logger.Debug("notice published", "search_id", notice.SearchID, "kind", notice.Kind)
	return nil
}

func (w *NoticeWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Notice into a Kafka message.
func serializeToMessage(notice domain.Notice) (kafkago.Message, error) {
	data, err := json.Marshal(notice)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notice: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(notice.SearchID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(notice.Kind)},
			{Key: "emitted_at", Value: []byte(notice.EmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
