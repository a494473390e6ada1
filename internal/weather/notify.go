package weather

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/weather-now/internal/domain"
)

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notice domain.Notice) error {
	level := slog.LevelInfo
	if notice.Kind == domain.NoticeError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, notice.Title,
		"message", notice.Message,
		"search_id", notice.SearchID,
		"kind", notice.Kind,
	)
	return nil
}

// MultiNotifier fans a notice out to every notifier, joining their errors.
type MultiNotifier []domain.Notifier

func (m MultiNotifier) Notify(ctx context.Context, notice domain.Notice) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, notice); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifierFunc adapts a function to domain.Notifier.
type NotifierFunc func(ctx context.Context, notice domain.Notice) error

func (f NotifierFunc) Notify(ctx context.Context, notice domain.Notice) error {
	return f(ctx, notice)
}
