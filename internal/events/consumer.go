package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader - часть kafka.Reader, которую использует Watcher
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Handler получает каждое декодированное событие
type Handler func(ctx context.Context, event TaskEvent) error

// Watcher читает события задач из Kafka до отмены контекста
type Watcher struct {
	reader MessageReader
	logger *zap.Logger
}

func NewKafkaWatcher(brokers []string, topic, groupID string, logger *zap.Logger) *Watcher {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewWatcher(reader, logger)
}

func NewWatcher(reader MessageReader, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{reader: reader, logger: logger}
}

// Run blocks until ctx is cancelled. Undecodable messages and handler
// failures are logged and skipped; it returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			w.logger.Warn("read task event", zap.Error(err))
			continue
		}

		var event TaskEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			w.logger.Warn("decode task event",
				zap.ByteString("key", msg.Key),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := handle(ctx, event); err != nil {
			w.logger.Warn("handle task event", zap.String("task_id", event.TaskID), zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.reader.Close()
}
