package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

// MessageWriter - часть kafka.Writer, которую использует продюсер
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer публикует события задач в Kafka и реализует task.Publisher
type Producer struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return NewProducer(writer)
}

func NewProducer(writer MessageWriter) *Producer {
	return &Producer{writer: writer, now: time.Now}
}

// Publish отправляет событие; ключ сообщения - id задачи, чтобы события
// одной задачи попадали в одну партицию.
func (p *Producer) Publish(ctx context.Context, kind string, t task.Task) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka producer is not configured")
	}
	event := NewTaskEvent(kind, t, p.now())

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.TaskID),
		Value: eventJSON,
		Time:  event.Timestamp,
	}
	return p.writer.WriteMessages(ctx, message)
}

// Close закрывает соединение с Kafka
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
