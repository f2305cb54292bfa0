package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/config"

	"github.com/segmentio/kafka-go"
)

// Producer пишет события заказов в kafka. Ключ сообщения - orderId,
// поэтому все события одного заказа попадают в одну партицию и
// читаются строго по порядку. Запись асинхронная: сага не ждет брокера,
// результат доставки фиксируется в completion-коллбеке.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewProducer(logger *slog.Logger, cfg config.Kafka) *Producer {
	p := &Producer{
		logger: logger.With(slog.String("component", "producer")),
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion:   p.completion,
	}

	return p
}

func (p *Producer) Publish(ctx context.Context, event OrderEvent) {
	p.logger.Info("publishing order event",
		slog.String("event_type", event.EventType),
		slog.String("order_id", event.OrderID),
	)

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal order event", slog.Any("error", err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
	}

	// При Async:true возвращается сразу, ошибки доставки придут в completion
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to enqueue order event",
			slog.String("order_id", event.OrderID), slog.Any("error", err))
	}
}

// Ошибки доставки не ретраятся и не откатывают сагу,
// это только сигнал для мониторинга
func (p *Producer) completion(messages []kafka.Message, err error) {
	for _, m := range messages {
		if err != nil {
			p.logger.Error("failed to publish order event",
				slog.String("order_id", string(m.Key)),
				slog.Any("error", err),
			)
			continue
		}
		p.logger.Info("order event published",
			slog.String("order_id", string(m.Key)),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
		)
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
