package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/config"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/events"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/cache"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
)

type handlerFunc func(ctx context.Context, e events.OrderEvent) error

// Consumer читает события заказов и раздает их по таблице
// eventType -> обработчик. Коммит оффсета только после успешной
// обработки, поэтому доставка at-least-once: повторы отсекаются
// по eventId, обработчики обязаны быть идемпотентными.
type Consumer struct {
	reader   *kafka.Reader
	dlq      *kafka.Writer
	logger   *slog.Logger
	validate *validator.Validate
	seen     *cache.LRUCache
	retry    utils.RetryConfig
	handlers map[string]handlerFunc
}

func NewConsumer(logger *slog.Logger, cfg config.Kafka, retry utils.RetryConfig, n Notifier) *Consumer {
	return &Consumer{
		logger: logger.With(slog.String("handler", "kafka")),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.Topic,
			MaxWait: cfg.ReaderMaxWait,
		}),
		dlq: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		validate: validator.New(),
		seen:     cache.NewLRUCache(cfg.DedupCapacity, cfg.DedupTTL),
		retry:    retry,
		handlers: map[string]handlerFunc{
			events.EventOrderCreated:   n.OrderConfirmation,
			events.EventOrderCompleted: n.OrderShipped,
			events.EventOrderFailed:    n.OrderFailed,
		},
	}
}

func (c *Consumer) Consume(ctx context.Context) {
	c.seen.StartJanitor(ctx)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			}
			c.logger.Error("failed to fetch message", slog.Any("error", err))
			continue
		}

		if err := c.handleEvent(ctx, m); err != nil {
			c.logger.Error("failed to handle order event", slog.Any("error", err))

			// В библиотеке записи уже есть retry
			if err := c.writeToDLQ(ctx, m); err != nil {
				c.logger.Error("failed to write event to DLQ", slog.Any("error", err))
				continue
			}
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (c *Consumer) handleEvent(ctx context.Context, m kafka.Message) error {
	start := time.Now()

	// Незнакомые поля в сообщении игнорируются, схема расширяемая
	var event events.OrderEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	if err := c.validate.Struct(event); err != nil {
		return fmt.Errorf("invalid order event: %w", err)
	}

	if c.seen.Contains(event.EventID) {
		eventsDuplicate.Inc()
		c.logger.Info("skipping duplicate order event", slog.String("event_id", event.EventID))
		return nil
	}

	handler, ok := c.handlers[event.EventType]
	if !ok {
		// Неизвестный тип не фатален: логируем и подтверждаем
		c.logger.Warn("unknown order event type",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	if err := utils.Retry(ctx, c.retry, func() error {
		return handler(ctx, event)
	}); err != nil {
		eventsFailed.Inc()
		return fmt.Errorf("failed to process %s: %w", event.EventType, err)
	}

	c.seen.Set(event.EventID, nil)
	eventsProcessed.WithLabelValues(event.EventType).Inc()
	processingDuration.Observe(time.Since(start).Seconds())

	c.logger.Info("order event processed",
		slog.String("event_type", event.EventType),
		slog.String("event_id", event.EventID),
		slog.String("order_id", event.OrderID),
	)
	return nil
}

func (c *Consumer) writeToDLQ(ctx context.Context, m kafka.Message) error {
	eventsDLQ.Inc()
	m.Topic = fmt.Sprintf("%s-dlq", m.Topic)
	return c.dlq.WriteMessages(ctx, m)
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return err
	}
	return c.dlq.Close()
}
