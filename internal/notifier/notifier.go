package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/events"
)

// Notifier - граница доставки уведомлений. Рендеринг писем и SMTP
// живут за этим интерфейсом, ядру важен только факт отправки.
type Notifier interface {
	OrderConfirmation(ctx context.Context, e events.OrderEvent) error
	OrderShipped(ctx context.Context, e events.OrderEvent) error
	OrderFailed(ctx context.Context, e events.OrderEvent) error
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("component", "notifier"))}
}

func (n *LogNotifier) OrderConfirmation(_ context.Context, e events.OrderEvent) error {
	n.logger.Info("sending order confirmation",
		slog.String("to", e.UserEmail),
		slog.String("order_id", e.OrderID),
		slog.String("product", e.ProductName),
		slog.Int("quantity", e.Quantity),
		slog.String("total", fmt.Sprintf("%.2f", e.TotalPrice)),
	)
	return nil
}

func (n *LogNotifier) OrderShipped(_ context.Context, e events.OrderEvent) error {
	n.logger.Info("sending order shipped notification",
		slog.String("to", e.UserEmail),
		slog.String("order_id", e.OrderID),
		slog.String("tracking_number", "TRK-"+e.OrderID),
	)
	return nil
}

func (n *LogNotifier) OrderFailed(_ context.Context, e events.OrderEvent) error {
	n.logger.Info("sending order failed notification",
		slog.String("to", e.UserEmail),
		slog.String("order_id", e.OrderID),
	)
	return nil
}
