package events

import (
	"time"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"

	"github.com/google/uuid"
)

const (
	EventOrderCreated   = "ORDER_CREATED"
	EventOrderCompleted = "ORDER_COMPLETED"
	EventOrderFailed    = "ORDER_FAILED"
)

// OrderEvent - wire-формат событий заказа. Поля стабильны,
// незнакомые поля на стороне консьюмера игнорируются.
type OrderEvent struct {
	EventID     string    `json:"eventId" validate:"required"`
	EventType   string    `json:"eventType" validate:"required"`
	OrderID     string    `json:"orderId" validate:"required"`
	UserID      int64     `json:"userId"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"totalPrice"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func newOrderEvent(eventType string, o entities.Order, userEmail string) OrderEvent {
	return OrderEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		OrderID:     o.ID,
		UserID:      o.UserID,
		UserName:    o.UserName,
		UserEmail:   userEmail,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
		TotalPrice:  o.TotalPrice,
		Status:      string(o.Status),
		Timestamp:   time.Now().UTC(),
	}
}

func NewOrderCreated(o entities.Order, userEmail string) OrderEvent {
	return newOrderEvent(EventOrderCreated, o, userEmail)
}

func NewOrderCompleted(o entities.Order, userEmail string) OrderEvent {
	return newOrderEvent(EventOrderCompleted, o, userEmail)
}

func NewOrderFailed(o entities.Order, userEmail string) OrderEvent {
	return newOrderEvent(EventOrderFailed, o, userEmail)
}
