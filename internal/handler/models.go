package handler

import (
	"time"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
)

// CreateOrderRequest - тело запроса на создание заказа
type CreateOrderRequest struct {
	UserID    int64 `json:"user_id" validate:"required,gt=0"`
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// Order представляет заказ
type Order struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	ProductID   int64     `json:"product_id"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"total_price"`
	Status      string    `json:"status"`
	UserName    string    `json:"user_name,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	OrderDate   time.Time `json:"order_date"`
}

func OrderEntityToJSON(o entities.Order) Order {
	return Order{
		ID:          o.ID,
		UserID:      o.UserID,
		ProductID:   o.ProductID,
		Quantity:    o.Quantity,
		TotalPrice:  o.TotalPrice,
		Status:      string(o.Status),
		UserName:    o.UserName,
		ProductName: o.ProductName,
		OrderDate:   o.OrderDate,
	}
}

func OrdersEntityToJSON(orders []entities.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderEntityToJSON(o))
	}
	return result
}
