package entities

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusFailed    OrderStatus = "FAILED"
)

// Order хранит снапшот имени пользователя и товара на момент создания,
// чтобы история заказов не менялась вслед за внешними сервисами
// CanTransitionTo разрешает только PENDING -> COMPLETED и PENDING -> FAILED,
// терминальные статусы не переоткрываются
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	return s == StatusPending && (to == StatusCompleted || to == StatusFailed)
}

type Order struct {
	ID          string
	UserID      int64
	ProductID   int64
	Quantity    int
	TotalPrice  float64
	Status      OrderStatus
	UserName    string
	ProductName string
	OrderDate   time.Time
}
