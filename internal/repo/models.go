package repo

import (
	"database/sql"
	"time"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
)

type Order struct {
	ID          string         `db:"id"`
	UserID      int64          `db:"user_id"`
	ProductID   int64          `db:"product_id"`
	Quantity    int            `db:"quantity"`
	TotalPrice  float64        `db:"total_price"`
	Status      string         `db:"status"`
	UserName    sql.NullString `db:"user_name"`
	ProductName sql.NullString `db:"product_name"`
	OrderDate   time.Time      `db:"order_date"`
}

func OrderToEntity(o Order) entities.Order {
	return entities.Order{
		ID:          o.ID,
		UserID:      o.UserID,
		ProductID:   o.ProductID,
		Quantity:    o.Quantity,
		TotalPrice:  o.TotalPrice,
		Status:      entities.OrderStatus(o.Status),
		UserName:    nullStringToString(o.UserName),
		ProductName: nullStringToString(o.ProductName),
		OrderDate:   o.OrderDate,
	}
}

func OrdersToEntities(orders []Order) []entities.Order {
	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o))
	}
	return result
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
