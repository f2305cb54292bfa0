package service

import (
	"fmt"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
)

// ValidateStock - чистая проверка остатка, без побочных эффектов.
// Количество меньше единицы отсекается еще на валидации запроса,
// здесь проверка остается на случай других путей вызова.
func ValidateStock(productName string, available, requested int) error {
	if requested < 1 {
		return &entities.BadRequestError{
			Message: fmt.Sprintf("Quantity must be at least 1. Requested: %d", requested),
		}
	}
	if available < requested {
		return &entities.BadRequestError{
			Message: fmt.Sprintf("Insufficient stock for '%s'. Available: %d, Requested: %d",
				productName, available, requested),
		}
	}
	return nil
}
