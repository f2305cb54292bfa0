package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/breaker"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/utils"
)

const productServiceName = "Product Service"

type productDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

func (d productDTO) toEntity() entities.Product {
	return entities.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		Category:    d.Category,
	}
}

type ProductClient struct {
	httpClient
}

func NewProductClient(logger *slog.Logger, cfg Config) *ProductClient {
	return &ProductClient{
		httpClient: newHTTPClient("product-service", logger.With(slog.String("client", "product")), cfg),
	}
}

// GetProduct - идемпотентное чтение, с ретраями и деградированным фолбэком
func (c *ProductClient) GetProduct(ctx context.Context, id int64) (entities.Product, bool, error) {
	var dto productDTO
	var notFound error

	call := func() error {
		return c.breaker.Execute(func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet,
				fmt.Sprintf("%s/products/%d", c.baseURL, id), nil)
			if err != nil {
				return err
			}

			err = c.do(req, &dto, "Product", id)
			if errors.Is(err, entities.ErrNotFound) {
				notFound = err
				return nil
			}
			return err
		})
	}

	err := utils.Retry(ctx, c.retry, call, breaker.ErrOpen)

	switch {
	case err != nil:
		c.logger.Warn("product lookup degraded, returning fallback",
			slog.Int64("product_id", id), slog.Any("error", err))
		return entities.Product{ID: id}, true, nil
	case notFound != nil:
		return entities.Product{}, false, notFound
	default:
		return dto.toEntity(), false, nil
	}
}

// AdjustStock изменяет остаток на delta (отрицательный - списание).
// Операция неидемпотентна: без ретраев и без тихого фолбэка,
// любой сбой возвращается наверх как ошибка коммуникации.
func (c *ProductClient) AdjustStock(ctx context.Context, id int64, delta int) (entities.Product, error) {
	var dto productDTO

	err := c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut,
			fmt.Sprintf("%s/products/%d/stock?quantity=%d", c.baseURL, id, delta), nil)
		if err != nil {
			return err
		}
		return c.do(req, &dto, "Product", id)
	})

	switch {
	case err == nil:
		return dto.toEntity(), nil
	case errors.Is(err, entities.ErrNotFound):
		return entities.Product{}, err
	case errors.Is(err, breaker.ErrOpen):
		return entities.Product{}, &entities.ServiceCommunicationError{
			Service: productServiceName,
			Message: "circuit breaker is open, stock update rejected",
		}
	default:
		return entities.Product{}, &entities.ServiceCommunicationError{
			Service: productServiceName,
			Message: "failed to update stock: " + err.Error(),
		}
	}
}
