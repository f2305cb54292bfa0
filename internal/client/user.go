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

type userDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type UserClient struct {
	httpClient
}

func NewUserClient(logger *slog.Logger, cfg Config) *UserClient {
	return &UserClient{
		httpClient: newHTTPClient("user-service", logger.With(slog.String("client", "user")), cfg),
	}
}

// GetUser возвращает пользователя, либо деградированный результат.
// degraded=true означает, что сервис недоступен и данные нельзя
// использовать как настоящие. NotFound ретраями и фолбэком не маскируется.
func (c *UserClient) GetUser(ctx context.Context, id int64) (entities.User, bool, error) {
	var dto userDTO
	var notFound error

	call := func() error {
		return c.breaker.Execute(func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet,
				fmt.Sprintf("%s/users/%d", c.baseURL, id), nil)
			if err != nil {
				return err
			}

			err = c.do(req, &dto, "User", id)
			if errors.Is(err, entities.ErrNotFound) {
				// Сервис ответил, для брейкера это не сбой
				notFound = err
				return nil
			}
			return err
		})
	}

	// Чтение идемпотентно, поэтому ретраим; при открытом брейкере не повторяем
	err := utils.Retry(ctx, c.retry, call, breaker.ErrOpen)

	switch {
	case err != nil:
		c.logger.Warn("user lookup degraded, returning fallback",
			slog.Int64("user_id", id), slog.Any("error", err))
		return entities.User{ID: id}, true, nil
	case notFound != nil:
		return entities.User{}, false, notFound
	default:
		return entities.User{
			ID:    dto.ID,
			Name:  dto.Name,
			Email: dto.Email,
			Phone: dto.Phone,
		}, false, nil
	}
}
