package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/breaker"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/utils"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	Retry   utils.RetryConfig
	Breaker breaker.Config
}

// httpClient - общая часть клиентов user/product сервисов:
// таймаут на вызов, брейкер на зависимость, ретраи только на чтениях.
type httpClient struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
	breaker *breaker.Breaker
	retry   utils.RetryConfig
}

func newHTTPClient(name string, logger *slog.Logger, cfg Config) httpClient {
	bcfg := cfg.Breaker
	bcfg.OnStateChange = func(name string, from, to breaker.State) {
		logger.Warn("circuit breaker state changed",
			slog.String("breaker", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}

	return httpClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		logger:  logger,
		breaker: breaker.New(name, bcfg),
		retry:   cfg.Retry,
	}
}

func (c *httpClient) Breaker() *breaker.Breaker { return c.breaker }

func (c *httpClient) do(req *http.Request, dest any, resource string, id any) error {
	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return &entities.NotFoundError{Resource: resource, Field: "id", Value: id}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
