package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/events"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/trm"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/utils"

	"github.com/google/uuid"
)

type OrderRepo interface {
	SaveOrder(ctx context.Context, o entities.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status entities.OrderStatus) error
	GetOrderByID(ctx context.Context, id string) (entities.Order, error)
	ListOrders(ctx context.Context) ([]entities.Order, error)
	ListOrdersByUserID(ctx context.Context, userID int64) ([]entities.Order, error)
	ListOrdersByProductID(ctx context.Context, productID int64) ([]entities.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type UserClient interface {
	GetUser(ctx context.Context, id int64) (entities.User, bool, error)
}

type ProductClient interface {
	GetProduct(ctx context.Context, id int64) (entities.Product, bool, error)
	AdjustStock(ctx context.Context, id int64, delta int) (entities.Product, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.OrderEvent)
}

type orderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	repo      OrderRepo
	users     UserClient
	products  ProductClient
	publisher EventPublisher
	retry     utils.RetryConfig
}

func NewOrderService(
	logger *slog.Logger,
	txManager trm.Manager,
	repo OrderRepo,
	users UserClient,
	products ProductClient,
	publisher EventPublisher,
	retry utils.RetryConfig,
) *orderService {
	return &orderService{
		logger:    logger.With(slog.String("service", "order")),
		txManager: txManager,
		repo:      repo,
		users:     users,
		products:  products,
		publisher: publisher,
		retry:     retry,
	}
}

// CreateOrder - сага создания заказа: пользователь -> товар -> остаток ->
// сохранение PENDING -> списание остатка -> финальный статус.
// До сохранения любая ошибка обрывает сагу без следов в базе.
// После сохранения сага всегда доходит до COMPLETED или FAILED,
// строка заказа при сбое остается как аудит, ее никто не "откатывает".
func (s *orderService) CreateOrder(ctx context.Context, userID, productID int64, quantity int) (entities.Order, error) {
	log := s.logger.With(slog.Int64("user_id", userID), slog.Int64("product_id", productID))
	log.Info("creating order")

	user, degraded, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return entities.Order{}, err
	}
	if degraded {
		return entities.Order{}, &entities.ServiceCommunicationError{
			Service: "User Service",
			Message: "user service is currently unavailable",
		}
	}

	product, degraded, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return entities.Order{}, err
	}
	if degraded {
		return entities.Order{}, &entities.ServiceCommunicationError{
			Service: "Product Service",
			Message: "product service is currently unavailable",
		}
	}

	if err := ValidateStock(product.Name, product.Stock, quantity); err != nil {
		return entities.Order{}, err
	}

	order := entities.Order{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		ProductID:   product.ID,
		Quantity:    quantity,
		TotalPrice:  product.Price * float64(quantity),
		Status:      entities.StatusPending,
		UserName:    user.Name,
		ProductName: product.Name,
		OrderDate:   time.Now().UTC(),
	}

	// Точка долговечности саги. Вставка идемпотентна по id,
	// поэтому ретраи безопасны
	if err := utils.Retry(ctx, s.retry, func() error {
		return s.repo.SaveOrder(ctx, order)
	}); err != nil {
		return entities.Order{}, fmt.Errorf("failed to save order: %w", err)
	}
	log.Info("order created", slog.String("order_id", order.ID))

	// Точка долговечности пройдена: дальше сага не зависит от жизни
	// входящего запроса, иначе отмена клиента оставила бы заказ в PENDING
	ctx = context.WithoutCancel(ctx)

	s.publisher.Publish(ctx, events.NewOrderCreated(order, user.Email))

	// Списание неидемпотентно - один вызов, сбой переводит заказ в FAILED
	if _, err := s.products.AdjustStock(ctx, productID, -quantity); err != nil {
		log.Error("failed to update product stock",
			slog.String("order_id", order.ID), slog.Any("error", err))

		s.finalize(ctx, &order, entities.StatusFailed, user.Email)
		return order, &entities.ServiceCommunicationError{
			Service: "Product Service",
			Message: "failed to update stock, order marked as FAILED: " + err.Error(),
		}
	}

	s.finalize(ctx, &order, entities.StatusCompleted, user.Email)
	log.Info("order completed", slog.String("order_id", order.ID))
	return order, nil
}

// finalize переводит заказ в терминальный статус и публикует событие.
// Событие уходит даже если запись статуса не удалась после ретраев:
// терминальный исход саги должен быть виден хотя бы в логе событий
func (s *orderService) finalize(ctx context.Context, order *entities.Order, status entities.OrderStatus, userEmail string) {
	order.Status = status

	if err := utils.Retry(ctx, s.retry, func() error {
		return s.repo.UpdateOrderStatus(ctx, order.ID, status)
	}); err != nil {
		s.logger.Error("failed to finalize order status",
			slog.String("order_id", order.ID),
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
	}

	switch status {
	case entities.StatusCompleted:
		s.publisher.Publish(ctx, events.NewOrderCompleted(*order, userEmail))
	case entities.StatusFailed:
		s.publisher.Publish(ctx, events.NewOrderFailed(*order, userEmail))
	}
}

func (s *orderService) GetAllOrders(ctx context.Context) ([]entities.Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *orderService) GetOrderByID(ctx context.Context, id string) (entities.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// GetOrdersByUserID проверяет существование пользователя best-effort:
// деградация внешнего сервиса не блокирует чтение заказов, только логируется
func (s *orderService) GetOrdersByUserID(ctx context.Context, userID int64) ([]entities.Order, error) {
	_, degraded, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if degraded {
		s.logger.Warn("could not validate user existence, proceeding anyway",
			slog.Int64("user_id", userID))
	}

	return s.repo.ListOrdersByUserID(ctx, userID)
}

func (s *orderService) GetOrdersByProductID(ctx context.Context, productID int64) ([]entities.Order, error) {
	return s.repo.ListOrdersByProductID(ctx, productID)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, status entities.OrderStatus) (entities.Order, error) {
	var updated entities.Order
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetOrderByID(ctx, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return &entities.BadRequestError{
				Message: fmt.Sprintf("Cannot change order status from %s to %s", order.Status, status),
			}
		}
		if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
			return err
		}
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.logger.Info("order status updated",
		slog.String("order_id", id), slog.String("status", string(status)))
	return updated, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id string) error {
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetOrderByID(ctx, id); err != nil {
			return err
		}
		return s.repo.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order deleted", slog.String("order_id", id))
	return nil
}
