package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/breaker"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID, productID int64, quantity int) (entities.Order, error)
	GetAllOrders(ctx context.Context) ([]entities.Order, error)
	GetOrderByID(ctx context.Context, id string) (entities.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]entities.Order, error)
	GetOrdersByProductID(ctx context.Context, productID int64) ([]entities.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status entities.OrderStatus) (entities.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
	breakers []*breaker.Breaker
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService, breakers ...*breaker.Breaker) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
		breakers: breakers,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.GetAllOrders)
		r.Post("/", h.CreateOrder)
		r.Get("/{order_id}", h.GetOrderByID)
		r.Get("/user/{user_id}", h.GetOrdersByUserID)
		r.Get("/product/{product_id}", h.GetOrdersByProductID)
		r.Patch("/{order_id}/status", h.UpdateOrderStatus)
		r.Delete("/{order_id}", h.DeleteOrder)
	})
	r.Get("/breakers", h.GetBreakers)
}

// CreateOrder создает заказ.
// @Summary      Создать заказ
// @Description  Запускает сагу создания заказа: проверка пользователя и товара, резервирование остатка
// @Tags         orders
// @Accept       json
// @Param        request body CreateOrderRequest true "Параметры заказа"
// @Success      201  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse "Невалидный запрос или нехватка остатка"
// @Failure      404  {object}  utils.ErrorResponse "Пользователь или товар не найдены"
// @Failure      503  {object}  utils.ErrorResponse "Внешний сервис недоступен"
// @Router       /orders [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, r, "Bad Request", "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, r, err)
		return
	}

	order, err := h.svc.CreateOrder(ctx, req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

// GetAllOrders возвращает все заказы.
// @Summary      Список заказов
// @Tags         orders
// @Success      200  {array}  Order
// @Router       /orders [get]
func (h *HTTPHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.GetAllOrders(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// GetOrderByID возвращает заказ по ID.
// @Summary      Получить заказ
// @Tags         orders
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Router       /orders/{order_id} [get]
func (h *HTTPHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required,uuid"); err != nil {
		utils.WriteValidationError(w, r, err)
		return
	}

	order, err := h.svc.GetOrderByID(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// GetOrdersByUserID возвращает заказы пользователя.
// @Summary      Заказы пользователя
// @Tags         orders
// @Param        user_id   path      int  true  "Идентификатор пользователя"
// @Success      200  {array}  Order
// @Failure      404  {object}  utils.ErrorResponse "Пользователь не найден"
// @Router       /orders/user/{user_id} [get]
func (h *HTTPHandler) GetOrdersByUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		utils.WriteError(w, r, "Bad Request", "invalid user id", http.StatusBadRequest)
		return
	}

	orders, err := h.svc.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// GetOrdersByProductID возвращает заказы по товару.
// @Summary      Заказы по товару
// @Tags         orders
// @Param        product_id   path      int  true  "Идентификатор товара"
// @Success      200  {array}  Order
// @Router       /orders/product/{product_id} [get]
func (h *HTTPHandler) GetOrdersByProductID(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil {
		utils.WriteError(w, r, "Bad Request", "invalid product id", http.StatusBadRequest)
		return
	}

	orders, err := h.svc.GetOrdersByProductID(r.Context(), productID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// UpdateOrderStatus меняет статус заказа.
// Допустимость перехода проверяет сервис, граница передает статус как есть.
// @Summary      Обновить статус заказа
// @Tags         orders
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Param        status     query     string  true  "Новый статус"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Router       /orders/{order_id}/status [patch]
func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	status := r.URL.Query().Get("status")

	if err := h.validate.Var(orderID, "required,uuid"); err != nil {
		utils.WriteValidationError(w, r, err)
		return
	}
	if err := h.validate.Var(status, "required"); err != nil {
		utils.WriteValidationError(w, r, err)
		return
	}

	order, err := h.svc.UpdateOrderStatus(r.Context(), orderID, entities.OrderStatus(status))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// DeleteOrder удаляет заказ.
// @Summary      Удалить заказ
// @Tags         orders
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      204
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Router       /orders/{order_id} [delete]
func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required,uuid"); err != nil {
		utils.WriteValidationError(w, r, err)
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), orderID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBreakers отдает состояние circuit breaker-ов для интроспекции.
// @Summary      Состояние circuit breaker-ов
// @Tags         observability
// @Success      200  {object}  map[string]breaker.Stats
// @Router       /breakers [get]
func (h *HTTPHandler) GetBreakers(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]breaker.Stats, len(h.breakers))
	for _, b := range h.breakers {
		stats[b.Name()] = b.Stats()
	}
	utils.WriteJSON(w, stats, http.StatusOK)
}

func (h *HTTPHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entities.ErrOrderNotFound), errors.Is(err, entities.ErrNotFound):
		utils.WriteError(w, r, "Not Found", err.Error(), http.StatusNotFound)
	case errors.Is(err, entities.ErrBadRequest):
		utils.WriteError(w, r, "Bad Request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, entities.ErrServiceUnavailable):
		utils.WriteError(w, r, "Service Unavailable", err.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.ErrorContext(r.Context(), "unexpected error", slog.Any("error", err))
		utils.WriteError(w, r, "Internal Server Error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError)
	}
}
