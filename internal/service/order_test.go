package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/entities"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/events"
	"github.com/Ay0u8dev/mini-ecommerce-backend/internal/service"
	"github.com/Ay0u8dev/mini-ecommerce-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	orders map[string]entities.Order

	saveErr   error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]entities.Order)}
}

func (r *fakeRepo) SaveOrder(_ context.Context, o entities.Order) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.orders[o.ID]; !ok {
		r.orders[o.ID] = o
	}
	return nil
}

func (r *fakeRepo) UpdateOrderStatus(_ context.Context, id string, status entities.OrderStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	o, ok := r.orders[id]
	if !ok {
		return entities.ErrOrderNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *fakeRepo) GetOrderByID(_ context.Context, id string) (entities.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeRepo) ListOrders(_ context.Context) ([]entities.Order, error) {
	result := make([]entities.Order, 0, len(r.orders))
	for _, o := range r.orders {
		result = append(result, o)
	}
	return result, nil
}

func (r *fakeRepo) ListOrdersByUserID(_ context.Context, userID int64) ([]entities.Order, error) {
	var result []entities.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (r *fakeRepo) ListOrdersByProductID(_ context.Context, productID int64) ([]entities.Order, error) {
	var result []entities.Order
	for _, o := range r.orders {
		if o.ProductID == productID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (r *fakeRepo) DeleteOrder(_ context.Context, id string) error {
	if _, ok := r.orders[id]; !ok {
		return entities.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

type fakeUserClient struct {
	user     entities.User
	degraded bool
	err      error
}

func (c *fakeUserClient) GetUser(_ context.Context, id int64) (entities.User, bool, error) {
	if c.err != nil {
		return entities.User{}, false, c.err
	}
	return c.user, c.degraded, nil
}

type fakeProductClient struct {
	product  entities.Product
	degraded bool
	err      error

	stock       int
	adjustErr   error
	adjustCalls int
}

func (c *fakeProductClient) GetProduct(_ context.Context, id int64) (entities.Product, bool, error) {
	if c.err != nil {
		return entities.Product{}, false, c.err
	}
	return c.product, c.degraded, nil
}

func (c *fakeProductClient) AdjustStock(_ context.Context, id int64, delta int) (entities.Product, error) {
	c.adjustCalls++
	if c.adjustErr != nil {
		return entities.Product{}, c.adjustErr
	}
	c.stock += delta
	p := c.product
	p.Stock = c.stock
	return p, nil
}

type fakePublisher struct {
	published []events.OrderEvent
}

func (p *fakePublisher) Publish(_ context.Context, event events.OrderEvent) {
	p.published = append(p.published, event)
}

func (p *fakePublisher) types() []string {
	result := make([]string, 0, len(p.published))
	for _, e := range p.published {
		result = append(result, e.EventType)
	}
	return result
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, callback func(ctx context.Context) error) error {
	return callback(ctx)
}

var (
	testUser    = entities.User{ID: 42, Name: "John Doe", Email: "john@example.com"}
	testProduct = entities.Product{ID: 7, Name: "Laptop", Price: 999.99, Stock: 5}

	testRetry = utils.RetryConfig{MaxAttempts: 2, InitialDelay: 1, Multiplier: 2}
)

func newTestService(repo *fakeRepo, users *fakeUserClient, products *fakeProductClient, publisher *fakePublisher) interface {
	CreateOrder(ctx context.Context, userID, productID int64, quantity int) (entities.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]entities.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status entities.OrderStatus) (entities.Order, error)
	DeleteOrder(ctx context.Context, id string) error
} {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewOrderService(logger, fakeTxManager{}, repo, users, products, publisher, testRetry)
}

func TestOrderService_CreateOrder_Completed(t *testing.T) {
	repo := newFakeRepo()
	users := &fakeUserClient{user: testUser}
	products := &fakeProductClient{product: testProduct, stock: 5}
	publisher := &fakePublisher{}

	svc := newTestService(repo, users, products, publisher)

	order, err := svc.CreateOrder(context.Background(), 42, 7, 3)
	require.NoError(t, err)

	assert.Equal(t, entities.StatusCompleted, order.Status)
	assert.Equal(t, int64(42), order.UserID)
	assert.Equal(t, int64(7), order.ProductID)
	assert.Equal(t, 3, order.Quantity)
	assert.InDelta(t, 2999.97, order.TotalPrice, 0.001)
	assert.Equal(t, "John Doe", order.UserName)
	assert.Equal(t, "Laptop", order.ProductName)

	saved, err := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, saved.Status)

	assert.Equal(t, 2, products.stock, "remote stock must be decremented")
	assert.Equal(t, []string{events.EventOrderCreated, events.EventOrderCompleted}, publisher.types())

	for _, e := range publisher.published {
		assert.Equal(t, order.ID, e.OrderID)
		assert.Equal(t, "john@example.com", e.UserEmail)
		assert.NotEmpty(t, e.EventID)
	}
}

func TestOrderService_CreateOrder_InsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	users := &fakeUserClient{user: testUser}
	products := &fakeProductClient{product: entities.Product{ID: 7, Name: "Laptop", Price: 999.99, Stock: 2}}
	publisher := &fakePublisher{}

	svc := newTestService(repo, users, products, publisher)

	_, err := svc.CreateOrder(context.Background(), 42, 7, 5)

	require.ErrorIs(t, err, entities.ErrBadRequest)
	assert.Contains(t, err.Error(), "Insufficient stock for 'Laptop'. Available: 2, Requested: 5")

	assert.Empty(t, repo.orders, "no order row on validation failure")
	assert.Empty(t, publisher.published, "no events on validation failure")
	assert.Zero(t, products.adjustCalls)
}

func TestOrderService_CreateOrder_UserNotFound(t *testing.T) {
	repo := newFakeRepo()
	users := &fakeUserClient{err: &entities.NotFoundError{Resource: "User", Field: "id", Value: int64(42)}}
	products := &fakeProductClient{product: testProduct}
	publisher := &fakePublisher{}

	svc := newTestService(repo, users, products, publisher)

	_, err := svc.CreateOrder(context.Background(), 42, 7, 3)

	require.ErrorIs(t, err, entities.ErrNotFound)
	assert.Empty(t, repo.orders)
	assert.Empty(t, publisher.published)
}

func TestOrderService_CreateOrder_DegradedUserLookup(t *testing.T) {
	repo := newFakeRepo()
	users := &fakeUserClient{user: entities.User{ID: 42}, degraded: true}
	products := &fakeProductClient{product: testProduct}
	publisher := &fakePublisher{}

	svc := newTestService(repo, users, products, publisher)

	_, err := svc.CreateOrder(context.Background(), 42, 7, 3)

	require.ErrorIs(t, err, entities.ErrServiceUnavailable)
	assert.Empty(t, repo.orders, "degraded lookup before persistence must not create a row")
	assert.Empty(t, publisher.published)
}

func TestOrderService_CreateOrder_DegradedProductLookup(t *testing.T) {
	repo := newFakeRepo()
	users := &fakeUserClient{user: testUser}
	products := &fakeProductClient{product: entities.Product{ID: 7}, degraded: true}
	publisher := &fakePublisher{}

	svc := newTestService(repo, users, products, publisher)

	_, err := svc.CreateOrder(context.Background(), 42, 7, 3)

	require.ErrorIs(t, err, entities.ErrServiceUnavailable)
	assert.Empty(t, repo.orders)
	assert.Empty(t, publisher.published)
}

func TestOrderService_CreateOrder_StockAdjustmentFails(t *testing.T) {
	repo := newFakeRepo()
	users := &fakeUserClient{user: testUser}
	products := &fakeProductClient{
		product: testProduct,
		adjustErr: &entities.ServiceCommunicationError{
			Service: "Product Service",
			Message: "connection refused",
		},
	}
	publisher := &fakePublisher{}

	svc := newTestService(repo, users, products, publisher)

	order, err := svc.CreateOrder(context.Background(), 42, 7, 3)

	// Ошибка уходит наверх, но заказ остается в базе как аудит
	require.ErrorIs(t, err, entities.ErrServiceUnavailable)
	require.NotEmpty(t, order.ID)

	saved, getErr := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entities.StatusFailed, saved.Status)

	assert.Equal(t, []string{events.EventOrderCreated, events.EventOrderFailed}, publisher.types())
	assert.Equal(t, 1, products.adjustCalls, "non-idempotent call must not be retried")
}

func TestOrderService_CreateOrder_SaveRetriesThenFails(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("db down")
	users := &fakeUserClient{user: testUser}
	products := &fakeProductClient{product: testProduct}
	publisher := &fakePublisher{}

	svc := newTestService(repo, users, products, publisher)

	_, err := svc.CreateOrder(context.Background(), 42, 7, 3)

	require.Error(t, err)
	assert.Empty(t, publisher.published, "no events if the order was never persisted")
	assert.Zero(t, products.adjustCalls)
}

func TestOrderService_GetOrdersByUserID(t *testing.T) {
	t.Run("degraded user check proceeds anyway", func(t *testing.T) {
		repo := newFakeRepo()
		repo.orders["o1"] = entities.Order{ID: "o1", UserID: 42, Status: entities.StatusCompleted}
		users := &fakeUserClient{user: entities.User{ID: 42}, degraded: true}
		publisher := &fakePublisher{}

		svc := newTestService(repo, users, &fakeProductClient{}, publisher)

		orders, err := svc.GetOrdersByUserID(context.Background(), 42)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("user not found", func(t *testing.T) {
		repo := newFakeRepo()
		users := &fakeUserClient{err: &entities.NotFoundError{Resource: "User", Field: "id", Value: int64(99)}}

		svc := newTestService(repo, users, &fakeProductClient{}, &fakePublisher{})

		_, err := svc.GetOrdersByUserID(context.Background(), 99)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

// Репозиторий, отклоняющий запросы с отмененным контекстом,
// как это сделал бы настоящий драйвер базы
type ctxAwareRepo struct {
	*fakeRepo
}

func (r *ctxAwareRepo) SaveOrder(ctx context.Context, o entities.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.fakeRepo.SaveOrder(ctx, o)
}

func (r *ctxAwareRepo) UpdateOrderStatus(ctx context.Context, id string, status entities.OrderStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.fakeRepo.UpdateOrderStatus(ctx, id, status)
}

// Клиент, "обрывающий соединение" посреди списания остатка
type disconnectingProductClient struct {
	fakeProductClient
	cancel context.CancelFunc
}

func (c *disconnectingProductClient) AdjustStock(ctx context.Context, id int64, delta int) (entities.Product, error) {
	c.cancel()
	return entities.Product{}, context.Canceled
}

func TestOrderService_CreateOrder_ClientDisconnectStillFinalizes(t *testing.T) {
	repo := &ctxAwareRepo{fakeRepo: newFakeRepo()}
	users := &fakeUserClient{user: testUser}
	publisher := &fakePublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	products := &disconnectingProductClient{
		fakeProductClient: fakeProductClient{product: testProduct, stock: 5},
		cancel:            cancel,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewOrderService(logger, fakeTxManager{}, repo, users, products, publisher, testRetry)

	order, err := svc.CreateOrder(ctx, 42, 7, 1)
	require.ErrorIs(t, err, entities.ErrServiceUnavailable)

	// Сага обязана довести заказ до терминального статуса,
	// даже если вызывающий отменил запрос после сохранения
	saved, getErr := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entities.StatusFailed, saved.Status)
	assert.Equal(t, []string{events.EventOrderCreated, events.EventOrderFailed}, publisher.types())
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["o1"] = entities.Order{ID: "o1", Status: entities.StatusPending}

	svc := newTestService(repo, &fakeUserClient{}, &fakeProductClient{}, &fakePublisher{})

	updated, err := svc.UpdateOrderStatus(context.Background(), "o1", entities.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, updated.Status)

	_, err = svc.UpdateOrderStatus(context.Background(), "missing", entities.StatusFailed)
	assert.ErrorIs(t, err, entities.ErrOrderNotFound)

	// COMPLETED - терминальный статус, заказ не переоткрывается
	_, err = svc.UpdateOrderStatus(context.Background(), "o1", entities.StatusPending)
	assert.ErrorIs(t, err, entities.ErrBadRequest)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["o1"] = entities.Order{ID: "o1"}

	svc := newTestService(repo, &fakeUserClient{}, &fakeProductClient{}, &fakePublisher{})

	require.NoError(t, svc.DeleteOrder(context.Background(), "o1"))
	assert.Empty(t, repo.orders)

	err := svc.DeleteOrder(context.Background(), "o1")
	assert.ErrorIs(t, err, entities.ErrOrderNotFound)
}
