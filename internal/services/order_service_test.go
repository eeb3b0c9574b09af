package services

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"curtain_shop_backend/internal/models"
	"curtain_shop_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// txOnlyDriver backs a *sql.DB whose transactions begin and commit without a
// real database, so service methods that own transactions can run against
// repository mocks.
type txOnlyDriver struct{}

func (txOnlyDriver) Open(string) (driver.Conn, error) { return txOnlyConn{}, nil }

type txOnlyConn struct{}

func (txOnlyConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (txOnlyConn) Close() error                        { return nil }
func (txOnlyConn) Begin() (driver.Tx, error)           { return txOnlyTx{}, nil }

type txOnlyTx struct{}

func (txOnlyTx) Commit() error   { return nil }
func (txOnlyTx) Rollback() error { return nil }

func init() {
	sql.Register("services-tx-only", txOnlyDriver{})
}

type mockOrderRepository struct {
	createOrderFunc            func(order *models.Order) (int64, error)
	createOrderItemFunc        func(item *models.OrderItem) (int64, error)
	getLastOrderNumberFunc     func(date time.Time) (string, error)
	getOrderByIDFunc           func(orderID int64) (*models.Order, error)
	getOrderByNumberFunc       func(orderNumber string) (*models.Order, error)
	getOrdersFunc              func(filters models.OrderFilters) ([]models.Order, int, error)
	getOrderItemsByOrderIDFunc func(orderID int64) ([]models.OrderItem, error)
	getStatusHistoryFunc       func(orderID int64) ([]models.OrderStatusHistory, error)
	getOrderStatsFunc          func() (*models.OrderStats, error)
}

func (m *mockOrderRepository) CreateOrder(executor repositories.SQLExecutor, order *models.Order) (int64, error) {
	if m.createOrderFunc != nil {
		return m.createOrderFunc(order)
	}
	return 0, errors.New("not implemented")
}

func (m *mockOrderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	return m.getOrderByIDFunc(orderID)
}

func (m *mockOrderRepository) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	return m.getOrderByNumberFunc(orderNumber)
}

func (m *mockOrderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	return m.getOrdersFunc(filters)
}

func (m *mockOrderRepository) GetLastOrderNumberForDate(executor repositories.SQLExecutor, date time.Time) (string, error) {
	if m.getLastOrderNumberFunc != nil {
		return m.getLastOrderNumberFunc(date)
	}
	return "", errors.New("not implemented")
}

func (m *mockOrderRepository) UpdateOrderStatus(executor repositories.SQLExecutor, order *models.Order) error {
	return errors.New("not implemented")
}

func (m *mockOrderRepository) DeleteOrder(executor repositories.SQLExecutor, orderID int64) error {
	return errors.New("not implemented")
}

func (m *mockOrderRepository) CreateOrderItem(executor repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	if m.createOrderItemFunc != nil {
		return m.createOrderItemFunc(item)
	}
	return 0, errors.New("not implemented")
}

func (m *mockOrderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	return m.getOrderItemsByOrderIDFunc(orderID)
}

func (m *mockOrderRepository) CreateStatusHistory(executor repositories.SQLExecutor, entry *models.OrderStatusHistory) (int64, error) {
	return 0, errors.New("not implemented")
}

func (m *mockOrderRepository) GetStatusHistoryByOrderID(orderID int64) ([]models.OrderStatusHistory, error) {
	return m.getStatusHistoryFunc(orderID)
}

func (m *mockOrderRepository) GetOrderStats() (*models.OrderStats, error) {
	return m.getOrderStatsFunc()
}

type mockCatalogRepository struct {
	repositories.CatalogRepository
	getCurtainByIDFunc   func(curtainID int64) (*models.Curtain, error)
	getCurtainImagesFunc func(curtainID int64) ([]models.CurtainImage, error)
	viewsIncremented     int
}

func (m *mockCatalogRepository) GetCurtainByID(curtainID int64) (*models.Curtain, error) {
	return m.getCurtainByIDFunc(curtainID)
}

func (m *mockCatalogRepository) GetCurtainImages(curtainID int64) ([]models.CurtainImage, error) {
	if m.getCurtainImagesFunc != nil {
		return m.getCurtainImagesFunc(curtainID)
	}
	return nil, nil
}

func (m *mockCatalogRepository) IncrementCurtainViews(executor repositories.SQLExecutor, curtainID int64) error {
	m.viewsIncremented++
	return nil
}

func TestTotalAmount(t *testing.T) {
	items := []models.OrderItem{
		{Quantity: 2, UnitPrice: 100000},
		{Quantity: 1, UnitPrice: 50000},
	}
	assert.Equal(t, int64(250000), TotalAmount(items))
	assert.Equal(t, 3, TotalItemsCount(items))

	assert.Equal(t, int64(0), TotalAmount(nil))
	assert.Equal(t, 0, TotalItemsCount(nil))
}

func TestOrderService_GetOrderByID(t *testing.T) {
	orderRepo := &mockOrderRepository{
		getOrderByIDFunc: func(orderID int64) (*models.Order, error) {
			return &models.Order{ID: orderID, OrderNumber: "NC-20250314-001", Status: StatusPending}, nil
		},
		getOrderItemsByOrderIDFunc: func(orderID int64) ([]models.OrderItem, error) {
			return []models.OrderItem{
				{OrderID: orderID, CurtainID: 1, Quantity: 2, UnitPrice: 100000},
				{OrderID: orderID, CurtainID: 2, Quantity: 1, UnitPrice: 50000},
			}, nil
		},
	}
	svc := NewOrderService(orderRepo, &mockCatalogRepository{}, nil)

	order, err := svc.GetOrderByID(10)
	require.NoError(t, err)
	assert.Equal(t, "NC-20250314-001", order.OrderNumber)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, int64(250000), order.TotalAmount)
	assert.Equal(t, 3, order.TotalItemsCount)
}

func TestOrderService_GetOrderByNumber_NotFound(t *testing.T) {
	orderRepo := &mockOrderRepository{
		getOrderByNumberFunc: func(orderNumber string) (*models.Order, error) {
			return nil, repositories.ErrNotFound
		},
	}
	svc := NewOrderService(orderRepo, &mockCatalogRepository{}, nil)

	_, err := svc.GetOrderByNumber("NC-20250314-777")
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	activeCurtain := &models.Curtain{ID: 1, Title: "Tyul Premium", Price: 100000, IsActive: true}
	inactiveCurtain := &models.Curtain{ID: 2, Title: "Blackout", Price: 200000, IsActive: false}

	catalogRepo := &mockCatalogRepository{
		getCurtainByIDFunc: func(curtainID int64) (*models.Curtain, error) {
			switch curtainID {
			case 1:
				return activeCurtain, nil
			case 2:
				return inactiveCurtain, nil
			default:
				return nil, repositories.ErrNotFound
			}
		},
	}
	svc := NewOrderService(&mockOrderRepository{}, catalogRepo, nil)

	validItem := CreateOrderItemRequest{CurtainID: 1, Quantity: 1}

	tests := []struct {
		name      string
		req       CreateOrderRequest
		wantErrIs error
	}{
		{
			name: "missing_customer_name",
			req: CreateOrderRequest{
				CustomerPhone:   "901234567",
				CustomerAddress: "Tashkent, Chilonzor 5",
				Items:           []CreateOrderItemRequest{validItem},
			},
			wantErrIs: ErrValidation,
		},
		{
			name: "bad_phone",
			req: CreateOrderRequest{
				CustomerName:    "Aziza Karimova",
				CustomerPhone:   "12345",
				CustomerAddress: "Tashkent, Chilonzor 5",
				Items:           []CreateOrderItemRequest{validItem},
			},
			wantErrIs: ErrValidation,
		},
		{
			name: "zero_quantity",
			req: CreateOrderRequest{
				CustomerName:    "Aziza Karimova",
				CustomerPhone:   "901234567",
				CustomerAddress: "Tashkent, Chilonzor 5",
				Items:           []CreateOrderItemRequest{{CurtainID: 1, Quantity: 0}},
			},
			wantErrIs: ErrValidation,
		},
		{
			name: "duplicate_curtain",
			req: CreateOrderRequest{
				CustomerName:    "Aziza Karimova",
				CustomerPhone:   "901234567",
				CustomerAddress: "Tashkent, Chilonzor 5",
				Items:           []CreateOrderItemRequest{validItem, {CurtainID: 1, Quantity: 2}},
			},
			wantErrIs: ErrDuplicateOrderItem,
		},
		{
			name: "inactive_curtain",
			req: CreateOrderRequest{
				CustomerName:    "Aziza Karimova",
				CustomerPhone:   "901234567",
				CustomerAddress: "Tashkent, Chilonzor 5",
				Items:           []CreateOrderItemRequest{{CurtainID: 2, Quantity: 1}},
			},
			wantErrIs: ErrCurtainNotOrderable,
		},
		{
			name: "unknown_curtain",
			req: CreateOrderRequest{
				CustomerName:    "Aziza Karimova",
				CustomerPhone:   "901234567",
				CustomerAddress: "Tashkent, Chilonzor 5",
				Items:           []CreateOrderItemRequest{{CurtainID: 99, Quantity: 1}},
			},
			wantErrIs: ErrCurtainNotOrderable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(tt.req, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErrIs), "got %v", err)
		})
	}
}

func TestOrderService_CreateOrder_SnapshotsEffectivePrice(t *testing.T) {
	db, err := sql.Open("services-tx-only", "")
	require.NoError(t, err)
	defer db.Close()

	discount := int64(80000)
	catalogRepo := &mockCatalogRepository{
		getCurtainByIDFunc: func(curtainID int64) (*models.Curtain, error) {
			return &models.Curtain{ID: curtainID, Title: "Tyul Premium", Price: 100000, DiscountPrice: &discount, IsActive: true}, nil
		},
	}

	var persisted []models.OrderItem
	orderRepo := &mockOrderRepository{
		getLastOrderNumberFunc: func(date time.Time) (string, error) { return "", nil },
		createOrderFunc:        func(order *models.Order) (int64, error) { return 1, nil },
		createOrderItemFunc: func(item *models.OrderItem) (int64, error) {
			persisted = append(persisted, *item)
			return int64(len(persisted)), nil
		},
		getOrderByIDFunc: func(orderID int64) (*models.Order, error) {
			return &models.Order{ID: orderID, OrderNumber: "NC-20250314-001", Status: StatusPending}, nil
		},
		getOrderItemsByOrderIDFunc: func(orderID int64) ([]models.OrderItem, error) { return persisted, nil },
	}
	svc := NewOrderService(orderRepo, catalogRepo, db)

	// The request carries no price field at all; the stored unit price must
	// be the catalog's effective price at the time of ordering.
	order, err := svc.CreateOrder(CreateOrderRequest{
		CustomerName:    "Aziza Karimova",
		CustomerPhone:   "901234567",
		CustomerAddress: "Tashkent, Chilonzor 5",
		Items:           []CreateOrderItemRequest{{CurtainID: 1, Quantity: 5}},
	}, nil)
	require.NoError(t, err)

	require.Len(t, persisted, 1)
	assert.Equal(t, int64(80000), persisted[0].UnitPrice)
	assert.Equal(t, 5, persisted[0].Quantity)
	assert.Equal(t, int64(400000), order.TotalAmount)
}

func TestCreateOrderItemRequest_HasNoPriceField(t *testing.T) {
	// Clients must not be able to smuggle in a unit price through the public
	// order payload; the field does not exist on the request DTO at all.
	raw, err := json.Marshal(CreateOrderItemRequest{CurtainID: 1, Quantity: 2})
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(string(raw)), "price")
}

func TestOrderService_CancelOrder_PermissionDenied(t *testing.T) {
	ownerID := int64(5)
	orderRepo := &mockOrderRepository{
		getOrderByNumberFunc: func(orderNumber string) (*models.Order, error) {
			return &models.Order{ID: 1, OrderNumber: orderNumber, Status: StatusPending, UserID: &ownerID}, nil
		},
	}
	svc := NewOrderService(orderRepo, &mockCatalogRepository{}, nil)

	// Anonymous caller.
	_, err := svc.CancelOrder("NC-20250314-001", nil, "")
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	// A different, non-staff customer.
	stranger := &models.User{ID: 8}
	_, err = svc.CancelOrder("NC-20250314-001", stranger, "")
	assert.True(t, errors.Is(err, ErrPermissionDenied))
}

func TestOrderService_GetOrderHistory(t *testing.T) {
	changedBy := int64(7)
	orderRepo := &mockOrderRepository{
		getOrderByIDFunc: func(orderID int64) (*models.Order, error) {
			if orderID != 3 {
				return nil, repositories.ErrNotFound
			}
			return &models.Order{ID: 3, Status: StatusConfirmed}, nil
		},
		getStatusHistoryFunc: func(orderID int64) ([]models.OrderStatusHistory, error) {
			return []models.OrderStatusHistory{
				{OrderID: 3, OldStatus: StatusPending, NewStatus: StatusConfirmed, ChangedByID: &changedBy},
			}, nil
		},
	}
	svc := NewOrderService(orderRepo, &mockCatalogRepository{}, nil)

	history, err := svc.GetOrderHistory(3)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, StatusPending, history[0].OldStatus)
	assert.Equal(t, StatusConfirmed, history[0].NewStatus)

	_, err = svc.GetOrderHistory(99)
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestOrderService_GetOrderStats(t *testing.T) {
	orderRepo := &mockOrderRepository{
		getOrderStatsFunc: func() (*models.OrderStats, error) {
			return &models.OrderStats{
				Total:    12,
				ByStatus: map[string]int{StatusPending: 4, StatusDelivered: 8},
				Today:    2,
				ThisWeek: 6,
			}, nil
		},
	}
	svc := NewOrderService(orderRepo, &mockCatalogRepository{}, nil)

	stats, err := svc.GetOrderStats()
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Total)
	assert.Equal(t, 4, stats.ByStatus[StatusPending])
	assert.Equal(t, 2, stats.Today)
}
