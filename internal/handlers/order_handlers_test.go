package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"curtain_shop_backend/internal/models"
	"curtain_shop_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderService struct {
	createOrderFunc       func(req services.CreateOrderRequest, customer *models.User) (*models.Order, error)
	getOrderByNumberFunc  func(orderNumber string) (*models.Order, error)
	updateOrderStatusFunc func(orderID int64, req services.UpdateOrderStatusRequest, actor *models.User) (*models.Order, error)
	getOrderStatsFunc     func() (*models.OrderStats, error)
}

func (m *mockOrderService) CreateOrder(req services.CreateOrderRequest, customer *models.User) (*models.Order, error) {
	return m.createOrderFunc(req, customer)
}

func (m *mockOrderService) GetOrderByID(orderID int64) (*models.Order, error) {
	return nil, services.ErrOrderNotFound
}

func (m *mockOrderService) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	return m.getOrderByNumberFunc(orderNumber)
}

func (m *mockOrderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	return nil, 0, nil
}

func (m *mockOrderService) UpdateOrderStatus(orderID int64, req services.UpdateOrderStatusRequest, actor *models.User) (*models.Order, error) {
	return m.updateOrderStatusFunc(orderID, req, actor)
}

func (m *mockOrderService) BulkUpdateStatus(req services.BulkUpdateStatusRequest, actor *models.User) (int, error) {
	return 0, nil
}

func (m *mockOrderService) CancelOrder(orderNumber string, actor *models.User, comment string) (*models.Order, error) {
	return nil, services.ErrOrderNotFound
}

func (m *mockOrderService) GetOrderHistory(orderID int64) ([]models.OrderStatusHistory, error) {
	return nil, nil
}

func (m *mockOrderService) GetOrderStats() (*models.OrderStats, error) {
	return m.getOrderStatsFunc()
}

func (m *mockOrderService) DeleteOrder(orderID int64) error {
	return nil
}

func performRequest(handler gin.HandlerFunc, method, path, body string, setup func(*gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if setup != nil {
		setup(c)
	}
	handler(c)
	return w
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createFunc     func(req services.CreateOrderRequest, customer *models.User) (*models.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"customer_name":"Aziza Karimova","customer_phone":"901234567","customer_address":"Tashkent","items":[{"curtain_id":1,"quantity":2}]}`,
			createFunc: func(req services.CreateOrderRequest, customer *models.User) (*models.Order, error) {
				return &models.Order{ID: 1, OrderNumber: "NC-20250314-001", Status: "pending"}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing_required_fields",
			body:           `{"customer_name":"Aziza"}`,
			createFunc:     nil, // binding fails before the service is reached
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "inactive_curtain",
			body: `{"customer_name":"Aziza Karimova","customer_phone":"901234567","customer_address":"Tashkent","items":[{"curtain_id":5,"quantity":1}]}`,
			createFunc: func(req services.CreateOrderRequest, customer *models.User) (*models.Order, error) {
				return nil, services.ErrCurtainNotOrderable
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewOrderHandler(&mockOrderService{createOrderFunc: tt.createFunc})
			w := performRequest(handler.CreateOrder, http.MethodPost, "/api/v1/orders", tt.body, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_CreateOrder_PassesAuthenticatedUser(t *testing.T) {
	var gotCustomer *models.User
	handler := NewOrderHandler(&mockOrderService{
		createOrderFunc: func(req services.CreateOrderRequest, customer *models.User) (*models.Order, error) {
			gotCustomer = customer
			return &models.Order{ID: 1, OrderNumber: "NC-20250314-001"}, nil
		},
	})

	body := `{"customer_name":"Aziza Karimova","customer_phone":"901234567","customer_address":"Tashkent","items":[]}`
	w := performRequest(handler.CreateOrder, http.MethodPost, "/api/v1/orders", body, func(c *gin.Context) {
		c.Set("userID", int64(11))
		c.Set("username", "aziza")
		c.Set("isStaff", false)
	})

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, gotCustomer)
	assert.Equal(t, int64(11), gotCustomer.ID)
	assert.Equal(t, "aziza", gotCustomer.Username)
	assert.False(t, gotCustomer.IsStaff)
}

func TestOrderHandler_TrackOrder(t *testing.T) {
	handler := NewOrderHandler(&mockOrderService{
		getOrderByNumberFunc: func(orderNumber string) (*models.Order, error) {
			if orderNumber == "NC-20250314-001" {
				return &models.Order{ID: 1, OrderNumber: orderNumber, Status: "confirmed", TotalAmount: 250000}, nil
			}
			return nil, services.ErrOrderNotFound
		},
	})

	w := performRequest(handler.TrackOrder, http.MethodGet, "/api/v1/orders/track/NC-20250314-001", "", func(c *gin.Context) {
		c.Params = gin.Params{{Key: "number", Value: "NC-20250314-001"}}
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "NC-20250314-001", got.OrderNumber)
	assert.Equal(t, int64(250000), got.TotalAmount)

	w = performRequest(handler.TrackOrder, http.MethodGet, "/api/v1/orders/track/NC-20250314-999", "", func(c *gin.Context) {
		c.Params = gin.Params{{Key: "number", Value: "NC-20250314-999"}}
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		updateFunc     func(orderID int64, req services.UpdateOrderStatusRequest, actor *models.User) (*models.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"status":"confirmed"}`,
			updateFunc: func(orderID int64, req services.UpdateOrderStatusRequest, actor *models.User) (*models.Order, error) {
				return &models.Order{ID: orderID, Status: req.Status}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "rejected_transition",
			body: `{"status":"cancelled"}`,
			updateFunc: func(orderID int64, req services.UpdateOrderStatusRequest, actor *models.User) (*models.Order, error) {
				return nil, services.ErrInvalidStatusTransition
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "order_not_found",
			body: `{"status":"confirmed"}`,
			updateFunc: func(orderID int64, req services.UpdateOrderStatusRequest, actor *models.User) (*models.Order, error) {
				return nil, services.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewOrderHandler(&mockOrderService{updateOrderStatusFunc: tt.updateFunc})
			w := performRequest(handler.UpdateOrderStatus, http.MethodPatch, "/api/v1/staff/orders/1/status", tt.body, func(c *gin.Context) {
				c.Params = gin.Params{{Key: "id", Value: "1"}}
				c.Set("userID", int64(7))
				c.Set("username", "manager")
				c.Set("isStaff", true)
			})
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var got map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, true, got["success"])
			}
		})
	}
}

func TestOrderHandler_GetOrderStats(t *testing.T) {
	handler := NewOrderHandler(&mockOrderService{
		getOrderStatsFunc: func() (*models.OrderStats, error) {
			return &models.OrderStats{Total: 12, ByStatus: map[string]int{"pending": 4}, Today: 2, ThisWeek: 6}, nil
		},
	})

	w := performRequest(handler.GetOrderStats, http.MethodGet, "/api/v1/staff/orders/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.OrderStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 12, got.Total)
	assert.Equal(t, 4, got.ByStatus["pending"])
}
