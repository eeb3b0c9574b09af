package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"curtain_shop_backend/internal/models"
	"curtain_shop_backend/internal/services"
	"curtain_shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// currentUser rebuilds the authenticated user from the claims the auth
// middleware placed in the context. Returns nil for anonymous requests.
func currentUser(c *gin.Context) *models.User {
	userID, exists := c.Get("userID")
	if !exists {
		return nil
	}
	user := &models.User{ID: userID.(int64)}
	if username, ok := c.Get("username"); ok {
		user.Username = username.(string)
	}
	if isStaff, ok := c.Get("isStaff"); ok {
		user.IsStaff = isStaff.(bool)
	}
	return user
}

// CreateOrder handles the creation of a new order with its items.
// Works for both guests and authenticated customers.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateOrder: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	createdOrder, err := h.orderService.CreateOrder(req, currentUser(c))
	if err != nil {
		utils.LogError(err, "CreateOrder: Error from orderService.CreateOrder")
		if errors.Is(err, services.ErrCurtainNotOrderable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "One or more curtains not found or not available for ordering.", err.Error()))
		} else if errors.Is(err, services.ErrDuplicateOrderItem) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "The same curtain appears more than once in the order.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order data.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, createdOrder)
}

// GetOrders handles fetching all orders with filters. Staff only.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	filters, ok := parseOrderFilters(c)
	if !ok {
		return
	}

	orders, totalCount, err := h.orderService.GetOrders(filters)
	if err != nil {
		utils.LogError(err, "GetOrders: Error from orderService.GetOrders")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid filter values.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch orders.", "Internal error"))
		}
		return
	}

	if orders == nil { // return an empty list instead of null
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      orders,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetMyOrders lists the authenticated customer's own orders.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing user ID"))
		return
	}

	filters, ok := parseOrderFilters(c)
	if !ok {
		return
	}
	filters.UserID = &user.ID
	filters.Search = nil // search is a staff facility

	orders, totalCount, err := h.orderService.GetOrders(filters)
	if err != nil {
		utils.LogError(err, "GetMyOrders: Error from orderService.GetOrders")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch orders.", "Internal error"))
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      orders,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetOrderByID handles fetching a single order by ID with its items. Staff only.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		utils.LogError(err, "GetOrderByID: Error from orderService.GetOrderByID for ID "+utils.Int64ToStr(orderID))
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// TrackOrder looks up a single order by its public order number, e.g.
// NC-20250314-007. No authentication required, so guests can track too.
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	orderNumber := c.Param("number")

	order, err := h.orderService.GetOrderByNumber(orderNumber)
	if err != nil {
		utils.LogError(err, "TrackOrder: Error from orderService.GetOrderByNumber for "+orderNumber)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus moves an order to a new status. Staff only; the status
// guard in the service rejects transitions the lifecycle does not allow.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateOrderStatus: Failed to bind JSON for ID "+utils.Int64ToStr(orderID))
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	updatedOrder, err := h.orderService.UpdateOrderStatus(orderID, req, currentUser(c))
	if err != nil {
		utils.LogError(err, "UpdateOrderStatus: Error from orderService.UpdateOrderStatus for ID "+utils.Int64ToStr(orderID))
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrInvalidStatusTransition) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "This status change is not allowed.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update order status.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
		"order":   updatedOrder,
	})
}

// BulkUpdateStatus moves several orders to the same status in one call.
// Staff only. Orders that cannot take the transition are skipped.
func (h *OrderHandler) BulkUpdateStatus(c *gin.Context) {
	var req services.BulkUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "BulkUpdateStatus: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	updated, err := h.orderService.BulkUpdateStatus(req, currentUser(c))
	if err != nil {
		utils.LogError(err, "BulkUpdateStatus: Error from orderService.BulkUpdateStatus")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid bulk update request.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update orders.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updated": updated,
	})
}

// CancelOrder cancels the order identified by its public order number.
// Customers may cancel their own pending/confirmed orders; staff may cancel
// any cancellable order.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderNumber := c.Param("number")

	var req struct {
		Comment string `json:"comment"`
	}
	// Body is optional for cancellation.
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderService.CancelOrder(orderNumber, currentUser(c), req.Comment)
	if err != nil {
		utils.LogError(err, "CancelOrder: Error from orderService.CancelOrder for "+orderNumber)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else if errors.Is(err, services.ErrPermissionDenied) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You are not allowed to cancel this order.", err.Error()))
		} else if errors.Is(err, services.ErrInvalidStatusTransition) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "This order can no longer be cancelled.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to cancel order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled",
		"order":   order,
	})
}

// GetOrderHistory returns the status change trail of an order. Staff only.
func (h *OrderHandler) GetOrderHistory(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	history, err := h.orderService.GetOrderHistory(orderID)
	if err != nil {
		utils.LogError(err, "GetOrderHistory: Error from orderService.GetOrderHistory for ID "+utils.Int64ToStr(orderID))
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order history.", "Internal error"))
		}
		return
	}
	if history == nil {
		history = []models.OrderStatusHistory{}
	}
	c.JSON(http.StatusOK, gin.H{"data": history})
}

// GetOrderStats returns counts for the staff dashboard. Staff only.
func (h *OrderHandler) GetOrderStats(c *gin.Context) {
	stats, err := h.orderService.GetOrderStats()
	if err != nil {
		utils.LogError(err, "GetOrderStats: Error from orderService.GetOrderStats")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order statistics.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DeleteOrder removes an order and its items. Staff only.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(orderID); err != nil {
		utils.LogError(err, "DeleteOrder: Error from orderService.DeleteOrder for ID "+utils.Int64ToStr(orderID))
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found to delete.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order and its items deleted successfully"})
}

// parseIDParam reads a positive int64 path parameter, responding with a 400
// itself when the value is malformed.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", "must be a positive integer"))
		return 0, false
	}
	return id, true
}

// parseOrderFilters reads the shared order list query parameters. On a bad
// value it writes the error response and returns ok=false.
func parseOrderFilters(c *gin.Context) (models.OrderFilters, bool) {
	var filters models.OrderFilters

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid user_id format.", err.Error()))
			return filters, false
		}
		filters.UserID = &userID
	}
	if status := c.Query("status"); status != "" {
		if !services.IsValidOrderStatus(status) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Unknown order status.", status))
			return filters, false
		}
		filters.Status = &status
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		filters.DateFrom = &dateFrom
	}
	if dateTo := c.Query("date_to"); dateTo != "" {
		filters.DateTo = &dateTo
	}

	filters.Page = 1
	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page format.", "page must be a positive integer"))
			return filters, false
		}
		filters.Page = page
	}
	filters.PageSize = 10
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil || pageSize <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid page_size format.", "page_size must be a positive integer"))
			return filters, false
		}
		filters.PageSize = pageSize
	}
	return filters, true
}
