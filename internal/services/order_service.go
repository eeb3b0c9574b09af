package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"curtain_shop_backend/internal/models"
	"curtain_shop_backend/internal/repositories"
	"curtain_shop_backend/pkg/utils"
)

// Custom Errors
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrCurtainNotOrderable     = errors.New("curtain not found or not available for ordering")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrDuplicateOrderItem      = errors.New("curtain appears more than once in the order")
)

// maxOrderNumberRetries bounds the retry loop around the unique constraint on
// orders.order_number. Concurrent creations on the same day can race to the
// same daily sequence; the loser retries with a fresh read.
const maxOrderNumberRetries = 3

// --- Data Transfer Objects (DTOs) ---

// CreateOrderItemRequest is used for creating individual order items. The
// unit price is never taken from the client; it is snapshotted from the
// catalog at creation.
type CreateOrderItemRequest struct {
	CurtainID    int64   `json:"curtain_id" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required,gt=0"`
	CustomWidth  *int    `json:"custom_width"`
	CustomHeight *int    `json:"custom_height"`
	CustomNotes  *string `json:"custom_notes"`
}

// CreateOrderRequest is used for creating a new order. Guest checkout is
// allowed, so no user reference is required here.
type CreateOrderRequest struct {
	CustomerName    string                   `json:"customer_name" binding:"required"`
	CustomerPhone   string                   `json:"customer_phone" binding:"required"`
	CustomerAddress string                   `json:"customer_address" binding:"required"`
	Notes           *string                  `json:"notes"`
	Items           []CreateOrderItemRequest `json:"items" binding:"dive"`
}

// UpdateOrderStatusRequest is used for updating the status of an order.
type UpdateOrderStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// BulkUpdateStatusRequest moves several orders to the same status. Orders
// whose current status rejects the transition are skipped, not failed.
type BulkUpdateStatusRequest struct {
	OrderIDs []int64 `json:"order_ids" binding:"required"`
	Status   string  `json:"status" binding:"required"`
	Comment  string  `json:"comment"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(req CreateOrderRequest, customer *models.User) (*models.Order, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrderByNumber(orderNumber string) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderStatus(orderID int64, req UpdateOrderStatusRequest, actor *models.User) (*models.Order, error)
	BulkUpdateStatus(req BulkUpdateStatusRequest, actor *models.User) (int, error)
	CancelOrder(orderNumber string, actor *models.User, comment string) (*models.Order, error)
	GetOrderHistory(orderID int64) ([]models.OrderStatusHistory, error)
	GetOrderStats() (*models.OrderStats, error)
	DeleteOrder(orderID int64) error
}

// --- orderService Implementation ---
type orderService struct {
	orderRepo   repositories.OrderRepository
	catalogRepo repositories.CatalogRepository
	db          *sql.DB // For managing transactions
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(or repositories.OrderRepository, cr repositories.CatalogRepository, db *sql.DB) OrderService {
	return &orderService{
		orderRepo:   or,
		catalogRepo: cr,
		db:          db,
	}
}

// --- Method Implementations ---

// CreateOrder validates the customer snapshot and every requested item before
// touching the database, then creates the order, its number and its items in
// one transaction. Number assignment retries on an order_number collision.
func (s *orderService) CreateOrder(req CreateOrderRequest, customer *models.User) (*models.Order, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if strings.TrimSpace(req.CustomerAddress) == "" {
		return nil, fmt.Errorf("%w: customer address is required", ErrValidation)
	}
	phone, err := utils.NormalizePhone(req.CustomerPhone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	seenCurtains := make(map[int64]bool, len(req.Items))
	itemsToCreate := make([]models.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		if itemReq.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for curtain ID %d must be positive", ErrValidation, itemReq.CurtainID)
		}
		if seenCurtains[itemReq.CurtainID] {
			return nil, fmt.Errorf("%w: curtain ID %d", ErrDuplicateOrderItem, itemReq.CurtainID)
		}
		seenCurtains[itemReq.CurtainID] = true

		curtain, repoErr := s.catalogRepo.GetCurtainByID(itemReq.CurtainID)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: curtain ID %d", ErrCurtainNotOrderable, itemReq.CurtainID)
			}
			return nil, fmt.Errorf("failed to fetch curtain %d details: %w", itemReq.CurtainID, repoErr)
		}
		if !curtain.IsActive {
			return nil, fmt.Errorf("%w: curtain ID %d is inactive", ErrCurtainNotOrderable, itemReq.CurtainID)
		}

		// Snapshot the effective price at order time; it never changes after this.
		itemsToCreate = append(itemsToCreate, models.OrderItem{
			CurtainID:    itemReq.CurtainID,
			Quantity:     itemReq.Quantity,
			UnitPrice:    curtain.FinalPrice(),
			CustomWidth:  itemReq.CustomWidth,
			CustomHeight: itemReq.CustomHeight,
			CustomNotes:  itemReq.CustomNotes,
		})
	}

	order := models.Order{
		Status:          StatusPending,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   phone,
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		Notes:           req.Notes,
	}
	if customer != nil {
		customerID := customer.ID
		order.UserID = &customerID
	}

	createdOrderID, err := s.createOrderWithNumber(&order, itemsToCreate)
	if err != nil {
		return nil, err
	}
	return s.GetOrderByID(createdOrderID)
}

// createOrderWithNumber runs the transactional create. Each attempt reads the
// day's last order number, derives the next sequence and inserts; a duplicate
// order_number aborts the transaction and the whole attempt is redone.
func (s *orderService) createOrderWithNumber(order *models.Order, items []models.OrderItem) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		orderID, err := s.tryCreateOrder(order, items)
		if err == nil {
			return orderID, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("failed to assign a unique order number after %d attempts: %w", maxOrderNumberRetries, lastErr)
}

func (s *orderService) tryCreateOrder(order *models.Order, items []models.OrderItem) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	lastNumber, err := s.orderRepo.GetLastOrderNumberForDate(tx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to read last order number: %w", err)
	}
	order.OrderNumber = BuildOrderNumber(now, NextSequence(lastNumber))
	order.CreatedAt = now
	order.UpdatedAt = now

	createdOrderID, err := s.orderRepo.CreateOrder(tx, order)
	if err != nil {
		return 0, err
	}
	order.ID = createdOrderID

	for i := range items {
		items[i].OrderID = createdOrderID
		if _, err := s.orderRepo.CreateOrderItem(tx, &items[i]); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return 0, fmt.Errorf("%w: curtain ID %d", ErrDuplicateOrderItem, items[i].CurtainID)
			}
			return 0, fmt.Errorf("failed to create order item (curtain_id: %d): %w", items[i].CurtainID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit order transaction: %w", err)
	}
	return createdOrderID, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID from repository: %w", err)
	}
	return s.attachItemsAndTotals(order)
}

func (s *orderService) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByNumber(orderNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by number from repository: %w", err)
	}
	return s.attachItemsAndTotals(order)
}

// attachItemsAndTotals loads the order's items and computes the aggregate
// totals on demand; totals are never stored.
func (s *orderService) attachItemsAndTotals(order *models.Order) (*models.Order, error) {
	items, err := s.orderRepo.GetOrderItemsByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items for order ID %d: %w", order.ID, err)
	}
	order.Items = items
	order.TotalAmount = TotalAmount(items)
	order.TotalItemsCount = TotalItemsCount(items)
	return order, nil
}

// TotalAmount sums quantity * unit price across the given items.
func TotalAmount(items []models.OrderItem) int64 {
	var total int64
	for i := range items {
		total += items[i].TotalPrice()
	}
	return total
}

// TotalItemsCount sums the quantities across the given items.
func TotalItemsCount(items []models.OrderItem) int {
	count := 0
	for i := range items {
		count += items[i].Quantity
	}
	return count
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

// UpdateOrderStatus validates and applies one status transition, appending the
// audit record in the same transaction. A rejected transition leaves the order
// untouched.
func (s *orderService) UpdateOrderStatus(orderID int64, req UpdateOrderStatusRequest, actor *models.User) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for status update: %w", err)
	}

	if err := s.transition(order, req.Status, actor, req.Comment); err != nil {
		return nil, err
	}
	return s.GetOrderByID(orderID)
}

// BulkUpdateStatus applies the same transition to several orders, skipping
// the ones whose current status rejects it. Every order that does move gets
// its own history row; nothing bypasses the transition guard.
func (s *orderService) BulkUpdateStatus(req BulkUpdateStatusRequest, actor *models.User) (int, error) {
	if !IsValidOrderStatus(req.Status) {
		return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, req.Status)
	}

	updated := 0
	for _, orderID := range req.OrderIDs {
		order, err := s.orderRepo.GetOrderByID(orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return updated, fmt.Errorf("failed to fetch order %d for bulk update: %w", orderID, err)
		}
		err = s.transition(order, req.Status, actor, req.Comment)
		if err != nil {
			if errors.Is(err, ErrInvalidStatusTransition) {
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// CancelOrder cancels an order on behalf of its customer or a staff member.
func (s *orderService) CancelOrder(orderNumber string, actor *models.User, comment string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByNumber(orderNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for cancellation: %w", err)
	}

	isOwner := actor != nil && order.UserID != nil && *order.UserID == actor.ID
	isStaff := actor != nil && actor.IsStaff
	if !isOwner && !isStaff {
		return nil, fmt.Errorf("%w: only the order's customer or staff may cancel it", ErrPermissionDenied)
	}

	if comment == "" {
		comment = "Cancelled by customer"
		if isStaff && !isOwner {
			comment = "Cancelled by staff"
		}
	}

	if err := s.transition(order, StatusCancelled, actor, comment); err != nil {
		return nil, err
	}
	return s.GetOrderByID(order.ID)
}

// transition persists one accepted status change plus its history row in a
// single transaction.
func (s *orderService) transition(order *models.Order, newStatus string, actor *models.User, comment string) error {
	entry, err := applyTransition(order, newStatus, actor, comment, time.Now())
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.UpdateOrderStatus(tx, order); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to update order status in repository: %w", err)
	}
	if _, err := s.orderRepo.CreateStatusHistory(tx, entry); err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for order status update: %w", err)
	}
	return nil
}

func (s *orderService) GetOrderHistory(orderID int64) ([]models.OrderStatusHistory, error) {
	if _, err := s.orderRepo.GetOrderByID(orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for history: %w", err)
	}
	history, err := s.orderRepo.GetStatusHistoryByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	return history, nil
}

func (s *orderService) GetOrderStats() (*models.OrderStats, error) {
	stats, err := s.orderRepo.GetOrderStats()
	if err != nil {
		return nil, fmt.Errorf("failed to get order stats: %w", err)
	}
	return stats, nil
}

func (s *orderService) DeleteOrder(orderID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.DeleteOrder(tx, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return tx.Commit()
}
