package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"curtain_shop_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrderByNumber(orderNumber string) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error) // orders, total count, error
	GetLastOrderNumberForDate(executor SQLExecutor, date time.Time) (string, error)
	UpdateOrderStatus(executor SQLExecutor, order *models.Order) error
	DeleteOrder(executor SQLExecutor, orderID int64) error

	// OrderItem methods
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error)

	// Status history methods
	CreateStatusHistory(executor SQLExecutor, entry *models.OrderStatusHistory) (int64, error)
	GetStatusHistoryByOrderID(orderID int64) ([]models.OrderStatusHistory, error)

	// Aggregates
	GetOrderStats() (*models.OrderStats, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order Methods ---

// CreateOrder inserts an order with its already-assigned order number.
// A unique-constraint violation on order_number is reported as ErrDuplicateKey
// so the service can retry number assignment.
func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (order_number, status, user_id, customer_name, customer_phone, customer_address,
	             notes, processed_by_id, created_at, updated_at, confirmed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		order.OrderNumber, order.Status, order.UserID, order.CustomerName, order.CustomerPhone,
		order.CustomerAddress, order.Notes, order.ProcessedByID,
		order.CreatedAt, order.UpdatedAt, order.ConfirmedAt,
	).Scan(&order.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

const orderSelectColumns = `id, order_number, status, user_id, customer_name, customer_phone,
	customer_address, notes, processed_by_id, created_at, updated_at, confirmed_at`

func scanOrder(row *sql.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.Status, &order.UserID,
		&order.CustomerName, &order.CustomerPhone, &order.CustomerAddress,
		&order.Notes, &order.ProcessedByID,
		&order.CreatedAt, &order.UpdatedAt, &order.ConfirmedAt,
	)
	return order, err
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderSelectColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	query := `SELECT ` + orderSelectColumns + ` FROM orders WHERE order_number = $1`
	order, err := scanOrder(r.db.QueryRow(query, orderNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by number %s: %v", ErrDatabaseError, orderNumber, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            o.id, o.order_number, o.status, o.user_id, o.customer_name, o.customer_phone,
            o.customer_address, o.notes, o.processed_by_id, o.created_at, o.updated_at, o.confirmed_at,
            COALESCE((SELECT SUM(oi.quantity * oi.unit_price) FROM order_items oi WHERE oi.order_id = o.id), 0) as total_amount,
            COALESCE((SELECT SUM(oi.quantity) FROM order_items oi WHERE oi.order_id = o.id), 0) as total_items,
            COUNT(*) OVER() as total_count
        FROM orders o
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", argCounter))
		args = append(args, *filters.UserID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(o.order_number ILIKE $%d OR o.customer_name ILIKE $%d OR o.customer_phone ILIKE $%d)",
			argCounter, argCounter, argCounter))
		args = append(args, "%"+*filters.Search+"%")
		argCounter++
	}
	if filters.DateFrom != nil && *filters.DateFrom != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.DateFrom)
		if err == nil {
			conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argCounter))
			args = append(args, parsedDate)
			argCounter++
		}
	}
	if filters.DateTo != nil && *filters.DateTo != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.DateTo)
		if err == nil {
			endOfDay := parsedDate.AddDate(0, 0, 1).Add(-time.Nanosecond)
			conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argCounter))
			args = append(args, endOfDay)
			argCounter++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.Status, &o.UserID, &o.CustomerName, &o.CustomerPhone,
			&o.CustomerAddress, &o.Notes, &o.ProcessedByID, &o.CreatedAt, &o.UpdatedAt, &o.ConfirmedAt,
			&o.TotalAmount, &o.TotalItemsCount,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

// GetLastOrderNumberForDate returns the most recently assigned order number
// among orders created on the given calendar date, or "" when none exist.
func (r *orderRepository) GetLastOrderNumberForDate(executor SQLExecutor, date time.Time) (string, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	var orderNumber string
	query := `SELECT order_number FROM orders
	          WHERE created_at >= $1 AND created_at < $2
	          ORDER BY id DESC
	          LIMIT 1`
	err := executor.QueryRow(query, startOfDay, endOfDay).Scan(&orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%w: getting last order number for date: %v", ErrDatabaseError, err)
	}
	return orderNumber, nil
}

// UpdateOrderStatus persists the fields a status transition mutates: status,
// processed_by_id, confirmed_at and updated_at.
func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, order *models.Order) error {
	query := `UPDATE orders
	          SET status = $1, processed_by_id = $2, confirmed_at = $3, updated_at = $4
	          WHERE id = $5`
	result, err := executor.Exec(query,
		order.Status, order.ProcessedByID, order.ConfirmedAt, order.UpdatedAt, order.ID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, order.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, order.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOrder removes an order; its items and status history go with it via
// ON DELETE CASCADE.
func (r *orderRepository) DeleteOrder(executor SQLExecutor, orderID int64) error {
	result, err := executor.Exec(`DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("%w: deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items
	            (order_id, curtain_id, quantity, unit_price, custom_width, custom_height,
	             custom_notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		item.OrderID, item.CurtainID, item.Quantity, item.UnitPrice,
		item.CustomWidth, item.CustomHeight, item.CustomNotes, item.CreatedAt,
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // one row per (order, curtain)
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			case "23503":
				return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
			}
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `
		SELECT
		    oi.id, oi.order_id, oi.curtain_id, oi.quantity, oi.unit_price,
		    oi.custom_width, oi.custom_height, oi.custom_notes, oi.created_at,
		    c.title as curtain_title, c.slug as curtain_slug
		FROM order_items oi
		JOIN curtains c ON oi.curtain_id = c.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var curtainTitle, curtainSlug sql.NullString

		err := rows.Scan(
			&item.ID, &item.OrderID, &item.CurtainID, &item.Quantity, &item.UnitPrice,
			&item.CustomWidth, &item.CustomHeight, &item.CustomNotes, &item.CreatedAt,
			&curtainTitle, &curtainSlug,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}

		if curtainTitle.Valid {
			item.Curtain = &models.Curtain{
				ID:    item.CurtainID,
				Title: curtainTitle.String,
				Slug:  curtainSlug.String,
			}
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

// --- Status History Methods ---

func (r *orderRepository) CreateStatusHistory(executor SQLExecutor, entry *models.OrderStatusHistory) (int64, error) {
	query := `INSERT INTO order_status_history
	            (order_id, old_status, new_status, changed_by_id, comment, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		entry.OrderID, entry.OldStatus, entry.NewStatus, entry.ChangedByID,
		entry.Comment, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating status history entry: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

func (r *orderRepository) GetStatusHistoryByOrderID(orderID int64) ([]models.OrderStatusHistory, error) {
	history := []models.OrderStatusHistory{}
	query := `
		SELECT
		    h.id, h.order_id, h.old_status, h.new_status, h.changed_by_id, h.comment, h.created_at,
		    u.username as changed_by_username
		FROM order_status_history h
		LEFT JOIN users u ON h.changed_by_id = u.id
		WHERE h.order_id = $1
		ORDER BY h.created_at DESC, h.id DESC`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying status history for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.OrderStatusHistory
		var changedByUsername sql.NullString

		err := rows.Scan(
			&h.ID, &h.OrderID, &h.OldStatus, &h.NewStatus, &h.ChangedByID, &h.Comment, &h.CreatedAt,
			&changedByUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning status history for order ID %d: %v", ErrDatabaseError, orderID, err)
		}

		if h.ChangedByID != nil && changedByUsername.Valid {
			h.ChangedBy = &models.User{ID: *h.ChangedByID, Username: changedByUsername.String}
		}
		history = append(history, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating status history rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return history, nil
}

// --- Aggregates ---

func (r *orderRepository) GetOrderStats() (*models.OrderStats, error) {
	stats := &models.OrderStats{ByStatus: map[string]int{}}

	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order status counts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: scanning order status count: %v", ErrDatabaseError, err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order status counts: %v", ErrDatabaseError, err)
	}

	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := startOfToday.AddDate(0, 0, -7)

	err = r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE created_at >= $1`, startOfToday).Scan(&stats.Today)
	if err != nil {
		return nil, fmt.Errorf("%w: counting today's orders: %v", ErrDatabaseError, err)
	}
	err = r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE created_at >= $1`, weekAgo).Scan(&stats.ThisWeek)
	if err != nil {
		return nil, fmt.Errorf("%w: counting this week's orders: %v", ErrDatabaseError, err)
	}

	return stats, nil
}
