package models

import "time"

// Order is the purchasable transaction. OrderNumber is assigned exactly once,
// at creation, and never regenerated. Customer contact fields are a snapshot
// taken at order time and stay valid even if the linked account changes later.
type Order struct {
	ID              int64      `json:"id" db:"id"`
	OrderNumber     string     `json:"order_number" db:"order_number"`
	Status          string     `json:"status" db:"status"`
	UserID          *int64     `json:"user_id,omitempty" db:"user_id"`
	CustomerName    string     `json:"customer_name" db:"customer_name"`
	CustomerPhone   string     `json:"customer_phone" db:"customer_phone"`
	CustomerAddress string     `json:"customer_address" db:"customer_address"`
	Notes           *string    `json:"notes,omitempty" db:"notes"`
	ProcessedByID   *int64     `json:"processed_by_id,omitempty" db:"processed_by_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`

	Items       []OrderItem `json:"items,omitempty"`
	ProcessedBy *User       `json:"processed_by,omitempty"`

	// Computed on read, never stored.
	TotalAmount     int64 `json:"total_amount"`
	TotalItemsCount int   `json:"total_items_count"`
}

// OrderItem references one curtain within an order. UnitPrice is snapshotted
// from the curtain's effective price at creation and never mutates, even if
// the catalog price changes afterwards. A curtain appears at most once per
// order; quantity captures repetition.
type OrderItem struct {
	ID           int64     `json:"id" db:"id"`
	OrderID      int64     `json:"order_id" db:"order_id"`
	CurtainID    int64     `json:"curtain_id" db:"curtain_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	UnitPrice    int64     `json:"unit_price" db:"unit_price"`
	CustomWidth  *int      `json:"custom_width,omitempty" db:"custom_width"`
	CustomHeight *int      `json:"custom_height,omitempty" db:"custom_height"`
	CustomNotes  *string   `json:"custom_notes,omitempty" db:"custom_notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Curtain *Curtain `json:"curtain,omitempty"`
}

// TotalPrice is this line's contribution to the order total.
func (i *OrderItem) TotalPrice() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// OrderStatusHistory is an append-only audit record, one row per accepted
// status transition. Rows are only ever written together with the transition
// itself.
type OrderStatusHistory struct {
	ID          int64     `json:"id" db:"id"`
	OrderID     int64     `json:"order_id" db:"order_id"`
	OldStatus   string    `json:"old_status" db:"old_status"`
	NewStatus   string    `json:"new_status" db:"new_status"`
	ChangedByID *int64    `json:"changed_by_id,omitempty" db:"changed_by_id"`
	Comment     *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	ChangedBy *User `json:"changed_by,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	UserID   *int64  `form:"user_id"`
	Status   *string `form:"status"`
	Search   *string `form:"search"`    // matches order number, customer name or phone
	DateFrom *string `form:"date_from"` // Expected format YYYY-MM-DD
	DateTo   *string `form:"date_to"`   // Expected format YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// OrderStats is the aggregate view used by the staff dashboard.
type OrderStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Today    int            `json:"today"`
	ThisWeek int            `json:"this_week"`
}
