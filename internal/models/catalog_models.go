package models

import "time"

// Category groups curtains in the catalog.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title" binding:"required"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Color is a fabric color option a curtain may be offered in.
type Color struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name" binding:"required"`
	HexCode string `json:"hex_code" db:"hex_code"`
}

// Curtain is a catalog item. Prices are stored in so'm as whole integers.
// DiscountPrice, when present and lower than Price, is the price customers
// actually pay (see FinalPrice).
type Curtain struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Slug          string    `json:"slug" db:"slug"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Price         int64     `json:"price" db:"price"`
	DiscountPrice *int64    `json:"discount_price,omitempty" db:"discount_price"`
	CategoryID    *int64    `json:"category_id,omitempty" db:"category_id"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	IsFeatured    bool      `json:"is_featured" db:"is_featured"`
	Views         int64     `json:"views" db:"views"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	Category *Category      `json:"category,omitempty"`
	Colors   []Color        `json:"colors,omitempty"`
	Images   []CurtainImage `json:"images,omitempty"`
}

// FinalPrice returns the effective price: the discount price when it is set
// and strictly lower than the list price, otherwise the list price.
func (c *Curtain) FinalPrice() int64 {
	if c.DiscountPrice != nil && *c.DiscountPrice < c.Price {
		return *c.DiscountPrice
	}
	return c.Price
}

// CurtainImage is a product photo. IsMain marks the image shown in listings.
type CurtainImage struct {
	ID        int64     `json:"id" db:"id"`
	CurtainID int64     `json:"curtain_id" db:"curtain_id"`
	ImagePath string    `json:"image_path" db:"image_path"`
	IsMain    bool      `json:"is_main" db:"is_main"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CurtainFilters defines the available filters for querying the catalog.
// This struct is used by both the service and repository layers.
type CurtainFilters struct {
	Search     *string `form:"search"`
	CategoryID *int64  `form:"category_id"`
	ColorID    *int64  `form:"color_id"`
	PriceMin   *int64  `form:"price_min"`
	PriceMax   *int64  `form:"price_max"`
	OnlyActive bool    `form:"-"` // forced true for public listings
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
