package models

import "time"

// UserProfile holds optional extended information for a user account.
type UserProfile struct {
	UserID      int64   `json:"user_id" db:"user_id"`
	Gender      *string `json:"gender,omitempty" db:"gender"` // "M", "F" or "O"
	Bio         *string `json:"bio,omitempty" db:"bio"`
	Website     *string `json:"website,omitempty" db:"website"`
	Telegram    *string `json:"telegram,omitempty" db:"telegram"`
	IsBusiness  bool    `json:"is_business" db:"is_business"`
	CompanyName *string `json:"company_name,omitempty" db:"company_name"`
}

// UserAddress is a saved delivery address. At most one address per user
// carries is_default = true; the repository enforces that inside a single
// transaction when the flag is set.
type UserAddress struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Type         string    `json:"type" db:"type"` // home, work, other
	Title        string    `json:"title" db:"title"`
	AddressLine1 string    `json:"address_line_1" db:"address_line_1"`
	AddressLine2 *string   `json:"address_line_2,omitempty" db:"address_line_2"`
	City         string    `json:"city" db:"city"`
	Region       string    `json:"region" db:"region"`
	PostalCode   *string   `json:"postal_code,omitempty" db:"postal_code"`
	Country      string    `json:"country" db:"country"`
	IsDefault    bool      `json:"is_default" db:"is_default"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
