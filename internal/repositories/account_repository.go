package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"curtain_shop_backend/internal/models"
)

// AccountRepository defines the interface for profile and address database
// operations.
type AccountRepository interface {
	// Profile methods
	GetProfile(userID int64) (*models.UserProfile, error)
	UpsertProfile(executor SQLExecutor, profile *models.UserProfile) error

	// Address methods
	CreateAddress(executor SQLExecutor, address *models.UserAddress) (int64, error)
	GetAddressByID(addressID int64) (*models.UserAddress, error)
	GetAddressesByUserID(userID int64) ([]models.UserAddress, error)
	UpdateAddress(executor SQLExecutor, address *models.UserAddress) error
	DeleteAddress(executor SQLExecutor, addressID int64, userID int64) error
	SetDefaultAddress(tx *sql.Tx, addressID int64, userID int64) error
}

type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

// --- Profile Methods ---

func (r *accountRepository) GetProfile(userID int64) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	query := `SELECT user_id, gender, bio, website, telegram, is_business, company_name
	          FROM user_profiles
	          WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(
		&profile.UserID, &profile.Gender, &profile.Bio, &profile.Website,
		&profile.Telegram, &profile.IsBusiness, &profile.CompanyName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting profile for user %d: %v", ErrDatabaseError, userID, err)
	}
	return profile, nil
}

func (r *accountRepository) UpsertProfile(executor SQLExecutor, profile *models.UserProfile) error {
	query := `INSERT INTO user_profiles (user_id, gender, bio, website, telegram, is_business, company_name)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (user_id) DO UPDATE SET
	            gender = EXCLUDED.gender, bio = EXCLUDED.bio, website = EXCLUDED.website,
	            telegram = EXCLUDED.telegram, is_business = EXCLUDED.is_business,
	            company_name = EXCLUDED.company_name`
	_, err := executor.Exec(query,
		profile.UserID, profile.Gender, profile.Bio, profile.Website,
		profile.Telegram, profile.IsBusiness, profile.CompanyName,
	)
	if err != nil {
		return fmt.Errorf("%w: upserting profile for user %d: %v", ErrDatabaseError, profile.UserID, err)
	}
	return nil
}

// --- Address Methods ---

func (r *accountRepository) CreateAddress(executor SQLExecutor, address *models.UserAddress) (int64, error) {
	query := `INSERT INTO user_addresses
	            (user_id, type, title, address_line_1, address_line_2, city, region,
	             postal_code, country, is_default, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	if address.CreatedAt.IsZero() {
		address.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		address.UserID, address.Type, address.Title, address.AddressLine1, address.AddressLine2,
		address.City, address.Region, address.PostalCode, address.Country, address.IsDefault,
		address.CreatedAt,
	).Scan(&address.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating address: %v", ErrDatabaseError, err)
	}
	return address.ID, nil
}

func (r *accountRepository) GetAddressByID(addressID int64) (*models.UserAddress, error) {
	address := &models.UserAddress{}
	query := `SELECT id, user_id, type, title, address_line_1, address_line_2, city, region,
	                 postal_code, country, is_default, created_at
	          FROM user_addresses
	          WHERE id = $1`
	err := r.db.QueryRow(query, addressID).Scan(
		&address.ID, &address.UserID, &address.Type, &address.Title,
		&address.AddressLine1, &address.AddressLine2, &address.City, &address.Region,
		&address.PostalCode, &address.Country, &address.IsDefault, &address.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting address by ID %d: %v", ErrDatabaseError, addressID, err)
	}
	return address, nil
}

func (r *accountRepository) GetAddressesByUserID(userID int64) ([]models.UserAddress, error) {
	addresses := []models.UserAddress{}
	query := `SELECT id, user_id, type, title, address_line_1, address_line_2, city, region,
	                 postal_code, country, is_default, created_at
	          FROM user_addresses
	          WHERE user_id = $1
	          ORDER BY is_default DESC, created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying addresses for user %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.UserAddress
		err := rows.Scan(
			&a.ID, &a.UserID, &a.Type, &a.Title,
			&a.AddressLine1, &a.AddressLine2, &a.City, &a.Region,
			&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning address: %v", ErrDatabaseError, err)
		}
		addresses = append(addresses, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating address rows: %v", ErrDatabaseError, err)
	}
	return addresses, nil
}

func (r *accountRepository) UpdateAddress(executor SQLExecutor, address *models.UserAddress) error {
	query := `UPDATE user_addresses
	          SET type = $1, title = $2, address_line_1 = $3, address_line_2 = $4,
	              city = $5, region = $6, postal_code = $7, country = $8
	          WHERE id = $9 AND user_id = $10`
	result, err := executor.Exec(query,
		address.Type, address.Title, address.AddressLine1, address.AddressLine2,
		address.City, address.Region, address.PostalCode, address.Country,
		address.ID, address.UserID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating address ID %d: %v", ErrDatabaseError, address.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for address update ID %d: %v", ErrDatabaseError, address.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) DeleteAddress(executor SQLExecutor, addressID int64, userID int64) error {
	query := `DELETE FROM user_addresses WHERE id = $1 AND user_id = $2`
	result, err := executor.Exec(query, addressID, userID)
	if err != nil {
		return fmt.Errorf("%w: deleting address ID %d: %v", ErrDatabaseError, addressID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting address ID %d: %v", ErrDatabaseError, addressID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefaultAddress makes one address the user's default. Clearing the flag
// on every other address and setting it on the target happen inside the same
// transaction, so exactly one default can ever be observed.
func (r *accountRepository) SetDefaultAddress(tx *sql.Tx, addressID int64, userID int64) error {
	_, err := tx.Exec(`UPDATE user_addresses SET is_default = false WHERE user_id = $1 AND is_default = true`, userID)
	if err != nil {
		return fmt.Errorf("%w: clearing default addresses for user %d: %v", ErrDatabaseError, userID, err)
	}

	result, err := tx.Exec(`UPDATE user_addresses SET is_default = true WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return fmt.Errorf("%w: setting default address ID %d: %v", ErrDatabaseError, addressID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for default address ID %d: %v", ErrDatabaseError, addressID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
