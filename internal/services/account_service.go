package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"curtain_shop_backend/internal/models"
	"curtain_shop_backend/internal/repositories"
)

// --- Custom Service Errors for Accounts ---
var (
	ErrAddressNotFound = errors.New("address not found")
	ErrInvalidGender   = errors.New("gender must be one of M, F or O")
)

var validAddressTypes = map[string]bool{"home": true, "work": true, "other": true}

// --- Account DTOs ---

type UpdateProfileRequest struct {
	Gender      *string `json:"gender"`
	Bio         *string `json:"bio"`
	Website     *string `json:"website"`
	Telegram    *string `json:"telegram"`
	IsBusiness  *bool   `json:"is_business"`
	CompanyName *string `json:"company_name"`
}

type CreateAddressRequest struct {
	Type         string  `json:"type"`
	Title        string  `json:"title" binding:"required"`
	AddressLine1 string  `json:"address_line_1" binding:"required"`
	AddressLine2 *string `json:"address_line_2"`
	City         string  `json:"city" binding:"required"`
	Region       string  `json:"region" binding:"required"`
	PostalCode   *string `json:"postal_code"`
	Country      string  `json:"country"`
	IsDefault    bool    `json:"is_default"`
}

// --- AccountService Interface ---
type AccountService interface {
	GetProfile(userID int64) (*models.UserProfile, error)
	UpdateProfile(userID int64, req UpdateProfileRequest) (*models.UserProfile, error)
	CreateAddress(userID int64, req CreateAddressRequest) (*models.UserAddress, error)
	GetAddresses(userID int64) ([]models.UserAddress, error)
	UpdateAddress(userID int64, addressID int64, req CreateAddressRequest) (*models.UserAddress, error)
	DeleteAddress(userID int64, addressID int64) error
	SetDefaultAddress(userID int64, addressID int64) error
}

// --- accountService Implementation ---
type accountService struct {
	accountRepo repositories.AccountRepository
	db          *sql.DB
}

// NewAccountService creates a new instance of AccountService.
func NewAccountService(repo repositories.AccountRepository, db *sql.DB) AccountService {
	return &accountService{
		accountRepo: repo,
		db:          db,
	}
}

func (s *accountService) GetProfile(userID int64) (*models.UserProfile, error) {
	profile, err := s.accountRepo.GetProfile(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// A missing profile row is not an error; every account implicitly
			// has an empty profile.
			return &models.UserProfile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *accountService) UpdateProfile(userID int64, req UpdateProfileRequest) (*models.UserProfile, error) {
	if req.Gender != nil {
		g := strings.ToUpper(strings.TrimSpace(*req.Gender))
		if g != "M" && g != "F" && g != "O" {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidGender, *req.Gender)
		}
		req.Gender = &g
	}

	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.Gender != nil {
		profile.Gender = req.Gender
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Website != nil {
		profile.Website = req.Website
	}
	if req.Telegram != nil {
		profile.Telegram = req.Telegram
	}
	if req.IsBusiness != nil {
		profile.IsBusiness = *req.IsBusiness
	}
	if req.CompanyName != nil {
		profile.CompanyName = req.CompanyName
	}

	if err := s.accountRepo.UpsertProfile(s.db, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

func (s *accountService) CreateAddress(userID int64, req CreateAddressRequest) (*models.UserAddress, error) {
	addressType := req.Type
	if addressType == "" {
		addressType = "home"
	}
	if !validAddressTypes[addressType] {
		return nil, fmt.Errorf("%w: address type must be one of home, work, other", ErrValidation)
	}
	country := req.Country
	if country == "" {
		country = "Uzbekistan"
	}

	address := &models.UserAddress{
		UserID:       userID,
		Type:         addressType,
		Title:        strings.TrimSpace(req.Title),
		AddressLine1: strings.TrimSpace(req.AddressLine1),
		AddressLine2: req.AddressLine2,
		City:         strings.TrimSpace(req.City),
		Region:       strings.TrimSpace(req.Region),
		PostalCode:   req.PostalCode,
		Country:      country,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.accountRepo.CreateAddress(tx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	if req.IsDefault {
		if err := s.accountRepo.SetDefaultAddress(tx, address.ID, userID); err != nil {
			return nil, fmt.Errorf("failed to set default address: %w", err)
		}
		address.IsDefault = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit address transaction: %w", err)
	}
	return address, nil
}

func (s *accountService) GetAddresses(userID int64) ([]models.UserAddress, error) {
	addresses, err := s.accountRepo.GetAddressesByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}
	return addresses, nil
}

func (s *accountService) UpdateAddress(userID int64, addressID int64, req CreateAddressRequest) (*models.UserAddress, error) {
	existing, err := s.accountRepo.GetAddressByID(addressID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to fetch address for update: %w", err)
	}
	if existing.UserID != userID {
		return nil, fmt.Errorf("%w: address belongs to another user", ErrPermissionDenied)
	}

	addressType := req.Type
	if addressType == "" {
		addressType = existing.Type
	}
	if !validAddressTypes[addressType] {
		return nil, fmt.Errorf("%w: address type must be one of home, work, other", ErrValidation)
	}

	existing.Type = addressType
	existing.Title = strings.TrimSpace(req.Title)
	existing.AddressLine1 = strings.TrimSpace(req.AddressLine1)
	existing.AddressLine2 = req.AddressLine2
	existing.City = strings.TrimSpace(req.City)
	existing.Region = strings.TrimSpace(req.Region)
	existing.PostalCode = req.PostalCode
	if req.Country != "" {
		existing.Country = req.Country
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.accountRepo.UpdateAddress(tx, existing); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	if req.IsDefault && !existing.IsDefault {
		if err := s.accountRepo.SetDefaultAddress(tx, existing.ID, userID); err != nil {
			return nil, fmt.Errorf("failed to set default address: %w", err)
		}
		existing.IsDefault = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit address transaction: %w", err)
	}
	return existing, nil
}

func (s *accountService) DeleteAddress(userID int64, addressID int64) error {
	if err := s.accountRepo.DeleteAddress(s.db, addressID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

// SetDefaultAddress makes one address the user's default. The clear-then-set
// runs in one transaction so two addresses can never both hold the flag.
func (s *accountService) SetDefaultAddress(userID int64, addressID int64) error {
	address, err := s.accountRepo.GetAddressByID(addressID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to fetch address: %w", err)
	}
	if address.UserID != userID {
		return fmt.Errorf("%w: address belongs to another user", ErrPermissionDenied)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.accountRepo.SetDefaultAddress(tx, addressID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("failed to set default address: %w", err)
	}

	return tx.Commit()
}
