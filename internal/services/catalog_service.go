package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"curtain_shop_backend/internal/models"
	"curtain_shop_backend/internal/repositories"
	"curtain_shop_backend/pkg/utils"
)

// --- Custom Service Errors for Catalog ---
var (
	ErrCurtainNotFound  = errors.New("curtain not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSlugExists       = errors.New("an item with this title already exists")
)

// --- Catalog DTOs ---

type CreateCategoryRequest struct {
	Title string `json:"title" binding:"required"`
}

type CreateColorRequest struct {
	Name    string `json:"name" binding:"required"`
	HexCode string `json:"hex_code"`
}

type CreateCurtainRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   *string `json:"description"`
	Price         int64   `json:"price" binding:"required,gt=0"`
	DiscountPrice *int64  `json:"discount_price"`
	CategoryID    *int64  `json:"category_id"`
	ColorIDs      []int64 `json:"color_ids"`
	IsActive      *bool   `json:"is_active"`
	IsFeatured    bool    `json:"is_featured"`
}

type CreateCurtainImageRequest struct {
	ImagePath string `json:"image_path" binding:"required"`
	IsMain    bool   `json:"is_main"`
	SortOrder int    `json:"sort_order"`
}

// --- CatalogService Interface ---
type CatalogService interface {
	// Categories
	CreateCategory(req CreateCategoryRequest) (*models.Category, error)
	GetCategories() ([]models.Category, error)
	UpdateCategory(categoryID int64, req CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(categoryID int64) error

	// Colors
	CreateColor(req CreateColorRequest) (*models.Color, error)
	GetColors() ([]models.Color, error)
	DeleteColor(colorID int64) error

	// Curtains
	CreateCurtain(req CreateCurtainRequest) (*models.Curtain, error)
	GetCurtainByID(curtainID int64, public bool) (*models.Curtain, error)
	GetCurtains(filters models.CurtainFilters) ([]models.Curtain, int, error)
	UpdateCurtain(curtainID int64, req CreateCurtainRequest) (*models.Curtain, error)
	DeleteCurtain(curtainID int64) error

	// Images
	AddCurtainImage(curtainID int64, req CreateCurtainImageRequest) (*models.CurtainImage, error)
	DeleteCurtainImage(imageID int64) error
}

// --- catalogService Implementation ---
type catalogService struct {
	catalogRepo repositories.CatalogRepository
	db          *sql.DB
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(repo repositories.CatalogRepository, db *sql.DB) CatalogService {
	return &catalogService{
		catalogRepo: repo,
		db:          db,
	}
}

// --- Categories ---

func (s *catalogService) CreateCategory(req CreateCategoryRequest) (*models.Category, error) {
	category := &models.Category{
		Title: strings.TrimSpace(req.Title),
		Slug:  utils.Slugify(req.Title),
	}
	if category.Title == "" {
		return nil, fmt.Errorf("%w: category title is required", ErrValidation)
	}

	if _, err := s.catalogRepo.CreateCategory(s.db, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *catalogService) GetCategories() ([]models.Category, error) {
	categories, err := s.catalogRepo.GetCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) UpdateCategory(categoryID int64, req CreateCategoryRequest) (*models.Category, error) {
	category, err := s.catalogRepo.GetCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to fetch category for update: %w", err)
	}

	category.Title = strings.TrimSpace(req.Title)
	category.Slug = utils.Slugify(req.Title)
	if err := s.catalogRepo.UpdateCategory(s.db, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(categoryID int64) error {
	if err := s.catalogRepo.DeleteCategory(s.db, categoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// --- Colors ---

func (s *catalogService) CreateColor(req CreateColorRequest) (*models.Color, error) {
	color := &models.Color{
		Name:    strings.TrimSpace(req.Name),
		HexCode: strings.TrimSpace(req.HexCode),
	}
	if color.Name == "" {
		return nil, fmt.Errorf("%w: color name is required", ErrValidation)
	}
	if _, err := s.catalogRepo.CreateColor(s.db, color); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: color %q already exists", ErrValidation, color.Name)
		}
		return nil, fmt.Errorf("failed to create color: %w", err)
	}
	return color, nil
}

func (s *catalogService) GetColors() ([]models.Color, error) {
	colors, err := s.catalogRepo.GetColors()
	if err != nil {
		return nil, fmt.Errorf("failed to get colors: %w", err)
	}
	return colors, nil
}

func (s *catalogService) DeleteColor(colorID int64) error {
	if err := s.catalogRepo.DeleteColor(s.db, colorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: color ID %d", ErrValidation, colorID)
		}
		return fmt.Errorf("failed to delete color: %w", err)
	}
	return nil
}

// --- Curtains ---

func (s *catalogService) CreateCurtain(req CreateCurtainRequest) (*models.Curtain, error) {
	if err := validateCurtainPrices(req.Price, req.DiscountPrice); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	curtain := &models.Curtain{
		Title:         strings.TrimSpace(req.Title),
		Slug:          utils.Slugify(req.Title),
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		CategoryID:    req.CategoryID,
		IsActive:      isActive,
		IsFeatured:    req.IsFeatured,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.catalogRepo.CreateCurtain(tx, curtain); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to create curtain: %w", err)
	}
	if len(req.ColorIDs) > 0 {
		if err := s.catalogRepo.SetCurtainColors(tx, curtain.ID, req.ColorIDs); err != nil {
			return nil, fmt.Errorf("failed to link curtain colors: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit curtain transaction: %w", err)
	}
	return s.GetCurtainByID(curtain.ID, false)
}

// GetCurtainByID fetches one curtain with category, colors and images. On the
// public product page (public=true) inactive curtains are reported as not
// found, mirroring the listing, and the view counter is bumped. Staff calls
// pass public=false and see inactive curtains too.
func (s *catalogService) GetCurtainByID(curtainID int64, public bool) (*models.Curtain, error) {
	curtain, err := s.catalogRepo.GetCurtainByID(curtainID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCurtainNotFound
		}
		return nil, fmt.Errorf("failed to get curtain: %w", err)
	}
	if public && !curtain.IsActive {
		return nil, ErrCurtainNotFound
	}

	images, err := s.catalogRepo.GetCurtainImages(curtainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get curtain images: %w", err)
	}
	curtain.Images = images

	if public {
		if err := s.catalogRepo.IncrementCurtainViews(s.db, curtainID); err != nil {
			// A lost view count is not worth failing the request over.
			utils.LogError(err, "GetCurtainByID: failed to increment views")
		} else {
			curtain.Views++
		}
	}
	return curtain, nil
}

func (s *catalogService) GetCurtains(filters models.CurtainFilters) ([]models.Curtain, int, error) {
	curtains, totalCount, err := s.catalogRepo.GetCurtains(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get curtains: %w", err)
	}
	return curtains, totalCount, nil
}

func (s *catalogService) UpdateCurtain(curtainID int64, req CreateCurtainRequest) (*models.Curtain, error) {
	if err := validateCurtainPrices(req.Price, req.DiscountPrice); err != nil {
		return nil, err
	}

	curtain, err := s.catalogRepo.GetCurtainByID(curtainID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCurtainNotFound
		}
		return nil, fmt.Errorf("failed to fetch curtain for update: %w", err)
	}

	curtain.Title = strings.TrimSpace(req.Title)
	curtain.Slug = utils.Slugify(req.Title)
	curtain.Description = req.Description
	curtain.Price = req.Price
	curtain.DiscountPrice = req.DiscountPrice
	curtain.CategoryID = req.CategoryID
	if req.IsActive != nil {
		curtain.IsActive = *req.IsActive
	}
	curtain.IsFeatured = req.IsFeatured

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.catalogRepo.UpdateCurtain(tx, curtain); err != nil {
		return nil, fmt.Errorf("failed to update curtain: %w", err)
	}
	if req.ColorIDs != nil {
		if err := s.catalogRepo.SetCurtainColors(tx, curtain.ID, req.ColorIDs); err != nil {
			return nil, fmt.Errorf("failed to update curtain colors: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit curtain transaction: %w", err)
	}
	return s.GetCurtainByID(curtainID, false)
}

func (s *catalogService) DeleteCurtain(curtainID int64) error {
	if err := s.catalogRepo.DeleteCurtain(s.db, curtainID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCurtainNotFound
		}
		return fmt.Errorf("failed to delete curtain: %w", err)
	}
	return nil
}

// --- Images ---

func (s *catalogService) AddCurtainImage(curtainID int64, req CreateCurtainImageRequest) (*models.CurtainImage, error) {
	if _, err := s.catalogRepo.GetCurtainByID(curtainID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCurtainNotFound
		}
		return nil, fmt.Errorf("failed to fetch curtain for image: %w", err)
	}

	image := &models.CurtainImage{
		CurtainID: curtainID,
		ImagePath: strings.TrimSpace(req.ImagePath),
		IsMain:    req.IsMain,
		SortOrder: req.SortOrder,
	}
	if _, err := s.catalogRepo.CreateCurtainImage(s.db, image); err != nil {
		return nil, fmt.Errorf("failed to create curtain image: %w", err)
	}
	return image, nil
}

func (s *catalogService) DeleteCurtainImage(imageID int64) error {
	if err := s.catalogRepo.DeleteCurtainImage(s.db, imageID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: image ID %d", ErrValidation, imageID)
		}
		return fmt.Errorf("failed to delete curtain image: %w", err)
	}
	return nil
}

func validateCurtainPrices(price int64, discountPrice *int64) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if discountPrice != nil && *discountPrice <= 0 {
		return fmt.Errorf("%w: discount price must be positive when set", ErrValidation)
	}
	return nil
}
