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

// CatalogRepository defines the interface for catalog database operations:
// categories, colors, curtains and their images.
type CatalogRepository interface {
	// Category methods
	CreateCategory(executor SQLExecutor, category *models.Category) (int64, error)
	GetCategories() ([]models.Category, error)
	GetCategoryByID(categoryID int64) (*models.Category, error)
	UpdateCategory(executor SQLExecutor, category *models.Category) error
	DeleteCategory(executor SQLExecutor, categoryID int64) error

	// Color methods
	CreateColor(executor SQLExecutor, color *models.Color) (int64, error)
	GetColors() ([]models.Color, error)
	DeleteColor(executor SQLExecutor, colorID int64) error

	// Curtain methods
	CreateCurtain(executor SQLExecutor, curtain *models.Curtain) (int64, error)
	GetCurtainByID(curtainID int64) (*models.Curtain, error)
	GetCurtains(filters models.CurtainFilters) ([]models.Curtain, int, error) // curtains, total count, error
	UpdateCurtain(executor SQLExecutor, curtain *models.Curtain) error
	DeleteCurtain(executor SQLExecutor, curtainID int64) error
	IncrementCurtainViews(executor SQLExecutor, curtainID int64) error
	SetCurtainColors(executor SQLExecutor, curtainID int64, colorIDs []int64) error

	// Image methods
	CreateCurtainImage(executor SQLExecutor, image *models.CurtainImage) (int64, error)
	GetCurtainImages(curtainID int64) ([]models.CurtainImage, error)
	DeleteCurtainImage(executor SQLExecutor, imageID int64) error
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// --- Category Methods ---

func (r *catalogRepository) CreateCategory(executor SQLExecutor, category *models.Category) (int64, error) {
	query := `INSERT INTO categories (title, slug, created_at) VALUES ($1, $2, $3) RETURNING id`
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}
	err := executor.QueryRow(query, category.Title, category.Slug, category.CreatedAt).Scan(&category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating category: %v", ErrDatabaseError, err)
	}
	return category.ID, nil
}

func (r *catalogRepository) GetCategories() ([]models.Category, error) {
	categories := []models.Category{}
	rows, err := r.db.Query(`SELECT id, title, slug, created_at FROM categories ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Title, &cat.Slug, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, cat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category rows: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

func (r *catalogRepository) GetCategoryByID(categoryID int64) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, title, slug, created_at FROM categories WHERE id = $1`
	err := r.db.QueryRow(query, categoryID).Scan(&category.ID, &category.Title, &category.Slug, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting category by ID %d: %v", ErrDatabaseError, categoryID, err)
	}
	return category, nil
}

func (r *catalogRepository) UpdateCategory(executor SQLExecutor, category *models.Category) error {
	query := `UPDATE categories SET title = $1, slug = $2 WHERE id = $3`
	result, err := executor.Exec(query, category.Title, category.Slug, category.ID)
	if err != nil {
		return fmt.Errorf("%w: updating category ID %d: %v", ErrDatabaseError, category.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for category update ID %d: %v", ErrDatabaseError, category.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteCategory(executor SQLExecutor, categoryID int64) error {
	result, err := executor.Exec(`DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("%w: deleting category ID %d: %v", ErrDatabaseError, categoryID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting category ID %d: %v", ErrDatabaseError, categoryID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Color Methods ---

func (r *catalogRepository) CreateColor(executor SQLExecutor, color *models.Color) (int64, error) {
	query := `INSERT INTO colors (name, hex_code) VALUES ($1, $2) RETURNING id`
	err := executor.QueryRow(query, color.Name, color.HexCode).Scan(&color.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating color: %v", ErrDatabaseError, err)
	}
	return color.ID, nil
}

func (r *catalogRepository) GetColors() ([]models.Color, error) {
	colors := []models.Color{}
	rows, err := r.db.Query(`SELECT id, name, hex_code FROM colors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying colors: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var col models.Color
		if err := rows.Scan(&col.ID, &col.Name, &col.HexCode); err != nil {
			return nil, fmt.Errorf("%w: scanning color: %v", ErrDatabaseError, err)
		}
		colors = append(colors, col)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating color rows: %v", ErrDatabaseError, err)
	}
	return colors, nil
}

func (r *catalogRepository) DeleteColor(executor SQLExecutor, colorID int64) error {
	result, err := executor.Exec(`DELETE FROM colors WHERE id = $1`, colorID)
	if err != nil {
		return fmt.Errorf("%w: deleting color ID %d: %v", ErrDatabaseError, colorID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting color ID %d: %v", ErrDatabaseError, colorID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Curtain Methods ---

func (r *catalogRepository) CreateCurtain(executor SQLExecutor, curtain *models.Curtain) (int64, error) {
	query := `INSERT INTO curtains
	            (title, slug, description, price, discount_price, category_id,
	             is_active, is_featured, views, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	if curtain.CreatedAt.IsZero() {
		curtain.CreatedAt = time.Now()
	}
	if curtain.UpdatedAt.IsZero() {
		curtain.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		curtain.Title, curtain.Slug, curtain.Description, curtain.Price, curtain.DiscountPrice,
		curtain.CategoryID, curtain.IsActive, curtain.IsFeatured, curtain.Views,
		curtain.CreatedAt, curtain.UpdatedAt,
	).Scan(&curtain.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating curtain: %v", ErrDatabaseError, err)
	}
	return curtain.ID, nil
}

func (r *catalogRepository) GetCurtainByID(curtainID int64) (*models.Curtain, error) {
	curtain := &models.Curtain{}
	var categoryTitle, categorySlug sql.NullString
	query := `
		SELECT c.id, c.title, c.slug, c.description, c.price, c.discount_price, c.category_id,
		       c.is_active, c.is_featured, c.views, c.created_at, c.updated_at,
		       cat.title as category_title, cat.slug as category_slug
		FROM curtains c
		LEFT JOIN categories cat ON c.category_id = cat.id
		WHERE c.id = $1`
	err := r.db.QueryRow(query, curtainID).Scan(
		&curtain.ID, &curtain.Title, &curtain.Slug, &curtain.Description,
		&curtain.Price, &curtain.DiscountPrice, &curtain.CategoryID,
		&curtain.IsActive, &curtain.IsFeatured, &curtain.Views,
		&curtain.CreatedAt, &curtain.UpdatedAt,
		&categoryTitle, &categorySlug,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting curtain by ID %d: %v", ErrDatabaseError, curtainID, err)
	}

	if curtain.CategoryID != nil && categoryTitle.Valid {
		curtain.Category = &models.Category{
			ID:    *curtain.CategoryID,
			Title: categoryTitle.String,
			Slug:  categorySlug.String,
		}
	}

	colors, err := r.getCurtainColors(curtainID)
	if err != nil {
		return nil, err
	}
	curtain.Colors = colors

	return curtain, nil
}

func (r *catalogRepository) GetCurtains(filters models.CurtainFilters) ([]models.Curtain, int, error) {
	curtains := []models.Curtain{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            c.id, c.title, c.slug, c.description, c.price, c.discount_price, c.category_id,
            c.is_active, c.is_featured, c.views, c.created_at, c.updated_at,
            cat.title as category_title,
            COUNT(*) OVER() as total_count
        FROM curtains c
        LEFT JOIN categories cat ON c.category_id = cat.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.OnlyActive {
		conditions = append(conditions, "c.is_active = true")
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(c.title ILIKE $%d OR c.description ILIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+*filters.Search+"%")
		argCounter++
	}
	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("c.category_id = $%d", argCounter))
		args = append(args, *filters.CategoryID)
		argCounter++
	}
	if filters.ColorID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"c.id IN (SELECT curtain_id FROM curtain_colors WHERE color_id = $%d)", argCounter))
		args = append(args, *filters.ColorID)
		argCounter++
	}
	if filters.PriceMin != nil {
		// LEAST matches Curtain.FinalPrice: a discount above the list price
		// never raises the effective price.
		conditions = append(conditions, fmt.Sprintf("LEAST(c.price, COALESCE(c.discount_price, c.price)) >= $%d", argCounter))
		args = append(args, *filters.PriceMin)
		argCounter++
	}
	if filters.PriceMax != nil {
		conditions = append(conditions, fmt.Sprintf("LEAST(c.price, COALESCE(c.discount_price, c.price)) <= $%d", argCounter))
		args = append(args, *filters.PriceMax)
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY c.is_featured DESC, c.created_at DESC")

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
		return nil, 0, fmt.Errorf("%w: querying curtains: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Curtain
		var categoryTitle sql.NullString

		err := rows.Scan(
			&c.ID, &c.Title, &c.Slug, &c.Description, &c.Price, &c.DiscountPrice, &c.CategoryID,
			&c.IsActive, &c.IsFeatured, &c.Views, &c.CreatedAt, &c.UpdatedAt,
			&categoryTitle,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning curtain: %v", ErrDatabaseError, err)
		}

		if c.CategoryID != nil && categoryTitle.Valid {
			c.Category = &models.Category{ID: *c.CategoryID, Title: categoryTitle.String}
		}
		curtains = append(curtains, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating curtain rows: %v", ErrDatabaseError, err)
	}
	return curtains, totalCount, nil
}

func (r *catalogRepository) UpdateCurtain(executor SQLExecutor, curtain *models.Curtain) error {
	query := `UPDATE curtains
	          SET title = $1, slug = $2, description = $3, price = $4, discount_price = $5,
	              category_id = $6, is_active = $7, is_featured = $8, updated_at = $9
	          WHERE id = $10`
	result, err := executor.Exec(query,
		curtain.Title, curtain.Slug, curtain.Description, curtain.Price, curtain.DiscountPrice,
		curtain.CategoryID, curtain.IsActive, curtain.IsFeatured, time.Now(), curtain.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating curtain ID %d: %v", ErrDatabaseError, curtain.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for curtain update ID %d: %v", ErrDatabaseError, curtain.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteCurtain(executor SQLExecutor, curtainID int64) error {
	result, err := executor.Exec(`DELETE FROM curtains WHERE id = $1`, curtainID)
	if err != nil {
		return fmt.Errorf("%w: deleting curtain ID %d: %v", ErrDatabaseError, curtainID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting curtain ID %d: %v", ErrDatabaseError, curtainID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) IncrementCurtainViews(executor SQLExecutor, curtainID int64) error {
	_, err := executor.Exec(`UPDATE curtains SET views = views + 1 WHERE id = $1`, curtainID)
	if err != nil {
		return fmt.Errorf("%w: incrementing views for curtain ID %d: %v", ErrDatabaseError, curtainID, err)
	}
	return nil
}

func (r *catalogRepository) SetCurtainColors(executor SQLExecutor, curtainID int64, colorIDs []int64) error {
	if _, err := executor.Exec(`DELETE FROM curtain_colors WHERE curtain_id = $1`, curtainID); err != nil {
		return fmt.Errorf("%w: clearing colors for curtain ID %d: %v", ErrDatabaseError, curtainID, err)
	}
	for _, colorID := range colorIDs {
		_, err := executor.Exec(`INSERT INTO curtain_colors (curtain_id, color_id) VALUES ($1, $2)`, curtainID, colorID)
		if err != nil {
			return fmt.Errorf("%w: linking color %d to curtain %d: %v", ErrDatabaseError, colorID, curtainID, err)
		}
	}
	return nil
}

func (r *catalogRepository) getCurtainColors(curtainID int64) ([]models.Color, error) {
	colors := []models.Color{}
	query := `SELECT co.id, co.name, co.hex_code
	          FROM colors co
	          JOIN curtain_colors cc ON cc.color_id = co.id
	          WHERE cc.curtain_id = $1
	          ORDER BY co.name`
	rows, err := r.db.Query(query, curtainID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying colors for curtain ID %d: %v", ErrDatabaseError, curtainID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var col models.Color
		if err := rows.Scan(&col.ID, &col.Name, &col.HexCode); err != nil {
			return nil, fmt.Errorf("%w: scanning curtain color: %v", ErrDatabaseError, err)
		}
		colors = append(colors, col)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating curtain color rows: %v", ErrDatabaseError, err)
	}
	return colors, nil
}

// --- Image Methods ---

func (r *catalogRepository) CreateCurtainImage(executor SQLExecutor, image *models.CurtainImage) (int64, error) {
	query := `INSERT INTO curtain_images (curtain_id, image_path, is_main, sort_order, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now()
	}
	err := executor.QueryRow(query,
		image.CurtainID, image.ImagePath, image.IsMain, image.SortOrder, image.CreatedAt,
	).Scan(&image.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating curtain image (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating curtain image: %v", ErrDatabaseError, err)
	}
	return image.ID, nil
}

func (r *catalogRepository) GetCurtainImages(curtainID int64) ([]models.CurtainImage, error) {
	images := []models.CurtainImage{}
	query := `SELECT id, curtain_id, image_path, is_main, sort_order, created_at
	          FROM curtain_images
	          WHERE curtain_id = $1
	          ORDER BY is_main DESC, sort_order, id`
	rows, err := r.db.Query(query, curtainID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying images for curtain ID %d: %v", ErrDatabaseError, curtainID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var img models.CurtainImage
		if err := rows.Scan(&img.ID, &img.CurtainID, &img.ImagePath, &img.IsMain, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning curtain image: %v", ErrDatabaseError, err)
		}
		images = append(images, img)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating curtain image rows: %v", ErrDatabaseError, err)
	}
	return images, nil
}

func (r *catalogRepository) DeleteCurtainImage(executor SQLExecutor, imageID int64) error {
	result, err := executor.Exec(`DELETE FROM curtain_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("%w: deleting curtain image ID %d: %v", ErrDatabaseError, imageID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting curtain image ID %d: %v", ErrDatabaseError, imageID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
