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

// CatalogHandler holds the catalog service.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// --- Categories ---

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	category, err := h.catalogService.CreateCategory(req)
	if err != nil {
		utils.LogError(err, "CreateCategory: Error from catalogService.CreateCategory")
		respondCatalogError(c, err, "Failed to create category.")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories()
	if err != nil {
		utils.LogError(err, "GetCategories: Error from catalogService.GetCategories")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch categories.", "Internal error"))
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	category, err := h.catalogService.UpdateCategory(categoryID, req)
	if err != nil {
		utils.LogError(err, "UpdateCategory: Error from catalogService.UpdateCategory for ID "+utils.Int64ToStr(categoryID))
		respondCatalogError(c, err, "Failed to update category.")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(categoryID); err != nil {
		utils.LogError(err, "DeleteCategory: Error from catalogService.DeleteCategory for ID "+utils.Int64ToStr(categoryID))
		respondCatalogError(c, err, "Failed to delete category.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// --- Colors ---

func (h *CatalogHandler) CreateColor(c *gin.Context) {
	var req services.CreateColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	color, err := h.catalogService.CreateColor(req)
	if err != nil {
		utils.LogError(err, "CreateColor: Error from catalogService.CreateColor")
		respondCatalogError(c, err, "Failed to create color.")
		return
	}
	c.JSON(http.StatusCreated, color)
}

func (h *CatalogHandler) GetColors(c *gin.Context) {
	colors, err := h.catalogService.GetColors()
	if err != nil {
		utils.LogError(err, "GetColors: Error from catalogService.GetColors")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch colors.", "Internal error"))
		return
	}
	if colors == nil {
		colors = []models.Color{}
	}
	c.JSON(http.StatusOK, gin.H{"data": colors})
}

func (h *CatalogHandler) DeleteColor(c *gin.Context) {
	colorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteColor(colorID); err != nil {
		utils.LogError(err, "DeleteColor: Error from catalogService.DeleteColor for ID "+utils.Int64ToStr(colorID))
		respondCatalogError(c, err, "Failed to delete color.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Color deleted successfully"})
}

// --- Curtains ---

// GetCurtains lists curtains for the public storefront: only active ones,
// filterable by search text, category, color and price range.
func (h *CatalogHandler) GetCurtains(c *gin.Context) {
	filters, ok := parseCurtainFilters(c)
	if !ok {
		return
	}
	filters.OnlyActive = true

	h.listCurtains(c, filters)
}

// GetAllCurtains is the staff listing: inactive curtains included.
func (h *CatalogHandler) GetAllCurtains(c *gin.Context) {
	filters, ok := parseCurtainFilters(c)
	if !ok {
		return
	}
	filters.OnlyActive = false

	h.listCurtains(c, filters)
}

func (h *CatalogHandler) listCurtains(c *gin.Context, filters models.CurtainFilters) {
	curtains, totalCount, err := h.catalogService.GetCurtains(filters)
	if err != nil {
		utils.LogError(err, "listCurtains: Error from catalogService.GetCurtains")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch curtains.", "Internal error"))
		return
	}
	if curtains == nil {
		curtains = []models.Curtain{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      curtains,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetCurtainByID serves the public product page and bumps the view counter.
func (h *CatalogHandler) GetCurtainByID(c *gin.Context) {
	curtainID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	curtain, err := h.catalogService.GetCurtainByID(curtainID, true)
	if err != nil {
		utils.LogError(err, "GetCurtainByID: Error from catalogService.GetCurtainByID for ID "+utils.Int64ToStr(curtainID))
		respondCatalogError(c, err, "Failed to fetch curtain.")
		return
	}
	c.JSON(http.StatusOK, curtain)
}

func (h *CatalogHandler) CreateCurtain(c *gin.Context) {
	var req services.CreateCurtainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	curtain, err := h.catalogService.CreateCurtain(req)
	if err != nil {
		utils.LogError(err, "CreateCurtain: Error from catalogService.CreateCurtain")
		respondCatalogError(c, err, "Failed to create curtain.")
		return
	}
	c.JSON(http.StatusCreated, curtain)
}

func (h *CatalogHandler) UpdateCurtain(c *gin.Context) {
	curtainID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CreateCurtainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	curtain, err := h.catalogService.UpdateCurtain(curtainID, req)
	if err != nil {
		utils.LogError(err, "UpdateCurtain: Error from catalogService.UpdateCurtain for ID "+utils.Int64ToStr(curtainID))
		respondCatalogError(c, err, "Failed to update curtain.")
		return
	}
	c.JSON(http.StatusOK, curtain)
}

func (h *CatalogHandler) DeleteCurtain(c *gin.Context) {
	curtainID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCurtain(curtainID); err != nil {
		utils.LogError(err, "DeleteCurtain: Error from catalogService.DeleteCurtain for ID "+utils.Int64ToStr(curtainID))
		respondCatalogError(c, err, "Failed to delete curtain.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Curtain deleted successfully"})
}

// --- Images ---

func (h *CatalogHandler) AddCurtainImage(c *gin.Context) {
	curtainID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CreateCurtainImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	image, err := h.catalogService.AddCurtainImage(curtainID, req)
	if err != nil {
		utils.LogError(err, "AddCurtainImage: Error from catalogService.AddCurtainImage for curtain "+utils.Int64ToStr(curtainID))
		respondCatalogError(c, err, "Failed to add curtain image.")
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (h *CatalogHandler) DeleteCurtainImage(c *gin.Context) {
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCurtainImage(imageID); err != nil {
		utils.LogError(err, "DeleteCurtainImage: Error from catalogService.DeleteCurtainImage for ID "+utils.Int64ToStr(imageID))
		respondCatalogError(c, err, "Failed to delete curtain image.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

// respondCatalogError maps catalog service errors onto API responses.
func respondCatalogError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrCurtainNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Curtain not found.", err.Error()))
	case errors.Is(err, services.ErrCategoryNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Category not found.", err.Error()))
	case errors.Is(err, services.ErrSlugExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "An item with this title already exists.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid data.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
	}
}

// parseCurtainFilters reads the shared catalog listing query parameters.
func parseCurtainFilters(c *gin.Context) (models.CurtainFilters, bool) {
	var filters models.CurtainFilters

	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.ParseInt(categoryIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid category_id format.", err.Error()))
			return filters, false
		}
		filters.CategoryID = &categoryID
	}
	if colorIDStr := c.Query("color_id"); colorIDStr != "" {
		colorID, err := strconv.ParseInt(colorIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid color_id format.", err.Error()))
			return filters, false
		}
		filters.ColorID = &colorID
	}
	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		priceMin, err := strconv.ParseInt(priceMinStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid price_min format.", err.Error()))
			return filters, false
		}
		filters.PriceMin = &priceMin
	}
	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		priceMax, err := strconv.ParseInt(priceMaxStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid price_max format.", err.Error()))
			return filters, false
		}
		filters.PriceMax = &priceMax
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
	filters.PageSize = 12
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
