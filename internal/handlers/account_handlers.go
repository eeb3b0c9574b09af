package handlers

import (
	"errors"
	"net/http"

	"curtain_shop_backend/internal/models"
	"curtain_shop_backend/internal/services"
	"curtain_shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AccountHandler holds the account service.
type AccountHandler struct {
	accountService services.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(as services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: as}
}

// GetProfile returns the authenticated user's extended profile.
func (h *AccountHandler) GetProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing user ID"))
		return
	}

	profile, err := h.accountService.GetProfile(user.ID)
	if err != nil {
		utils.LogError(err, "GetProfile: Error from accountService.GetProfile")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch profile.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile partially updates the authenticated user's profile.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing user ID"))
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateProfile: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	profile, err := h.accountService.UpdateProfile(user.ID, req)
	if err != nil {
		utils.LogError(err, "UpdateProfile: Error from accountService.UpdateProfile")
		if errors.Is(err, services.ErrInvalidGender) || errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid profile data.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update profile.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetAddresses lists the authenticated user's delivery addresses.
func (h *AccountHandler) GetAddresses(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing user ID"))
		return
	}

	addresses, err := h.accountService.GetAddresses(user.ID)
	if err != nil {
		utils.LogError(err, "GetAddresses: Error from accountService.GetAddresses")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch addresses.", "Internal error"))
		return
	}
	if addresses == nil {
		addresses = []models.UserAddress{}
	}
	c.JSON(http.StatusOK, gin.H{"data": addresses})
}

// CreateAddress adds a delivery address for the authenticated user.
func (h *AccountHandler) CreateAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing user ID"))
		return
	}

	var req services.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateAddress: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	address, err := h.accountService.CreateAddress(user.ID, req)
	if err != nil {
		utils.LogError(err, "CreateAddress: Error from accountService.CreateAddress")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid address data.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create address.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, address)
}

// UpdateAddress edits one of the authenticated user's addresses.
func (h *AccountHandler) UpdateAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing user ID"))
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateAddress: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	address, err := h.accountService.UpdateAddress(user.ID, addressID, req)
	if err != nil {
		utils.LogError(err, "UpdateAddress: Error from accountService.UpdateAddress for ID "+utils.Int64ToStr(addressID))
		if errors.Is(err, services.ErrAddressNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Address not found.", err.Error()))
		} else if errors.Is(err, services.ErrPermissionDenied) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "This address belongs to another user.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid address data.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update address.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, address)
}

// DeleteAddress removes one of the authenticated user's addresses.
func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing user ID"))
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.accountService.DeleteAddress(user.ID, addressID); err != nil {
		utils.LogError(err, "DeleteAddress: Error from accountService.DeleteAddress for ID "+utils.Int64ToStr(addressID))
		if errors.Is(err, services.ErrAddressNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Address not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete address.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully"})
}

// SetDefaultAddress marks one address as the default, clearing the flag
// from the user's other addresses in the same transaction.
func (h *AccountHandler) SetDefaultAddress(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing user ID"))
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.accountService.SetDefaultAddress(user.ID, addressID); err != nil {
		utils.LogError(err, "SetDefaultAddress: Error from accountService.SetDefaultAddress for ID "+utils.Int64ToStr(addressID))
		if errors.Is(err, services.ErrAddressNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Address not found.", err.Error()))
		} else if errors.Is(err, services.ErrPermissionDenied) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "This address belongs to another user.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to set default address.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
}
