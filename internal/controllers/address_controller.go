package controllers

import (
	"net/http"

	"github.com/PizzaFlow/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type AddressController struct {
	addresses services.AddressService
}

func NewAddressController(addresses services.AddressService) *AddressController {
	return &AddressController{addresses: addresses}
}

// AddAddress godoc
// @Summary Add a delivery address
// @Tags addresses
// @Accept json
// @Produce json
// @Param address body services.AddressInput true "Address"
// @Success 201 {object} models.Address
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/addresses [post]
func (ac *AddressController) AddAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	address, err := ac.addresses.AddAddress(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

// ListAddresses godoc
// @Summary List the caller's addresses
// @Tags addresses
// @Produce json
// @Success 200 {array} models.Address
// @Security BearerAuth
// @Router /api/v1/protected/addresses [get]
func (ac *AddressController) ListAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	addresses, err := ac.addresses.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

// RemoveAddress godoc
// @Summary Remove an address
// @Description Addresses used by an order in progress cannot be removed
// @Tags addresses
// @Param id path int true "Address ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/addresses/{id} [delete]
func (ac *AddressController) RemoveAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ac.addresses.RemoveAddress(c.Request.Context(), id, userID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
