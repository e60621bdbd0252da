package controllers

import (
	"net/http"

	"github.com/PizzaFlow/backend/internal/services"
	"github.com/gin-gonic/gin"
)

type FavoriteController struct {
	favorites services.FavoriteService
}

func NewFavoriteController(favorites services.FavoriteService) *FavoriteController {
	return &FavoriteController{favorites: favorites}
}

// AddFavorite godoc
// @Summary Mark a pizza as favorite
// @Tags favorites
// @Param pizza_id path int true "Pizza ID"
// @Success 201
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/favorites/{pizza_id} [post]
func (fc *FavoriteController) AddFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	pizzaID, ok := parseID(c, "pizza_id")
	if !ok {
		return
	}

	if err := fc.favorites.AddFavorite(c.Request.Context(), userID, pizzaID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// RemoveFavorite godoc
// @Summary Unmark a favorite pizza
// @Tags favorites
// @Param pizza_id path int true "Pizza ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/favorites/{pizza_id} [delete]
func (fc *FavoriteController) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	pizzaID, ok := parseID(c, "pizza_id")
	if !ok {
		return
	}

	if err := fc.favorites.RemoveFavorite(c.Request.Context(), userID, pizzaID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFavorites godoc
// @Summary List favorite pizzas
// @Tags favorites
// @Produce json
// @Success 200 {array} models.Pizza
// @Security BearerAuth
// @Router /api/v1/protected/favorites [get]
func (fc *FavoriteController) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	pizzas, err := fc.favorites.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pizzas)
}
