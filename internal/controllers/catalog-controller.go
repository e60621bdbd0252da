package controllers

import (
	"net/http"

	"github.com/PizzaFlow/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CatalogController serves the menu and its employee upkeep
type CatalogController interface {
	// GetAllPizzas retrieves all pizzas with ingredients
	GetAllPizzas(c *gin.Context)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(c *gin.Context)
	// GetAllIngredients retrieves every ingredient
	GetAllIngredients(c *gin.Context)
	// CreatePizza creates a new pizza
	CreatePizza(c *gin.Context)
	// UpdatePizza updates an existing pizza
	UpdatePizza(c *gin.Context)
}

type catalogController struct {
	service services.CatalogService
}

func NewCatalogController(service services.CatalogService) CatalogController {
	return &catalogController{service: service}
}

// GetAllPizzas godoc
// @Summary Get all pizzas
// @Description Get the menu with each pizza's ingredients
// @Tags pizzas
// @Produce json
// @Success 200 {array} models.Pizza
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/pizzas [get]
func (cc *catalogController) GetAllPizzas(c *gin.Context) {
	pizzas, err := cc.service.ListPizzasWithIngredients(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pizzas)
}

// GetPizzaByID godoc
// @Summary Get pizza by ID
// @Tags pizzas
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/pizzas/{id} [get]
func (cc *catalogController) GetPizzaByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	pizza, err := cc.service.GetPizza(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pizza)
}

// GetAllIngredients godoc
// @Summary Get all ingredients
// @Tags pizzas
// @Produce json
// @Success 200 {array} models.Ingredient
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/ingredients [get]
func (cc *catalogController) GetAllIngredients(c *gin.Context) {
	ingredients, err := cc.service.ListIngredients(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// CreatePizza godoc
// @Summary Create a new pizza
// @Tags employee
// @Accept json
// @Produce json
// @Param pizza body services.PizzaInput true "Pizza"
// @Success 201 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/employee/pizzas [post]
func (cc *catalogController) CreatePizza(c *gin.Context) {
	var input services.PizzaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	pizza, err := cc.service.CreatePizza(c.Request.Context(), input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pizza)
}

// UpdatePizza godoc
// @Summary Update a pizza
// @Tags employee
// @Accept json
// @Produce json
// @Param id path int true "Pizza ID"
// @Param pizza body services.PizzaInput true "Pizza"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/employee/pizzas/{id} [put]
func (cc *catalogController) UpdatePizza(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input services.PizzaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	pizza, err := cc.service.UpdatePizza(c.Request.Context(), id, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pizza)
}
