package controllers

import (
	"net/http"
	"time"

	"github.com/PizzaFlow/backend/internal/middleware"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router bundles the handlers mounted by NewRouter.
type Router struct {
	JWTSecret  []byte
	Logger     logrus.FieldLogger
	Auth       *AuthController
	Token      gin.HandlerFunc
	Catalog    CatalogController
	Orders     *OrderController
	Addresses  *AddressController
	Favorites  *FavoriteController
	Clients    *ClientController
	EnableDocs bool
}

// NewRouter builds the gin engine with every API route.
func NewRouter(r Router) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())
	if r.Logger != nil {
		router.Use(middleware.RequestLogger(r.Logger))
	}

	router.GET("/health", healthCheckHandler)
	if r.Token != nil {
		router.POST("/oauth/token", r.Token)
	}

	v1 := router.Group("/api/v1")
	{
		authApi := v1.Group("/auth")
		{
			authApi.POST("/register", r.Auth.Register)
			authApi.POST("/login", r.Auth.Login)
		}

		publicApi := v1.Group("/public")
		{
			publicApi.GET("/pizzas", r.Catalog.GetAllPizzas)
			publicApi.GET("/pizzas/:id", r.Catalog.GetPizzaByID)
			publicApi.GET("/ingredients", r.Catalog.GetAllIngredients)
			publicApi.GET("/delivery-times", r.Orders.GetDeliveryTimes)
		}

		protectedApi := v1.Group("/protected")
		protectedApi.Use(middleware.OAuth2Auth(r.JWTSecret))
		{
			protectedApi.GET("/me", r.Auth.CurrentUser)
			protectedApi.GET("/users/:id", r.Auth.GetUserByID)

			clientApi := protectedApi.Group("")
			clientApi.Use(middleware.RequireRole(models.RoleClient))
			{
				clientApi.POST("/orders", r.Orders.CreateOrder)
				clientApi.GET("/orders", r.Orders.ListMyOrders)
				clientApi.GET("/addresses", r.Addresses.ListAddresses)
				clientApi.POST("/addresses", r.Addresses.AddAddress)
				clientApi.DELETE("/addresses/:id", r.Addresses.RemoveAddress)
				clientApi.GET("/favorites", r.Favorites.ListFavorites)
				clientApi.POST("/favorites/:pizza_id", r.Favorites.AddFavorite)
				clientApi.DELETE("/favorites/:pizza_id", r.Favorites.RemoveFavorite)
			}

			employeeApi := protectedApi.Group("/employee")
			employeeApi.Use(middleware.RequireRole(models.RoleEmployee))
			{
				employeeApi.GET("/orders", r.Orders.ListActiveOrders)
				employeeApi.PATCH("/orders/:id/status", r.Orders.UpdateStatus)
				employeeApi.POST("/pizzas", r.Catalog.CreatePizza)
				employeeApi.PUT("/pizzas/:id", r.Catalog.UpdatePizza)
				employeeApi.POST("/clients", r.Clients.CreateClient)
				employeeApi.GET("/clients", r.Clients.ListClients)
				employeeApi.DELETE("/clients/:id", r.Clients.DeleteClient)
			}
		}
	}

	if r.EnableDocs {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return router
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "pizzaflow-backend",
	})
}
