package controllers

import (
	"context"
	"net/http"

	"github.com/PizzaFlow/backend/internal/delivery"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/PizzaFlow/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// SlotProvider offers the delivery windows open for new orders.
type SlotProvider interface {
	AvailableSlots(ctx context.Context) ([]delivery.Slot, error)
}

type StatusUpdateRequest struct {
	Status models.OrderStatus `json:"status" binding:"required" example:"COOKING"`
}

type DeliveryTimesResponse struct {
	DeliveryTimes []string `json:"delivery_times" example:"13:00-13:30"`
}

type OrderController struct {
	orders   services.OrderService
	schedule SlotProvider
}

func NewOrderController(orders services.OrderService, schedule SlotProvider) *OrderController {
	return &OrderController{orders: orders, schedule: schedule}
}

// CreateOrder godoc
// @Summary Place an order
// @Description Prices the cart, validates the delivery time and stores the order
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.CreateOrderInput true "Order"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders [post]
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListMyOrders godoc
// @Summary List the caller's orders
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Security BearerAuth
// @Router /api/v1/protected/orders [get]
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := oc.orders.ListOrdersForUser(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListActiveOrders godoc
// @Summary List orders that are not completed
// @Tags employee
// @Produce json
// @Success 200 {array} models.Order
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/employee/orders [get]
func (oc *OrderController) ListActiveOrders(c *gin.Context) {
	orders, err := oc.orders.ListActiveOrders(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// UpdateStatus godoc
// @Summary Advance an order's status
// @Description CREATED, COOKING, DELIVERY, COMPLETED; one step at a time
// @Tags employee
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body StatusUpdateRequest true "New status"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/employee/orders/{id}/status [patch]
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	order, err := oc.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetDeliveryTimes godoc
// @Summary Delivery windows open for new orders
// @Tags orders
// @Produce json
// @Success 200 {object} DeliveryTimesResponse
// @Router /api/v1/public/delivery-times [get]
func (oc *OrderController) GetDeliveryTimes(c *gin.Context) {
	slots, err := oc.schedule.AvailableSlots(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	times := make([]string, 0, len(slots))
	for _, slot := range slots {
		times = append(times, slot.String())
	}
	c.JSON(http.StatusOK, DeliveryTimesResponse{DeliveryTimes: times})
}
