package models

import (
	"time"

	"github.com/PizzaFlow/backend/internal/delivery"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusCooking   OrderStatus = "COOKING"
	StatusDelivery  OrderStatus = "DELIVERY"
	StatusCompleted OrderStatus = "COMPLETED"
)

var statusFlow = map[OrderStatus]OrderStatus{
	StatusCreated:  StatusCooking,
	StatusCooking:  StatusDelivery,
	StatusDelivery: StatusCompleted,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusCooking, StatusDelivery, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is the single step that follows s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	want, ok := statusFlow[s]
	return ok && want == next
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCard
}

// Order is a placed order. Price is fixed at creation time.
type Order struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	UserID        uint               `gorm:"not null;index" json:"user_id"`
	User          User               `json:"user"`
	AddressID     uint               `gorm:"not null;index" json:"address_id"`
	Address       Address            `json:"address"`
	Status        OrderStatus        `gorm:"type:varchar(20);not null;index" json:"status"`
	Price         decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"price"`
	DeliveryTime  delivery.TimeOfDay `gorm:"type:varchar(5);not null" json:"delivery_time" swaggertype:"string" example:"18:30"`
	PaymentMethod PaymentMethod      `gorm:"type:varchar(10);not null" json:"payment_method"`
	Pizzas        []OrderPizza       `json:"pizzas"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// OrderPizza is one line item of an order.
type OrderPizza struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	OrderID     uint                   `gorm:"not null;index" json:"order_id"`
	PizzaID     uint                   `gorm:"not null;index" json:"pizza_id"`
	Pizza       Pizza                  `json:"pizza"`
	CustomPrice decimal.Decimal        `gorm:"type:decimal(10,2);not null" json:"custom_price"`
	Ingredients []OrderPizzaIngredient `json:"ingredients"`
}

// OrderPizzaIngredient records an ingredient added to or removed from a line item.
type OrderPizzaIngredient struct {
	OrderPizzaID uint       `gorm:"primaryKey;autoIncrement:false" json:"order_pizza_id"`
	IngredientID uint       `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id"`
	Ingredient   Ingredient `json:"ingredient"`
	IsAdded      bool       `gorm:"not null" json:"is_added"`
	Count        int        `gorm:"not null;default:0" json:"count"`
}
