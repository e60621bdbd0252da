package services

import (
	"context"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/delivery"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/PizzaFlow/backend/internal/notify"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateOrderInput struct {
	AddressID     uint                 `json:"address_id" binding:"required"`
	DeliveryTime  string               `json:"delivery_time" binding:"required" example:"18:30"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
	Pizzas        []CartItem           `json:"pizzas" binding:"required,min=1,dive"`
}

// DeliveryTimeValidator checks a requested delivery time against the schedule.
type DeliveryTimeValidator interface {
	ValidateRequestedTime(candidate string) (delivery.TimeOfDay, error)
}

// Notifier accepts messages for asynchronous delivery.
type Notifier interface {
	Enqueue(msg notify.Message) bool
}

type OrderService interface {
	// CreateOrder validates, prices and stores an order in one transaction
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*models.Order, error)
	// UpdateStatus advances an order one step and notifies its owner
	UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListActiveOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersForUser(ctx context.Context, userID uint) ([]models.Order, error)
	CountActiveOrders(ctx context.Context) (int64, error)
}

// ActiveOrderCounter counts orders that are not completed. It feeds the
// delivery scheduler's load shedding.
type ActiveOrderCounter struct {
	DB *gorm.DB
}

func (c ActiveOrderCounter) CountActiveOrders(ctx context.Context) (int64, error) {
	var count int64
	err := c.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status <> ?", models.StatusCompleted).
		Count(&count).Error
	return count, err
}

type orderService struct {
	db       *gorm.DB
	schedule DeliveryTimeValidator
	notifier Notifier
	counter  ActiveOrderCounter
}

func NewOrderService(db *gorm.DB, schedule DeliveryTimeValidator, notifier Notifier) OrderService {
	return &orderService{
		db:       db,
		schedule: schedule,
		notifier: notifier,
		counter:  ActiveOrderCounter{DB: db},
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*models.Order, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id").First(&user, userID).Error; err != nil {
		return nil, lookupError(err, "user", userID)
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", input.AddressID, userID).First(&address).Error; err != nil {
			return lookupError(err, "address", input.AddressID)
		}

		deliveryTime, err := s.schedule.ValidateRequestedTime(input.DeliveryTime)
		if err != nil {
			return err
		}

		if !input.PaymentMethod.Valid() {
			return apperrors.NewValidationError("invalid payment method",
				apperrors.ValidationDetail{Field: "payment_method", Message: "must be CASH or CARD"})
		}

		priced, err := NewPricingEngine(NewCatalogService(tx)).PriceCart(ctx, input.Pizzas)
		if err != nil {
			return err
		}

		order := models.Order{
			UserID:        userID,
			AddressID:     address.ID,
			Status:        models.StatusCreated,
			Price:         priced.Total,
			DeliveryTime:  deliveryTime,
			PaymentMethod: input.PaymentMethod,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		for _, line := range priced.Lines {
			item := models.OrderPizza{
				OrderID:     order.ID,
				PizzaID:     line.Pizza.ID,
				CustomPrice: line.Price,
			}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return err
			}
			for _, sel := range line.Selections {
				selection := models.OrderPizzaIngredient{
					OrderPizzaID: item.ID,
					IngredientID: sel.Ingredient.ID,
					IsAdded:      sel.IsAdded,
					Count:        sel.Count,
				}
				if err := tx.Omit(clause.Associations).Create(&selection).Error; err != nil {
					return err
				}
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create order")
	}

	log.WithFields(logrus.Fields{
		"order_id": orderID,
		"user_id":  userID,
	}).Info("Order created")
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid order status",
			apperrors.ValidationDetail{Field: "status", Message: "must be one of CREATED, COOKING, DELIVERY, COMPLETED"})
	}

	var previous models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			return lookupError(err, "order", orderID)
		}
		if !order.Status.CanTransitionTo(status) {
			return apperrors.NewConflictError("cannot change order status from " + string(order.Status) + " to " + string(status))
		}
		previous = order.Status
		return tx.Model(&order).Update("status", status).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to update order status")
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
	}).Info("Order status updated")
	s.notifyStatusChanged(order)
	return order, nil
}

// notifyStatusChanged runs after commit; it never fails the caller.
func (s *orderService) notifyStatusChanged(order *models.Order) {
	if s.notifier == nil {
		return
	}
	msg, err := notify.StatusChangedMessage(order.User.Email, order.ID, string(order.Status))
	if err != nil {
		log.WithError(err).WithField("order_id", order.ID).Error("Failed to render status notification")
		return
	}
	if !s.notifier.Enqueue(msg) {
		log.WithField("order_id", order.ID).Warn("Status notification was not queued")
	}
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.hydrated(ctx).First(&order, id).Error; err != nil {
		return nil, lookupError(err, "order", id)
	}
	return &order, nil
}

func (s *orderService) ListActiveOrders(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.hydrated(ctx).
		Where("status <> ?", models.StatusCompleted).
		Order("orders.id").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list active orders", err)
	}
	return orders, nil
}

func (s *orderService) ListOrdersForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.hydrated(ctx).
		Where("user_id = ?", userID).
		Order("orders.id").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list orders", err)
	}
	return orders, nil
}

func (s *orderService) CountActiveOrders(ctx context.Context) (int64, error) {
	count, err := s.counter.CountActiveOrders(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count active orders", err)
	}
	return count, nil
}

// hydrated preloads everything an order response shows. Addresses are loaded
// unscoped so orders keep their destination after the address is removed.
func (s *orderService) hydrated(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("User").
		Preload("Address", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Pizzas", func(db *gorm.DB) *gorm.DB { return db.Order("order_pizzas.id") }).
		Preload("Pizzas.Pizza").
		Preload("Pizzas.Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("order_pizza_ingredients.ingredient_id") }).
		Preload("Pizzas.Ingredients.Ingredient")
}
