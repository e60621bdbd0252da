package services

import (
	"context"
	"strings"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogReader is the read side of the catalog needed to price a cart.
type CatalogReader interface {
	// GetPizza retrieves a pizza with its ingredients
	GetPizza(ctx context.Context, id uint) (*models.Pizza, error)
	// GetIngredient retrieves a single ingredient
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

// CatalogService provides access to pizzas and ingredients
type CatalogService interface {
	CatalogReader
	// ListPizzasWithIngredients returns every pizza with its ingredients, ordered by id
	ListPizzasWithIngredients(ctx context.Context) ([]models.Pizza, error)
	// ListIngredients returns every ingredient, ordered by id
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	// CreatePizza adds a pizza to the menu
	CreatePizza(ctx context.Context, input PizzaInput) (*models.Pizza, error)
	// UpdatePizza replaces a pizza's fields and ingredient set
	UpdatePizza(ctx context.Context, id uint, input PizzaInput) (*models.Pizza, error)
}

type PizzaInput struct {
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"10.99"`
	Description   string          `json:"description"`
	Photo         string          `json:"photo"`
	IngredientIDs []uint          `json:"ingredient_ids"`
}

func (in PizzaInput) validate() error {
	var details []apperrors.ValidationDetail
	if strings.TrimSpace(in.Name) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "is required"})
	}
	if !in.Price.IsPositive() {
		details = append(details, apperrors.ValidationDetail{Field: "price", Message: "must be positive"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid pizza", details...)
	}
	return nil
}

type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a catalog service bound to db, which may be a
// transaction.
func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

func (s *catalogService) ListPizzasWithIngredients(ctx context.Context) ([]models.Pizza, error) {
	pizzas := make([]models.Pizza, 0)
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id") }).
		Order("id").
		Find(&pizzas).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list pizzas", err)
	}
	return pizzas, nil
}

func (s *catalogService) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&ingredients).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to list ingredients", err)
	}
	return ingredients, nil
}

func (s *catalogService) GetPizza(ctx context.Context, id uint) (*models.Pizza, error) {
	var pizza models.Pizza
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id") }).
		First(&pizza, id).Error
	if err != nil {
		return nil, lookupError(err, "pizza", id)
	}
	return &pizza, nil
}

func (s *catalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, lookupError(err, "ingredient", id)
	}
	return &ingredient, nil
}

func (s *catalogService) CreatePizza(ctx context.Context, input PizzaInput) (*models.Pizza, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ingredients, err := loadIngredients(tx, input.IngredientIDs)
		if err != nil {
			return err
		}
		pizza := models.Pizza{
			Name:        input.Name,
			Price:       input.Price,
			Description: input.Description,
			Photo:       input.Photo,
			Ingredients: ingredients,
		}
		if err := tx.Create(&pizza).Error; err != nil {
			if isDuplicateKey(err) {
				return apperrors.NewConflictError("a pizza named " + input.Name + " already exists")
			}
			return err
		}
		id = pizza.ID
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create pizza")
	}
	log.WithField("pizza_id", id).Info("Pizza created")
	return s.GetPizza(ctx, id)
}

func (s *catalogService) UpdatePizza(ctx context.Context, id uint, input PizzaInput) (*models.Pizza, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pizza models.Pizza
		if err := tx.First(&pizza, id).Error; err != nil {
			return lookupError(err, "pizza", id)
		}
		ingredients, err := loadIngredients(tx, input.IngredientIDs)
		if err != nil {
			return err
		}

		pizza.Name = input.Name
		pizza.Price = input.Price
		pizza.Description = input.Description
		pizza.Photo = input.Photo
		if err := tx.Omit("Ingredients").Save(&pizza).Error; err != nil {
			if isDuplicateKey(err) {
				return apperrors.NewConflictError("a pizza named " + input.Name + " already exists")
			}
			return err
		}
		if len(ingredients) == 0 {
			return tx.Model(&pizza).Association("Ingredients").Clear()
		}
		return tx.Model(&pizza).Association("Ingredients").Replace(ingredients)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to update pizza")
	}
	log.WithField("pizza_id", id).Info("Pizza updated")
	return s.GetPizza(ctx, id)
}

func loadIngredients(tx *gorm.DB, ids []uint) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0, len(ids))
	for _, id := range ids {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, id).Error; err != nil {
			return nil, lookupError(err, "ingredient", id)
		}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, nil
}
