package services

import (
	"context"
	"fmt"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/shopspring/decimal"
)

// IngredientSelection customizes one ingredient of a cart item. Count is only
// meaningful for added ingredients and defaults to 1.
type IngredientSelection struct {
	IngredientID uint `json:"ingredient_id" binding:"required"`
	IsAdded      bool `json:"is_added"`
	Count        int  `json:"count" binding:"min=0"`
}

type CartItem struct {
	PizzaID     uint                  `json:"pizza_id" binding:"required"`
	Ingredients []IngredientSelection `json:"ingredients" binding:"dive"`
}

type PricedSelection struct {
	Ingredient models.Ingredient
	IsAdded    bool
	Count      int
	Amount     decimal.Decimal
}

type PricedLine struct {
	Pizza      models.Pizza
	Selections []PricedSelection
	Price      decimal.Decimal
}

type PricedCart struct {
	Lines []PricedLine
	Total decimal.Decimal
}

// PricingEngine turns a cart into priced line items. It only reads the catalog.
type PricingEngine interface {
	PriceCart(ctx context.Context, items []CartItem) (*PricedCart, error)
}

type pricingEngine struct {
	catalog CatalogReader
}

func NewPricingEngine(catalog CatalogReader) PricingEngine {
	return &pricingEngine{catalog: catalog}
}

func (e *pricingEngine) PriceCart(ctx context.Context, items []CartItem) (*PricedCart, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("cart is empty",
			apperrors.ValidationDetail{Field: "pizzas", Message: "at least one pizza is required"})
	}

	cart := &PricedCart{Lines: make([]PricedLine, 0, len(items)), Total: decimal.Zero}
	for i, item := range items {
		line, err := e.priceLine(ctx, i, item)
		if err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, *line)
		cart.Total = cart.Total.Add(line.Price)
	}
	return cart, nil
}

func (e *pricingEngine) priceLine(ctx context.Context, index int, item CartItem) (*PricedLine, error) {
	pizza, err := e.catalog.GetPizza(ctx, item.PizzaID)
	if err != nil {
		return nil, err
	}

	line := &PricedLine{
		Pizza:      *pizza,
		Selections: make([]PricedSelection, 0, len(item.Ingredients)),
		Price:      pizza.Price,
	}
	seen := make(map[uint]bool, len(item.Ingredients))
	for _, sel := range item.Ingredients {
		field := fmt.Sprintf("pizzas[%d].ingredients", index)
		if sel.Count < 0 {
			return nil, apperrors.NewValidationError("invalid ingredient count",
				apperrors.ValidationDetail{Field: field, Message: "count cannot be negative"})
		}
		if seen[sel.IngredientID] {
			return nil, apperrors.NewValidationError("duplicate ingredient selection",
				apperrors.ValidationDetail{Field: field, Message: fmt.Sprintf("ingredient %d is listed more than once", sel.IngredientID)})
		}
		seen[sel.IngredientID] = true

		ingredient, err := e.catalog.GetIngredient(ctx, sel.IngredientID)
		if err != nil {
			return nil, err
		}

		priced := PricedSelection{Ingredient: *ingredient, IsAdded: sel.IsAdded, Amount: decimal.Zero}
		if sel.IsAdded {
			priced.Count = sel.Count
			if priced.Count == 0 {
				priced.Count = 1
			}
			priced.Amount = ingredient.Price.Mul(decimal.NewFromInt(int64(priced.Count)))
			line.Price = line.Price.Add(priced.Amount)
		}
		line.Selections = append(line.Selections, priced)
	}
	return line, nil
}
