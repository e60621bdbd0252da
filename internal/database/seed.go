package database

import (
	"fmt"

	"github.com/PizzaFlow/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedPizza struct {
	name        string
	price       string
	description string
	ingredients []string
}

var seedIngredients = map[string]string{
	"Mozzarella":   "1.50",
	"Tomato Sauce": "0.50",
	"Basil":        "0.70",
	"Pepperoni":    "2.00",
	"Mushrooms":    "1.20",
	"Bell Peppers": "1.00",
	"Olives":       "1.10",
	"Ham":          "1.80",
	"Pineapple":    "1.30",
	"Jalapeno":     "0.90",
}

var seedPizzas = []seedPizza{
	{"Margherita", "10.99", "Tomato sauce, mozzarella and fresh basil", []string{"Tomato Sauce", "Mozzarella", "Basil"}},
	{"Pepperoni", "12.99", "Spicy pepperoni over mozzarella", []string{"Tomato Sauce", "Mozzarella", "Pepperoni", "Jalapeno"}},
	{"Vegetarian", "11.99", "Garden vegetables and olives", []string{"Tomato Sauce", "Mozzarella", "Bell Peppers", "Olives", "Mushrooms"}},
	{"Hawaiian", "12.49", "Ham and pineapple", []string{"Tomato Sauce", "Mozzarella", "Ham", "Pineapple"}},
}

// Seed fills an empty catalog with the starter menu. It is a no-op when any
// pizza already exists.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Pizza{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count pizzas: %w", err)
	}
	if count > 0 {
		log.Info("Database already seeded with initial data")
		return nil
	}

	log.Info("Database is empty, seeding initial data")
	return db.Transaction(func(tx *gorm.DB) error {
		byName := make(map[string]models.Ingredient, len(seedIngredients))
		for name, price := range seedIngredients {
			ingredient := models.Ingredient{Name: name, Price: decimal.RequireFromString(price)}
			if err := tx.Create(&ingredient).Error; err != nil {
				return fmt.Errorf("seed ingredient %s: %w", name, err)
			}
			byName[name] = ingredient
		}

		for _, sp := range seedPizzas {
			pizza := models.Pizza{
				Name:        sp.name,
				Price:       decimal.RequireFromString(sp.price),
				Description: sp.description,
			}
			for _, name := range sp.ingredients {
				pizza.Ingredients = append(pizza.Ingredients, byName[name])
			}
			if err := tx.Create(&pizza).Error; err != nil {
				return fmt.Errorf("seed pizza %s: %w", sp.name, err)
			}
		}
		log.WithField("pizzas", len(seedPizzas)).Info("Database seeded successfully")
		return nil
	})
}
