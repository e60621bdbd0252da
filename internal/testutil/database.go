package testutil

import (
	"strings"
	"testing"

	"github.com/PizzaFlow/backend/internal/database"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_")

// SetupTestDB returns a migrated in-memory SQLite database private to t.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory(nameReplacer.Replace(t.Name()))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: strings.Split(email, "@")[0],
		Email:    email,
		Role:     role,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func CreateAddress(t *testing.T, db *gorm.DB, userID uint) *models.Address {
	t.Helper()
	address := &models.Address{UserID: userID, City: "Moscow", Street: "Tverskaya", House: "7"}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	return address
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, price string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, Price: decimal.RequireFromString(price)}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	return ingredient
}

func CreatePizza(t *testing.T, db *gorm.DB, name, price string, ingredients ...models.Ingredient) *models.Pizza {
	t.Helper()
	pizza := &models.Pizza{Name: name, Price: decimal.RequireFromString(price), Ingredients: ingredients}
	if err := db.Create(pizza).Error; err != nil {
		t.Fatalf("create pizza: %v", err)
	}
	return pizza
}
