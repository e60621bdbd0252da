package models

import (
	"github.com/shopspring/decimal"
)

// Pizza represents a catalog pizza and the ingredients it can be customized with
type Pizza struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string          `json:"description"`
	Photo       string          `json:"photo,omitempty"`
	Ingredients []Ingredient    `gorm:"many2many:pizza_ingredients;" json:"ingredients"`
}

type Ingredient struct {
	ID    uint            `gorm:"primaryKey" json:"id"`
	Name  string          `gorm:"uniqueIndex;not null" json:"name"`
	Photo string          `json:"photo,omitempty"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// FavoritePizza links a user to a pizza they saved. The composite key keeps
// each pair unique.
type FavoritePizza struct {
	UserID  uint  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PizzaID uint  `gorm:"primaryKey;autoIncrement:false" json:"pizza_id"`
	Pizza   Pizza `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	User    User  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (FavoritePizza) TableName() string {
	return "user_favorite_pizzas"
}
