package services

import (
	"context"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, pizzaID uint) error
	RemoveFavorite(ctx context.Context, userID, pizzaID uint) error
	// ListFavorites returns the user's favorite pizzas with ingredients, ordered by pizza id
	ListFavorites(ctx context.Context, userID uint) ([]models.Pizza, error)
}

type favoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) FavoriteService {
	return &favoriteService{db: db}
}

func (s *favoriteService) AddFavorite(ctx context.Context, userID, pizzaID uint) error {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Select("id").First(&user, userID).Error; err != nil {
		return lookupError(err, "user", userID)
	}
	var pizza models.Pizza
	if err := db.Select("id").First(&pizza, pizzaID).Error; err != nil {
		return lookupError(err, "pizza", pizzaID)
	}

	var existing int64
	if err := db.Model(&models.FavoritePizza{}).
		Where("user_id = ? AND pizza_id = ?", userID, pizzaID).
		Count(&existing).Error; err != nil {
		return apperrors.NewInternalError("failed to check favorites", err)
	}
	if existing > 0 {
		return apperrors.NewConflictError("pizza is already in favorites")
	}

	// a concurrent add can still win the race; the primary key catches it
	favorite := models.FavoritePizza{UserID: userID, PizzaID: pizzaID}
	if err := db.Omit(clause.Associations).Create(&favorite).Error; err != nil {
		if isDuplicateKey(err) {
			return apperrors.NewConflictError("pizza is already in favorites")
		}
		return apperrors.NewInternalError("failed to add favorite", err)
	}
	return nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, pizzaID uint) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND pizza_id = ?", userID, pizzaID).
		Delete(&models.FavoritePizza{})
	if result.Error != nil {
		return apperrors.NewInternalError("failed to remove favorite", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("favorite pizza", pizzaID)
	}
	return nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, userID uint) ([]models.Pizza, error) {
	pizzas := make([]models.Pizza, 0)
	err := s.db.WithContext(ctx).
		Joins("JOIN user_favorite_pizzas ON user_favorite_pizzas.pizza_id = pizzas.id").
		Where("user_favorite_pizzas.user_id = ?", userID).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id") }).
		Order("pizzas.id").
		Find(&pizzas).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list favorites", err)
	}
	return pizzas, nil
}
