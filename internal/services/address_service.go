package services

import (
	"context"
	"strings"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AddressInput struct {
	City      string  `json:"city" binding:"required"`
	Street    string  `json:"street" binding:"required"`
	House     string  `json:"house" binding:"required"`
	Apartment *string `json:"apartment"`
}

type AddressService interface {
	AddAddress(ctx context.Context, userID uint, input AddressInput) (*models.Address, error)
	ListAddresses(ctx context.Context, userID uint) ([]models.Address, error)
	// RemoveAddress deletes an address owned by userID. Addresses used by an
	// active order cannot be removed.
	RemoveAddress(ctx context.Context, addressID, userID uint) error
}

type addressService struct {
	db *gorm.DB
}

func NewAddressService(db *gorm.DB) AddressService {
	return &addressService{db: db}
}

func (s *addressService) AddAddress(ctx context.Context, userID uint, input AddressInput) (*models.Address, error) {
	var details []apperrors.ValidationDetail
	required := []struct{ field, value string }{
		{"city", input.City},
		{"street", input.Street},
		{"house", input.House},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			details = append(details, apperrors.ValidationDetail{Field: r.field, Message: "is required"})
		}
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid address", details...)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id").First(&user, userID).Error; err != nil {
		return nil, lookupError(err, "user", userID)
	}

	address := &models.Address{
		UserID:    userID,
		City:      input.City,
		Street:    input.Street,
		House:     input.House,
		Apartment: input.Apartment,
	}
	if err := s.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to save address", err)
	}
	return address, nil
}

func (s *addressService) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	addresses := make([]models.Address, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&addresses).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to list addresses", err)
	}
	return addresses, nil
}

func (s *addressService) RemoveAddress(ctx context.Context, addressID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
			return lookupError(err, "address", addressID)
		}

		var active int64
		err := tx.Model(&models.Order{}).
			Where("address_id = ? AND status <> ?", addressID, models.StatusCompleted).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return apperrors.NewConflictError("address is used by an order that is still in progress")
		}

		return tx.Delete(&address).Error
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to remove address")
	}
	log.WithFields(logrus.Fields{"address_id": addressID, "user_id": userID}).Info("Address removed")
	return nil
}
