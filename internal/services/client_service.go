package services

import (
	"context"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ClientInput struct {
	Name       string `json:"name" binding:"required"`
	Domain     string `json:"domain"`
	Scopes     string `json:"scopes"`
	GrantTypes string `json:"grant_types"`
}

// ClientService manages OAuth2 clients that act on behalf of a user, such as
// a kitchen display signing in as an employee.
type ClientService interface {
	// CreateClient registers a client and returns it with the plain secret,
	// which is not stored and cannot be recovered later.
	CreateClient(ctx context.Context, userID uint, input ClientInput) (*models.OAuthClient, string, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, userID uint, input ClientInput) (*models.OAuthClient, string, error) {
	secret := uuid.New().String()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to hash client secret", err)
	}

	grantTypes := input.GrantTypes
	if grantTypes == "" {
		grantTypes = "client_credentials"
	}
	client := &models.OAuthClient{
		ID:         uuid.New().String(),
		Secret:     string(hashed),
		Name:       input.Name,
		Domain:     input.Domain,
		UserID:     userID,
		Scopes:     input.Scopes,
		GrantTypes: grantTypes,
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, "", apperrors.NewInternalError("failed to create client", err)
	}
	log.WithField("client_id", client.ID).Info("OAuth client created")
	return client, secret, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	clients := make([]models.OAuthClient, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, apperrors.NewInternalError("failed to list clients", err)
	}
	return clients, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return apperrors.NewInternalError("failed to delete client", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("client", clientID)
	}
	return nil
}
