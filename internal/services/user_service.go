package services

import (
	"context"
	"errors"
	"strings"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	PhoneNumber string `json:"phone_number"`
}

type UserService interface {
	// Register creates an account with a bcrypt-hashed password
	Register(ctx context.Context, input RegisterInput, role models.Role) (*models.User, error)
	// Authenticate returns the user whose email and password match
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) Register(ctx context.Context, input RegisterInput, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role",
			apperrors.ValidationDetail{Field: "role", Message: "must be CLIENT or EMPLOYEE"})
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, input.Username).
		Count(&existing).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check existing users", err)
	}
	if existing > 0 {
		return nil, apperrors.NewConflictError("a user with this email or username already exists")
	}

	user := &models.User{
		Username:    input.Username,
		Email:       email,
		Role:        role,
		PhoneNumber: input.PhoneNumber,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError("a user with this email or username already exists")
		}
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, lookupError(err, "user", email)
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user", id)
		}
		return nil, apperrors.NewInternalError("failed to load user", err)
	}
	return &user, nil
}
