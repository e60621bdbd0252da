package services

import (
	"context"
	"testing"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/PizzaFlow/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "anna",
		Email:    "Anna@Example.com",
		Password: "margherita",
	}, models.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.NotEqual(t, "margherita", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "anna@example.com", "margherita")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "anna@example.com", "pepperoni")
	_, ok := apperrors.IsUnauthorizedError(err)
	assert.True(t, ok, "wrong password")

	_, err = svc.Authenticate(ctx, "nobody@example.com", "margherita")
	_, ok = apperrors.IsUnauthorizedError(err)
	assert.True(t, ok, "unknown email")
}

func TestUserService_RegisterConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "anna", Email: "anna@example.com", Password: "secret1"}, models.RoleClient)
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "anna2", Email: "anna@example.com", Password: "secret1"}, models.RoleClient)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok, "same email")

	_, err = svc.Register(ctx, RegisterInput{Username: "anna", Email: "other@example.com", Password: "secret1"}, models.RoleClient)
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok, "same username")

	_, err = svc.Register(ctx, RegisterInput{Username: "root", Email: "root@example.com", Password: "secret1"}, models.Role("admin"))
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok, "unknown role")
}

func TestUserService_GetUserByIDUsesTheGivenID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	first := testutil.CreateUser(t, db, "first@example.com", models.RoleClient)
	second := testutil.CreateUser(t, db, "second@example.com", models.RoleEmployee)
	svc := NewUserService(db)

	got, err := svc.GetUserByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, got.ID)
	assert.Equal(t, "second@example.com", got.Email)

	_, err = svc.GetUserByID(context.Background(), 12345)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
