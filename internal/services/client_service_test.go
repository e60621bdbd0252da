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

func TestClientService_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewClientService(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "kitchen@example.com", models.RoleEmployee)
	other := testutil.CreateUser(t, db, "other@example.com", models.RoleEmployee)

	client, secret, err := svc.CreateClient(ctx, owner.ID, ClientInput{Name: "Kitchen display", Scopes: "read"})
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, "client_credentials", client.GrantTypes)
	assert.NotEqual(t, secret, client.Secret)
	assert.True(t, client.VerifyPassword(secret))

	clients, err := svc.GetClientsByUserID(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, client.ID, clients[0].ID)

	none, err := svc.GetClientsByUserID(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	err = svc.DeleteClient(ctx, client.ID, other.ID)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "clients are only deleted by their owner")

	require.NoError(t, svc.DeleteClient(ctx, client.ID, owner.ID))
	err = svc.DeleteClient(ctx, client.ID, owner.ID)
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
