package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{StatusCreated, StatusCooking, true},
		{StatusCooking, StatusDelivery, true},
		{StatusDelivery, StatusCompleted, true},
		{StatusCreated, StatusDelivery, false},
		{StatusCreated, StatusCompleted, false},
		{StatusCooking, StatusCreated, false},
		{StatusCompleted, StatusCreated, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusCooking, StatusCooking, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestEnums_Valid(t *testing.T) {
	assert.True(t, StatusDelivery.Valid())
	assert.False(t, OrderStatus("SHIPPED").Valid())
	assert.True(t, PaymentCard.Valid())
	assert.False(t, PaymentMethod("CRYPTO").Valid())
	assert.True(t, RoleEmployee.Valid())
	assert.False(t, Role("admin").Valid())
}

func TestUser_Password(t *testing.T) {
	u := &User{Email: "anna@example.com"}
	require.NoError(t, u.SetPassword("s3cret-pass"))

	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestOAuthClient_ClientInfo(t *testing.T) {
	c := &OAuthClient{ID: "kitchen-display", Domain: "http://localhost", UserID: 42}
	assert.Equal(t, "42", c.GetUserID())
	assert.False(t, c.IsPublic())

	c.UserID = 0
	assert.Equal(t, "", c.GetUserID())
}
