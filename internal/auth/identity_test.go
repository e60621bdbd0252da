package auth

import (
	"math"
	"testing"
	"time"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte(testSecret)

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"uid":  "42",
		"role": "CLIENT",
		"exp":  now.Add(time.Hour).Unix(),
		"iat":  now.Unix(),
	}
}

func TestIssueTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := IssueToken(secret, 7, models.RoleEmployee, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := Authenticate(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), identity.UserID)
	assert.Equal(t, models.RoleEmployee, identity.Role)

	_, _, err = IssueToken(secret, 0, models.RoleClient, time.Hour)
	assert.Error(t, err)
	_, _, err = IssueToken(secret, 1, "admin", time.Hour)
	assert.Error(t, err)
}

func TestAuthenticate_Rejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	notYet := validClaims()
	notYet["nbf"] = time.Now().Add(time.Hour).Unix()

	future := validClaims()
	future["iat"] = time.Now().Add(time.Hour).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	noUID := validClaims()
	delete(noUID, "uid")

	zeroUID := validClaims()
	zeroUID["uid"] = float64(0)

	textUID := validClaims()
	textUID["uid"] = "forty-two"

	fractionalUID := validClaims()
	fractionalUID["uid"] = 1.9

	hugeUID := validClaims()
	hugeUID["uid"] = float64(math.MaxUint32) + 1

	badRole := validClaims()
	badRole["role"] = "admin"

	noRole := validClaims()
	delete(noRole, "role")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.jwt"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("another-secret"), validClaims())},
		{"none algorithm", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims())},
		{"expired", sign(t, jwt.SigningMethodHS256, secret, expired)},
		{"not yet valid", sign(t, jwt.SigningMethodHS256, secret, notYet)},
		{"issued in the future", sign(t, jwt.SigningMethodHS256, secret, future)},
		{"missing exp", sign(t, jwt.SigningMethodHS256, secret, noExp)},
		{"missing uid", sign(t, jwt.SigningMethodHS256, secret, noUID)},
		{"zero uid", sign(t, jwt.SigningMethodHS256, secret, zeroUID)},
		{"non numeric uid", sign(t, jwt.SigningMethodHS256, secret, textUID)},
		{"fractional uid", sign(t, jwt.SigningMethodHS256, secret, fractionalUID)},
		{"uid out of range", sign(t, jwt.SigningMethodHS256, secret, hugeUID)},
		{"unknown role", sign(t, jwt.SigningMethodHS256, secret, badRole)},
		{"missing role", sign(t, jwt.SigningMethodHS256, secret, noRole)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Authenticate(tt.token, secret)
			_, ok := apperrors.IsUnauthorizedError(err)
			assert.True(t, ok, "expected unauthorized, got %v", err)
		})
	}
}

func TestAuthenticate_AcceptsNumericUIDAndAudience(t *testing.T) {
	claims := validClaims()
	claims["uid"] = float64(9)
	claims["aud"] = []interface{}{"dashboard"}
	claims["scope"] = "read"

	identity, err := Authenticate(sign(t, jwt.SigningMethodHS512, secret, claims), secret)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 9, Role: models.RoleClient, ClientID: "dashboard", Scope: "read"}, identity)
}

func TestAuthorize(t *testing.T) {
	employee := Identity{UserID: 1, Role: models.RoleEmployee}

	got, err := Authorize(employee, models.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, employee, got)

	_, err = Authorize(Identity{UserID: 2, Role: models.RoleClient}, models.RoleEmployee)
	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok)
}
