package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/PizzaFlow/backend/internal/models"
	"github.com/PizzaFlow/backend/internal/services"
	"github.com/PizzaFlow/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oautherrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret-key-32-characters"

func newTestOAuthService(t *testing.T) (*OAuthService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	return NewOAuthService(db, testSecret, time.Hour, services.NewUserService(db)), db
}

func createTestClient(t *testing.T, db *gorm.DB, id, secret string, userID uint) *models.OAuthClient {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	client := &models.OAuthClient{
		ID:         id,
		Secret:     string(hashed),
		Domain:     "http://localhost:8080",
		Scopes:     "read,write",
		UserID:     userID,
		GrantTypes: "client_credentials,password",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func postToken(t *testing.T, svc *OAuthService, form url.Values) (*httptest.ResponseRecorder, map[string]interface{}) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", svc.HandleToken)

	req := httptest.NewRequest(http.MethodPost, "/oauth/token", bytes.NewBufferString(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestOAuthServerInitialization(t *testing.T) {
	svc, _ := newTestOAuthService(t)
	assert.NotNil(t, svc)
	assert.NotNil(t, svc.GetServer())
}

func TestClientCredentialsFlow(t *testing.T) {
	svc, db := newTestOAuthService(t)
	employee := testutil.CreateUser(t, db, "kitchen@example.com", models.RoleEmployee)
	createTestClient(t, db, "kitchen_client", "test_secret", employee.ID)

	w, body := postToken(t, svc, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"kitchen_client"},
		"client_secret": {"test_secret"},
		"scope":         {"read"},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Bearer", body["token_type"])

	identity, err := Authenticate(body["access_token"].(string), []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, employee.ID, identity.UserID)
	assert.Equal(t, models.RoleEmployee, identity.Role)
	assert.Equal(t, "kitchen_client", identity.ClientID)
	assert.Equal(t, "read", identity.Scope)

	var stored int64
	require.NoError(t, db.Model(&models.OAuthToken{}).Where("client_id = ?", "kitchen_client").Count(&stored).Error)
	assert.Equal(t, int64(1), stored)
}

func TestClientCredentialsInvalidSecret(t *testing.T) {
	svc, db := newTestOAuthService(t)
	user := testutil.CreateUser(t, db, "client@example.com", models.RoleClient)
	createTestClient(t, db, "app", "correct_secret", user.ID)

	w, body := postToken(t, svc, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"app"},
		"client_secret": {"wrong_secret"},
	})

	assert.GreaterOrEqual(t, w.Code, 400)
	assert.Contains(t, body, "error")
	assert.NotContains(t, body, "access_token")
}

func TestPasswordGrant(t *testing.T) {
	svc, db := newTestOAuthService(t)
	user := testutil.CreateUser(t, db, "client@example.com", models.RoleClient)
	createTestClient(t, db, "mobile", "mobile_secret", 0)

	w, body := postToken(t, svc, url.Values{
		"grant_type":    {"password"},
		"client_id":     {"mobile"},
		"client_secret": {"mobile_secret"},
		"username":      {"client@example.com"},
		"password":      {"password123"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, body["refresh_token"])

	identity, err := Authenticate(body["access_token"].(string), []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, models.RoleClient, identity.Role)

	w, body = postToken(t, svc, url.Values{
		"grant_type":    {"password"},
		"client_id":     {"mobile"},
		"client_secret": {"mobile_secret"},
		"username":      {"client@example.com"},
		"password":      {"not-the-password"},
	})
	assert.GreaterOrEqual(t, w.Code, 400)
	assert.NotContains(t, body, "access_token")
}

func TestRefreshTokenGrant(t *testing.T) {
	svc, db := newTestOAuthService(t)
	user := testutil.CreateUser(t, db, "client@example.com", models.RoleClient)
	createTestClient(t, db, "mobile", "mobile_secret", 0)
	createTestClient(t, db, "kiosk", "kiosk_secret", 0)

	w, issued := postToken(t, svc, url.Values{
		"grant_type":    {"password"},
		"client_id":     {"mobile"},
		"client_secret": {"mobile_secret"},
		"username":      {"client@example.com"},
		"password":      {"password123"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refresh := issued["refresh_token"].(string)

	refreshWith := func(clientID, secret, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
		return postToken(t, svc, url.Values{
			"grant_type":    {"refresh_token"},
			"client_id":     {clientID},
			"client_secret": {secret},
			"refresh_token": {token},
		})
	}

	w, body := refreshWith("mobile", "wrong_secret", refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_client", body["error"])

	w, body = refreshWith("kiosk", "kiosk_secret", refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_grant", body["error"])

	// the role claim follows the stored user
	require.NoError(t, db.Model(user).Update("role", models.RoleEmployee).Error)

	w, body = refreshWith("mobile", "mobile_secret", refresh)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEqual(t, issued["access_token"], body["access_token"])
	rotated, ok := body["refresh_token"].(string)
	require.True(t, ok)
	assert.NotEqual(t, refresh, rotated)

	identity, err := Authenticate(body["access_token"].(string), []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, models.RoleEmployee, identity.Role)
	assert.Equal(t, "mobile", identity.ClientID)

	var stored int64
	require.NoError(t, db.Model(&models.OAuthToken{}).Where("client_id = ?", "mobile").Count(&stored).Error)
	assert.Equal(t, int64(1), stored)

	w, body = refreshWith("mobile", "mobile_secret", refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_grant", body["error"])

	w, body = refreshWith("mobile", "mobile_secret", "not-a-refresh-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_grant", body["error"])

	require.NoError(t, db.Model(&models.OAuthToken{}).
		Where("refresh_token = ?", rotated).
		Update("refresh_expires_at", time.Now().Add(-time.Minute)).Error)
	w, body = refreshWith("mobile", "mobile_secret", rotated)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_grant", body["error"])
}

func TestUnsupportedGrantType(t *testing.T) {
	svc, db := newTestOAuthService(t)
	user := testutil.CreateUser(t, db, "client@example.com", models.RoleClient)
	createTestClient(t, db, "app", "secret", user.ID)

	w, body := postToken(t, svc, url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {"app"},
		"client_secret": {"secret"},
		"code":          {"abc"},
	})
	assert.GreaterOrEqual(t, w.Code, 400)
	assert.NotContains(t, body, "access_token")
}

func TestJWTGenerator_ClientWithoutUser(t *testing.T) {
	svc, db := newTestOAuthService(t)
	createTestClient(t, db, "orphan", "secret", 0)

	_, err := svc.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "orphan",
		ClientSecret: "secret",
	})
	assert.Error(t, err)
}

func TestGormStores(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "client@example.com", models.RoleClient)
	createTestClient(t, db, "integration_client", "integration_secret", user.ID)

	client, err := NewGormClientStore(db).GetByID(ctx, "integration_client")
	require.NoError(t, err)
	assert.Equal(t, "integration_client", client.GetID())
	verifier, ok := client.(oauth2.ClientPasswordVerifier)
	require.True(t, ok)
	assert.True(t, verifier.VerifyPassword("integration_secret"))
	assert.False(t, verifier.VerifyPassword("nope"))

	_, err = NewGormClientStore(db).GetByID(ctx, "missing")
	assert.Error(t, err)

	store := NewGormTokenStore(db)
	svc := NewOAuthService(db, testSecret, time.Hour, services.NewUserService(db))
	info, err := svc.GetServer().Manager.GenerateAccessToken(ctx, oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "integration_client",
		ClientSecret: "integration_secret",
	})
	require.NoError(t, err)

	loaded, err := store.GetByAccess(ctx, info.GetAccess())
	require.NoError(t, err)
	assert.Equal(t, "integration_client", loaded.GetClientID())

	_, err = store.GetByCode(ctx, "anything")
	assert.ErrorIs(t, err, ErrCodeGrantUnsupported)

	_, err = store.GetByRefresh(ctx, "unknown")
	assert.ErrorIs(t, err, oautherrors.ErrInvalidRefreshToken)

	require.NoError(t, store.RemoveByAccess(ctx, info.GetAccess()))
	_, err = store.GetByAccess(ctx, info.GetAccess())
	assert.Error(t, err)
}
