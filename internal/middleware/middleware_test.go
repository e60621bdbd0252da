package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PizzaFlow/backend/internal/auth"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-test-secret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	protected := router.Group("/protected", OAuth2Auth(testSecret))
	protected.GET("/me", func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint(UserIDKey),
			"role":    identity.Role,
		})
	})
	employee := protected.Group("/employee", RequireRole(models.RoleEmployee))
	employee.GET("/orders", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func bearer(t *testing.T, userID uint, role models.Role) string {
	token, _, err := auth.IssueToken(testSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOAuth2Auth(t *testing.T) {
	router := newRouter()

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantError     string
	}{
		{"missing header", "", http.StatusUnauthorized, "authorization_required"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "invalid_request"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "invalid_token"},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, "invalid_token"},
		{"valid token", bearer(t, 5, models.RoleClient), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, "/protected/me", tt.authorization)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, float64(5), body["user_id"])
			assert.Equal(t, "CLIENT", body["role"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	router := newRouter()

	w := serve(router, "/protected/employee/orders", bearer(t, 1, models.RoleEmployee))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(router, "/protected/employee/orders", bearer(t, 2, models.RoleClient))
	assert.Equal(t, http.StatusForbidden, w.Code)
	var apiErr models.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, models.ErrForbidden, apiErr.Code)
	assert.Equal(t, "EMPLOYEE", apiErr.Details["required_role"])

	w = serve(router, "/protected/employee/orders", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleWithoutAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/employee", RequireRole(models.RoleEmployee), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, "/employee", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	router.Use(RequestID(), RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, "/ping", "")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, generated, entry["request_id"])
	assert.Equal(t, "/ping", entry["path"])
	assert.Equal(t, float64(200), entry["status"])

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}
