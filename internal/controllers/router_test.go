package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/PizzaFlow/backend/internal/auth"
	"github.com/PizzaFlow/backend/internal/delivery"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/PizzaFlow/backend/internal/notify"
	"github.com/PizzaFlow/backend/internal/services"
	"github.com/PizzaFlow/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "controllers-test-secret"

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *recordingNotifier) Enqueue(msg notify.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return true
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	db       *gorm.DB
	notifier *recordingNotifier
}

// newTestAPI wires the real services over an in-memory database with the
// clock fixed at 12:10 Moscow time.
func newTestAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	notifier := &recordingNotifier{}

	msk := time.FixedZone("MSK", 3*60*60)
	scheduler := delivery.NewScheduler(delivery.DefaultPolicy(),
		fixedClock{now: time.Date(2025, time.June, 2, 12, 10, 0, 0, msk)},
		services.ActiveOrderCounter{DB: db})

	users := services.NewUserService(db)
	router := NewRouter(Router{
		JWTSecret: []byte(testSecret),
		Auth:      NewAuthController(users, testSecret, time.Hour),
		Token:     auth.NewOAuthService(db, testSecret, time.Hour, users).HandleToken,
		Catalog:   NewCatalogController(services.NewCatalogService(db)),
		Orders:    NewOrderController(services.NewOrderService(db, scheduler, notifier), scheduler),
		Addresses: NewAddressController(services.NewAddressService(db)),
		Favorites: NewFavoriteController(services.NewFavoriteService(db)),
		Clients:   NewClientController(services.NewClientService(db)),
	})

	return &testAPI{t: t, router: router, db: db, notifier: notifier}
}

func (a *testAPI) tokenFor(user *models.User) string {
	token, _, err := auth.IssueToken([]byte(testSecret), user.ID, user.Role, time.Hour)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
