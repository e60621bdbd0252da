package auth

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/PizzaFlow/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.WithField("component", "auth")

// refreshTokenTTL bounds password-grant refresh tokens. Each refresh rotates
// the token and restarts the window.
const refreshTokenTTL = 7 * 24 * time.Hour

// PasswordAuthenticator checks resource-owner credentials for the password grant.
type PasswordAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

type OAuthService struct {
	server *server.Server
}

// NewOAuthService builds the token endpoint. Clients and issued tokens live in
// the database; access tokens are HS512 JWTs accepted by Authenticate.
func NewOAuthService(db *gorm.DB, jwtSecret string, accessTTL time.Duration, users PasswordAuthenticator) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetPasswordTokenCfg(&manage.Config{
		AccessTokenExp:    accessTTL,
		RefreshTokenExp:   refreshTokenTTL,
		IsGenerateRefresh: true,
	})
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: accessTTL})
	manager.SetRefreshTokenCfg(&manage.RefreshingConfig{
		AccessTokenExp:     accessTTL,
		RefreshTokenExp:    refreshTokenTTL,
		IsGenerateRefresh:  true,
		IsResetRefreshTime: true,
		IsRemoveAccess:     true,
		IsRemoveRefreshing: true,
	})

	clients := NewGormClientStore(db)
	tokens := NewGormTokenStore(db)
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS512, db))
	manager.MustTokenStorage(tokens, nil)
	manager.MapClientStorage(clients)

	srv := server.NewDefaultServer(manager)
	srv.SetAllowGetAccessRequest(false)
	srv.SetClientInfoHandler(refreshingClientHandler(clients, tokens))
	srv.SetAllowedGrantType(oauth2.PasswordCredentials, oauth2.ClientCredentials, oauth2.Refreshing)
	srv.SetPasswordAuthorizationHandler(passwordHandler(users))
	srv.SetInternalErrorHandler(func(err error) *errors.Response {
		log.WithError(err).Error("OAuth2 internal error")
		return nil
	})

	return &OAuthService{server: srv}
}

func passwordHandler(users PasswordAuthenticator) server.PasswordAuthorizationHandler {
	return func(ctx context.Context, clientID, username, password string) (string, error) {
		user, err := users.Authenticate(ctx, username, password)
		if err != nil {
			log.WithField("client_id", clientID).Debug("Password grant rejected")
			return "", errors.ErrInvalidGrant
		}
		return strconv.FormatUint(uint64(user.ID), 10), nil
	}
}

// refreshingClientHandler reads client credentials from the form. The manager
// does not authenticate the client on refresh_token requests, so for that grant
// the secret is verified here and the refresh token must belong to the client.
func refreshingClientHandler(clients oauth2.ClientStore, tokens oauth2.TokenStore) server.ClientInfoHandler {
	return func(r *http.Request) (string, string, error) {
		clientID, clientSecret, err := server.ClientFormHandler(r)
		if err != nil || oauth2.GrantType(r.FormValue("grant_type")) != oauth2.Refreshing {
			return clientID, clientSecret, err
		}

		ctx := r.Context()
		client, err := clients.GetByID(ctx, clientID)
		if err != nil {
			return "", "", errors.ErrInvalidClient
		}
		verifier, ok := client.(oauth2.ClientPasswordVerifier)
		if !ok || !verifier.VerifyPassword(clientSecret) {
			return "", "", errors.ErrInvalidClient
		}

		if info, err := tokens.GetByRefresh(ctx, r.FormValue("refresh_token")); err == nil && info.GetClientID() != clientID {
			log.WithField("client_id", clientID).Warn("Refresh token presented by another client")
			return "", "", errors.ErrInvalidGrant
		}
		return clientID, clientSecret, nil
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// HandleToken issues access tokens
// @Summary Token Endpoint
// @Description Obtain an access token with the password, client_credentials or refresh_token grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: password, client_credentials or refresh_token"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param username formData string false "User email (password grant)"
// @Param password formData string false "User password (password grant)"
// @Param refresh_token formData string false "Refresh token (refresh_token grant)"
// @Param scope formData string false "Requested scope"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	// the server writes OAuth2 error bodies itself; a returned error means the
	// response could not be written
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		log.WithError(err).Error("Token response failed")
	}
}
