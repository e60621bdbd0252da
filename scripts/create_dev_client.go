// Command create_dev_client provisions a user (employees cannot self-register)
// and a development OAuth client bound to it.
//
//	go run ./scripts -role EMPLOYEE -email chef@pizza.com -password chef-pass
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/PizzaFlow/backend/internal/apperrors"
	"github.com/PizzaFlow/backend/internal/config"
	"github.com/PizzaFlow/backend/internal/database"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/PizzaFlow/backend/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	role := flag.String("role", string(models.RoleEmployee), "User role (EMPLOYEE or CLIENT)")
	email := flag.String("email", "", "User email (default <role>@pizza.com)")
	password := flag.String("password", "dev-password-123", "User password")
	flag.Parse()

	_ = godotenv.Load()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	userRole := models.Role(strings.ToUpper(*role))
	if !userRole.Valid() {
		log.Fatalf("Unknown role %q", *role)
	}
	if *email == "" {
		*email = strings.ToLower(string(userRole)) + "@pizza.com"
	}

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	db, err := database.InitDatabase(conf.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	ctx := context.Background()
	user := getOrCreateUser(ctx, services.NewUserService(db), userRole, *email, *password)

	clientID := "dev-" + strings.ToLower(string(userRole)) + "-client"
	clientSecret := "dev-secret-" + strings.ToLower(string(userRole))
	if err := createClient(db, clientID, clientSecret, user); err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("User: %s (ID: %d, Role: %s, Password: %s)\n", user.Email, user.ID, user.Role, *password)
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://%s:%d/oauth/token \\\n", conf.Host, conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}

// getOrCreateUser returns the account for email, registering it with role when missing
func getOrCreateUser(ctx context.Context, users services.UserService, role models.Role, email, password string) *models.User {
	user, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		log.WithFields(log.Fields{"email": user.Email, "id": user.ID, "role": user.Role}).Info("Found existing user")
		if user.Role != role {
			log.Warnf("Existing user has role %s, not %s", user.Role, role)
		}
		return user
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		log.WithError(err).Fatal("Failed to look up user")
	}

	user, err = users.Register(ctx, services.RegisterInput{
		Username: strings.Split(email, "@")[0],
		Email:    email,
		Password: password,
	}, role)
	if err != nil {
		log.WithError(err).Fatal("Failed to create user")
	}
	log.WithFields(log.Fields{"email": user.Email, "id": user.ID, "role": user.Role}).Info("Created new user")
	return user
}

// createClient stores a client with a fixed, documented secret; it is a no-op
// when the client already exists
func createClient(db *gorm.DB, id, secret string, owner *models.User) error {
	var existing models.OAuthClient
	if err := db.Where("id = ?", id).First(&existing).Error; err == nil {
		log.WithField("client_id", id).Info("Development client already exists")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}
	client := models.OAuthClient{
		ID:         id,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s client", owner.Role),
		Domain:     "http://localhost",
		UserID:     owner.ID,
		Scopes:     "read write",
		GrantTypes: "client_credentials,password",
	}
	return db.Create(&client).Error
}
