package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/PizzaFlow/backend/docs"
	"github.com/PizzaFlow/backend/internal/auth"
	"github.com/PizzaFlow/backend/internal/config"
	"github.com/PizzaFlow/backend/internal/controllers"
	"github.com/PizzaFlow/backend/internal/database"
	"github.com/PizzaFlow/backend/internal/delivery"
	"github.com/PizzaFlow/backend/internal/notify"
	"github.com/PizzaFlow/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// notifySendTimeout bounds a single broker publish.
const notifySendTimeout = 5 * time.Second

// @title PizzaFlow API
// @version 1.0
// @description Pizza ordering backend: catalog, orders, delivery slots, addresses and favorites
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	loadDotenvFile()
	setUpLogger()

	configuration := loadConfig()
	applyLogLevel(configuration)
	business := loadBusinessConfig(configuration)

	db := setupDatabase(configuration)

	dispatcher, closeBroker := setupNotifications(configuration)
	scheduler := setupScheduler(business, db)

	users := services.NewUserService(db)
	orders := services.NewOrderService(db, scheduler, dispatcher)
	oauth := auth.NewOAuthService(db, configuration.JWTSecret, configuration.JWTTTL, users)

	if configuration.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", configuration.Host, configuration.Port)

	router := controllers.NewRouter(controllers.Router{
		JWTSecret:  []byte(configuration.JWTSecret),
		Logger:     log.WithField("component", "http"),
		Auth:       controllers.NewAuthController(users, configuration.JWTSecret, configuration.JWTTTL),
		Token:      oauth.HandleToken,
		Catalog:    controllers.NewCatalogController(services.NewCatalogService(db)),
		Orders:     controllers.NewOrderController(orders, scheduler),
		Addresses:  controllers.NewAddressController(services.NewAddressService(db)),
		Favorites:  controllers.NewFavoriteController(services.NewFavoriteService(db)),
		Clients:    controllers.NewClientController(services.NewClientService(db)),
		EnableDocs: configuration.AppEnv != "production",
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server error")
		}
	}()

	<-quit
	log.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), configuration.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.WithError(err).Warn("Notification queue was not drained")
	}
	closeBroker()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("Server stopped gracefully")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// applyLogLevel overrides the APP_ENV default when LOG_LEVEL is set.
func applyLogLevel(conf *config.Config) {
	if conf.LogLevel == "" {
		return
	}
	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		log.WithField("log_level", conf.LogLevel).Warn("Unknown LOG_LEVEL, keeping default")
		return
	}
	log.SetLevel(level)
}

func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

func loadBusinessConfig(conf *config.Config) *config.BusinessConfig {
	business, err := config.LoadBusinessConfig(conf.BusinessConfig)
	checkPanicErr(err)
	return business
}

// setupDatabase connects, migrates and seeds the catalog when it is empty
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(conf.Database)
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	checkPanicErr(database.Seed(db))
	return db
}

// setupNotifications picks the RabbitMQ sink when a broker is configured and
// the log sink otherwise. The returned func closes the broker connection.
func setupNotifications(conf *config.Config) (*notify.Dispatcher, func()) {
	if !conf.NotificationsEnabled() {
		log.Info("AMQP_HOST not set, notifications go to the log")
		return notify.NewDispatcher(notify.LogSink{}, conf.NotifyQueueSize, notifySendTimeout), func() {}
	}

	client, err := notify.DialRabbit(notify.RabbitConfig{
		Host:     conf.AMQPHost,
		Port:     conf.AMQPPort,
		User:     conf.AMQPUser,
		Password: conf.AMQPPassword,
	})
	checkPanicErr(err)
	checkPanicErr(client.DeclareFanout(conf.AMQPExchange))
	log.WithField("exchange", conf.AMQPExchange).Info("Notifications publish to RabbitMQ")

	sink := notify.AMQPSink{Publisher: client, Exchange: conf.AMQPExchange, Source: "pizzaflow-backend"}
	return notify.NewDispatcher(sink, conf.NotifyQueueSize, notifySendTimeout), client.Close
}

func setupScheduler(business *config.BusinessConfig, db *gorm.DB) *delivery.Scheduler {
	policy, err := business.DeliveryPolicy()
	checkPanicErr(err)
	location, err := business.Location()
	checkPanicErr(err)
	return delivery.NewScheduler(policy, delivery.SystemClock{Location: location}, services.ActiveOrderCounter{DB: db})
}
