package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"scribe/internal/handlers"
	"scribe/internal/middleware"
	"scribe/internal/models"
	"scribe/internal/repositories"
	"scribe/internal/services"
	"scribe/pkg/password"
	"scribe/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "") // postgres DSN; empty means sqlite
	viper.SetDefault("SQLITE_PATH", "scribe.db")
	viper.SetDefault("SESSION_EXPIRATION", 24*time.Hour)
	viper.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	// TranslateError maps driver-specific unique violations onto
	// gorm.ErrDuplicatedKey, which the repositories turn into their own
	// duplicate-key kind.
	gormConfig := &gorm.Config{TranslateError: true}
	var db *gorm.DB
	var err error
	if dsn := viper.GetString("DATABASE_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	} else {
		db, err = gorm.Open(sqlite.Open(viper.GetString("SQLITE_PATH")), gormConfig)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set; post events disabled")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	// --- Services ---
	hasher := password.NewHasher(viper.GetInt("BCRYPT_COST"))
	userService := services.NewUserService(userRepo, hasher)
	authService := services.NewAuthService(userRepo, hasher)
	var publisher services.PostEventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	postService := services.NewPostService(postRepo, publisher)

	// --- Session store ---
	// The cookie is the opaque session token; all session state lives
	// server-side in the store.
	sessionStore := session.New(session.Config{
		KeyLookup:      "cookie:session_id",
		Expiration:     viper.GetDuration("SESSION_EXPIRATION"),
		CookieHTTPOnly: true,
	})
	authRequired := middleware.AuthRequired(sessionStore)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService)
	postHandler := handlers.NewPostHandler(postService)
	authHandler := handlers.NewAuthHandler(authService, userService, sessionStore)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(recover.New()) // unrecognized panics become plain 500s
	app.Use(logger.New())

	userHandler.RegisterRoutes(app, authRequired)
	postHandler.RegisterRoutes(app, authRequired)
	authHandler.RegisterRoutes(app, authRequired)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Post events consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for post events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received post event (tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumePostEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
