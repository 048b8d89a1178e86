package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"katalog/internal/handlers"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.SetDefault("STORAGE_DRIVER", "memory")
	viper.SetDefault("DATABASE_DSN", "katalog.db")
	viper.SetDefault("SEED_PRODUCTS", true)
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Initialize RabbitMQ client (optional) ---
	var mqClient *rabbitmq.Client
	var publisher services.EventPublisher
	if rabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer client.Close()
		mqClient = client
		publisher = client
	} else {
		log.Println("RABBITMQ_URL not set; product events will not be published.")
	}

	// --- Initialize repository ---
	productRepo, err := buildRepository()
	if err != nil {
		log.Fatalf("Failed to initialize product repository: %v", err)
	}

	// Seed demo data. The seed is a fixture, not a contract: disable it with
	// SEED_PRODUCTS=false for an empty catalog.
	if viper.GetBool("SEED_PRODUCTS") {
		if err := repositories.SeedSampleProducts(productRepo); err != nil {
			log.Printf("Error seeding products: %v", err)
		}
	}

	// --- Initialize service and handler ---
	productService := services.NewProductService(productRepo, publisher)
	productHandler := handlers.NewProductHandler(productService)

	// --- Initialize Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)

	// --- Health check endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	// --- Start product event consumer when a broker is configured ---
	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for product events...")
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received product event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeProductEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP server with graceful shutdown ---
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

// buildRepository selects the product store backend from configuration.
// The default in-memory store keeps the API self-contained; sqlite and
// postgres swap in a GORM-backed store behind the same interface.
func buildRepository() (repositories.ProductRepository, error) {
	driver := viper.GetString("STORAGE_DRIVER")
	switch driver {
	case "memory":
		return repositories.NewMemoryProductRepository(), nil
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			return nil, fmt.Errorf("failed to migrate product schema: %w", err)
		}
		return repositories.NewGORMProductRepository(db), nil
	case "postgres":
		db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			return nil, fmt.Errorf("failed to migrate product schema: %w", err)
		}
		return repositories.NewGORMProductRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (expected memory, sqlite or postgres)", driver)
	}
}
