package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/shopkhata/shopkhata_backend/config"
	"github.com/shopkhata/shopkhata_backend/controllers"
	"github.com/shopkhata/shopkhata_backend/middleware"
	"github.com/shopkhata/shopkhata_backend/repositories"
	"github.com/shopkhata/shopkhata_backend/routes"
	"github.com/shopkhata/shopkhata_backend/utils"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Account stores and resolver
	adminStore := repositories.NewMongoAdminStore(client)
	userStore := repositories.NewMongoUserStore(client)
	resolver := repositories.NewResolver(adminStore, userStore)

	// Revocation store: Redis when available, in-memory otherwise
	var revoker repositories.RevocationStore
	if redisClient != nil {
		revoker = repositories.NewRedisRevocationStore(redisClient)
	} else {
		memStore := repositories.NewMemoryRevocationStore()
		memStore.StartCleanup(context.Background())
		revoker = memStore
	}

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	authController := controllers.NewAuthController(adminStore, userStore, revoker, utils.NewSMSService(), redisClient)
	routes.RegisterAuthRoutes(e, authController, revoker, resolver)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
