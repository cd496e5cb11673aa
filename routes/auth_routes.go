package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/shopkhata/shopkhata_backend/controllers"
	"github.com/shopkhata/shopkhata_backend/middleware"
	"github.com/shopkhata/shopkhata_backend/repositories"
)

// RegisterAuthRoutes sets up the authentication and session routes.
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController, revoker repositories.RevocationStore, resolver *repositories.Resolver) {
	// Public routes
	e.POST("/api/auth/admin/login", authController.AdminLogin)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/request-otp", authController.RequestOTP)
	e.POST("/api/auth/resend-otp", authController.ResendOTP)
	e.POST("/api/auth/verify-otp", authController.VerifyOTP)
	e.GET("/api/auth/validate-token", authController.ValidateToken)

	// Logout extracts and revokes the token itself so a session can be
	// ended even when the owning account no longer resolves.
	e.POST("/api/auth/logout", authController.Logout)

	// Routes requiring an authenticated principal
	authGroup := e.Group("/api/auth")
	authGroup.Use(middleware.Authenticate(revoker, resolver))
	authGroup.PUT("/profile", authController.CompleteProfile)
	authGroup.POST("/force-logout", authController.ForceLogout)

	// Admin-only routes
	adminGroup := e.Group("/api/admin")
	adminGroup.Use(middleware.Authenticate(revoker, resolver))
	adminGroup.Use(middleware.RequireRole("admin"))
	adminGroup.POST("/admins", authController.CreateAdmin)
}
