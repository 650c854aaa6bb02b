package authRoutes

import (
	authController "kalvi/controllers/auth"
	authValidator "kalvi/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes registers the login endpoints.
func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Post("/webmaster-login", authValidator.Login(), authController.WebmasterLogin)
}
