package middleware

import (
	"kalvi/database"
	"kalvi/models"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin ensures the authenticated user still exists and carries an
// admin-grade role. Runs after JWTMiddleware.
func RequireAdmin(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "Unauthorized: User ID not found",
			"data":    nil,
		})
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  false,
			"message": "User not found!",
			"data":    nil,
		})
	}

	if !user.IsPrivileged() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  false,
			"message": "You do not have permission to access this resource!",
			"data":    nil,
		})
	}

	c.Locals("user", &user)
	return c.Next()
}
