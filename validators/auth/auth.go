package authValidator

import (
	"regexp"
	"strings"

	authController "kalvi/controllers/auth"
	"kalvi/middleware"

	"github.com/gofiber/fiber/v2"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Login validates the login body.
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(authController.LoginRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))

		if reqData.Email == "" {
			errors["email"] = "Email is required!"
		} else if !emailRegex.MatchString(reqData.Email) {
			errors["email"] = "Email is not valid!"
		}

		if reqData.Password == "" {
			errors["password"] = "Password is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}
