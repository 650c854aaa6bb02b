package downloadValidator

import (
	"regexp"
	"strings"

	downloadController "kalvi/controllers/download"
	"kalvi/middleware"

	"github.com/gofiber/fiber/v2"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Download validates a content download body. The email is optional here:
// whether it is mandatory depends on the requester's role, which the
// controller decides.
func Download() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(downloadController.DownloadRequest)

		// An empty body is fine; a malformed one is not.
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		if reqData.Email != "" && !emailRegex.MatchString(reqData.Email) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"email": "Email is not valid!",
			})
		}

		c.Locals("validatedDownload", reqData)
		return c.Next()
	}
}

// Export validates the PDF export form fields.
func Export() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &downloadController.ExportRequest{
			Email:    strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
			Title:    strings.TrimSpace(c.FormValue("title")),
			LessonID: strings.TrimSpace(c.FormValue("lessonId")),
		}

		errors := make(map[string]string)

		if reqData.Email == "" {
			errors["email"] = "Email is required!"
		} else if !emailRegex.MatchString(reqData.Email) {
			errors["email"] = "Email is not valid!"
		}

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedExport", reqData)
		return c.Next()
	}
}
