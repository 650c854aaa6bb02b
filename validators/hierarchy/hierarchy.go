package hierarchyValidator

import (
	"regexp"
	"strconv"
	"strings"

	hierarchyController "kalvi/controllers/hierarchy"
	"kalvi/middleware"

	"github.com/gofiber/fiber/v2"
)

// NodeBody validates the create/update body shared by all five levels.
func NodeBody(requireName bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(hierarchyController.NodeRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Name = strings.TrimSpace(reqData.Name)

		if requireName && reqData.Name == "" {
			errors["name"] = "Name is required!"
		}
		if reqData.Name != "" {
			if len([]rune(reqData.Name)) > 200 {
				errors["name"] = "Name must not exceed 200 characters!"
			}
			if matched, _ := regexp.MatchString(`[<>{}]`, reqData.Name); matched {
				errors["name"] = "Name contains invalid characters (e.g., <, >, {, })!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedNode", reqData)
		return c.Next()
	}
}

// NodeID validates the :id path param.
func NodeID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Record ID is required in the URL!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Record ID must be a positive number!", nil)
		}

		c.Locals("nodeID", id)
		return c.Next()
	}
}

// BulkIDs validates the bulk publish/unpublish body.
func BulkIDs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(hierarchyController.BulkIDsRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if len(reqData.IDs) == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one id is required!", nil)
		}

		c.Locals("validatedBulkIDs", reqData)
		return c.Next()
	}
}

// LessonID validates the :lessonId path param for hierarchy resolution.
// Any non-empty value is accepted; the resolver handles garbage ids with
// its fallback chain instead of rejecting them here.
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(c.Params("lessonId")) == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson ID is required in the URL!", nil)
		}
		return c.Next()
	}
}
