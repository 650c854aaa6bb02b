package contentValidator

import (
	"strconv"
	"strings"

	contentController "kalvi/controllers/content"
	"kalvi/middleware"
	"kalvi/models"

	"github.com/gofiber/fiber/v2"
)

func validTitle(title string, errors map[string]string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		errors["title"] = "Title is required!"
	} else if len([]rune(title)) > 300 {
		errors["title"] = "Title must not exceed 300 characters!"
	}
	return title
}

func validType(resourceType string, errors map[string]string) string {
	resourceType = strings.TrimSpace(resourceType)
	if resourceType == "" {
		errors["type"] = "Resource type is required!"
	} else if !models.IsValidResourceType(resourceType) {
		errors["type"] = "Unknown resource type!"
	}
	return resourceType
}

// CreateContent validates the direct JSON create body.
func CreateContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(contentController.ContentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = validTitle(reqData.Title, errors)
		reqData.Type = validType(reqData.Type, errors)
		if reqData.LessonID == 0 {
			errors["lesson_id"] = "Lesson id is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContent", reqData)
		return c.Next()
	}
}

// Upload validates the multipart upload fields. lessonId must be a
// syntactically valid identifier; an id that fails to resolve later is
// handled by the resolver's fallback, not here.
func Upload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &contentController.UploadRequest{
			LessonID:     strings.TrimSpace(c.FormValue("lessonId")),
			Type:         strings.TrimSpace(c.FormValue("type")),
			Title:        strings.TrimSpace(c.FormValue("title")),
			ExamCategory: strings.TrimSpace(c.FormValue("examCategory")),
		}
		if pages := c.FormValue("pages"); pages != "" {
			reqData.Pages, _ = strconv.Atoi(pages)
		}
		if duration := c.FormValue("duration"); duration != "" {
			reqData.Duration, _ = strconv.ParseFloat(duration, 64)
		}

		errors := make(map[string]string)

		reqData.Title = validTitle(reqData.Title, errors)
		reqData.Type = validType(reqData.Type, errors)

		if reqData.LessonID == "" {
			errors["lessonId"] = "Lesson id is required!"
		} else if _, err := strconv.ParseUint(reqData.LessonID, 10, 32); err != nil {
			errors["lessonId"] = "Lesson id must be a positive number!"
		}

		if reqData.Type == models.TypeQuestionPaper && reqData.ExamCategory == "" {
			errors["examCategory"] = "Exam category is required for question papers!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUpload", reqData)
		return c.Next()
	}
}

// URLContent validates the external-link content body.
func URLContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(contentController.URLContentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = validTitle(reqData.Title, errors)
		reqData.Type = validType(reqData.Type, errors)
		if reqData.LessonID == 0 {
			errors["lesson_id"] = "Lesson id is required!"
		}

		reqData.URL = strings.TrimSpace(reqData.URL)
		if reqData.URL == "" {
			errors["url"] = "URL is required!"
		} else if !strings.HasPrefix(reqData.URL, "http://") && !strings.HasPrefix(reqData.URL, "https://") {
			errors["url"] = "URL must be absolute (http/https)!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedURLContent", reqData)
		return c.Next()
	}
}

// Signature validates the signed-upload preparation body.
func Signature() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(contentController.SignatureRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = validTitle(reqData.Title, errors)
		reqData.Type = validType(reqData.Type, errors)

		reqData.LessonID = strings.TrimSpace(reqData.LessonID)
		if reqData.LessonID == "" {
			errors["lessonId"] = "Lesson id is required!"
		}

		reqData.Filename = strings.TrimSpace(reqData.Filename)
		if reqData.Filename == "" {
			errors["filename"] = "Filename is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSignature", reqData)
		return c.Next()
	}
}

// StorageSave validates the post-upload save body.
func StorageSave() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(contentController.StorageSaveRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = validTitle(reqData.Title, errors)
		reqData.Type = validType(reqData.Type, errors)
		if reqData.LessonID == 0 {
			errors["lesson_id"] = "Lesson id is required!"
		}

		reqData.PublicID = strings.TrimSpace(reqData.PublicID)
		if reqData.PublicID == "" {
			errors["public_id"] = "Storage public id is required!"
		}
		if strings.TrimSpace(reqData.URL) == "" {
			errors["url"] = "Storage URL is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedStorageSave", reqData)
		return c.Next()
	}
}

// BulkDelete validates the bulk delete body.
func BulkDelete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(contentController.BulkDeleteRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if len(reqData.IDs) == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one id is required!", nil)
		}

		c.Locals("validatedBulkDelete", reqData)
		return c.Next()
	}
}

// StorageCleanup validates the manual storage cleanup body.
func StorageCleanup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(contentController.StorageCleanupRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		c.Locals("validatedStorageCleanup", reqData)
		return c.Next()
	}
}
