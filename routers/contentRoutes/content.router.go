package contentRoutes

import (
	contentController "kalvi/controllers/content"
	"kalvi/middleware"
	contentValidator "kalvi/validators/content"

	"github.com/gofiber/fiber/v2"
)

// SetupContentRoutes registers content CRUD, the upload pipeline and file
// serving.
func SetupContentRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Public viewer surface
	api.Get("/content", contentController.ListGrouped)
	api.Get("/content/check-duplicate", contentController.CheckDuplicate)
	api.Get("/content/:id/file", contentController.StreamContentFile)
	api.Get("/flashcards/:lessonId", contentController.GetFlashcards)
	api.Get("/qa/:lessonId", contentController.GetQA)
	api.Get("/qa/:lessonId/stats", contentController.GetQAStats)
	api.Get("/files/:filename", contentController.GetFile)

	// Admin surface
	api.Post("/content", middleware.JWTMiddleware, middleware.RequireAdmin, contentValidator.CreateContent(), contentController.CreateContent)
	api.Post("/content/url", middleware.JWTMiddleware, middleware.RequireAdmin, contentValidator.URLContent(), contentController.CreateURLContent)
	api.Post("/content/storage-save", middleware.JWTMiddleware, middleware.RequireAdmin, contentValidator.StorageSave(), contentController.StorageSave)
	api.Post("/content/bulk-delete", middleware.JWTMiddleware, middleware.RequireAdmin, contentValidator.BulkDelete(), contentController.BulkDelete)
	api.Delete("/content/:id", middleware.JWTMiddleware, middleware.RequireAdmin, contentController.DeleteContent)

	api.Post("/upload", middleware.JWTMiddleware, middleware.RequireAdmin, contentValidator.Upload(), contentController.UploadContent)
	api.Post("/upload/signature", middleware.JWTMiddleware, middleware.RequireAdmin, contentValidator.Signature(), contentController.UploadSignature)
	api.Post("/storage/cleanup", middleware.JWTMiddleware, middleware.RequireAdmin, contentValidator.StorageCleanup(), contentController.StorageCleanup)

	api.Delete("/files/:filename", middleware.JWTMiddleware, middleware.RequireAdmin, contentController.DeleteFile)
}
