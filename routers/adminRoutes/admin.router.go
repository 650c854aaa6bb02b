package adminRoutes

import (
	adminController "kalvi/controllers/admin"
	statsController "kalvi/controllers/stats"
	"kalvi/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes registers audit views, collection maintenance and the
// dashboard aggregates.
func SetupAdminRoutes(app *fiber.App) {
	api := app.Group("/api")

	adminGroup := api.Group("/admin", middleware.JWTMiddleware, middleware.RequireAdmin)

	adminGroup.Get("/downloads", adminController.ListDownloadLogs)
	adminGroup.Get("/downloads/stats", adminController.DownloadLogStats)

	adminGroup.Get("/collections/:name/export", adminController.ExportCollection)
	adminGroup.Post("/collections/:name/import", adminController.ImportCollection)
	adminGroup.Post("/collections/:name/clear", adminController.ClearCollection)

	api.Get("/stats", statsController.DashboardStats)
}
