package downloadRoutes

import (
	downloadController "kalvi/controllers/download"
	downloadValidator "kalvi/validators/download"

	"github.com/gofiber/fiber/v2"
)

// SetupDownloadRoutes registers the download/export dispatch endpoints.
// They are deliberately open: unauthenticated visitors download via the
// email flow, and the controller decides privilege from the resolved user.
func SetupDownloadRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/content/:id/download", downloadValidator.Download(), downloadController.DownloadContent)
	api.Post("/export/send-pdf", downloadValidator.Export(), downloadController.SendPDFExport)
}
