package hierarchyRoutes

import (
	hierarchyController "kalvi/controllers/hierarchy"
	"kalvi/middleware"
	hierarchyValidator "kalvi/validators/hierarchy"

	"github.com/gofiber/fiber/v2"
)

// SetupHierarchyRoutes mounts the same CRUD surface for every level of the
// chain, plus bulk publish and the resolver endpoint.
func SetupHierarchyRoutes(app *fiber.App) {
	api := app.Group("/api")

	for _, spec := range hierarchyController.Levels {
		group := api.Group("/" + spec.Collection)

		group.Get("/", hierarchyController.List(spec))
		group.Post("/", middleware.JWTMiddleware, middleware.RequireAdmin, hierarchyValidator.NodeBody(true), hierarchyController.Create(spec))
		group.Put("/:id", middleware.JWTMiddleware, middleware.RequireAdmin, hierarchyValidator.NodeID(), hierarchyValidator.NodeBody(false), hierarchyController.Update(spec))
		group.Delete("/:id", middleware.JWTMiddleware, middleware.RequireAdmin, hierarchyValidator.NodeID(), hierarchyController.Delete(spec))

		group.Post("/publish", middleware.JWTMiddleware, middleware.RequireAdmin, hierarchyValidator.BulkIDs(), hierarchyController.BulkPublish(spec, true))
		group.Post("/unpublish", middleware.JWTMiddleware, middleware.RequireAdmin, hierarchyValidator.BulkIDs(), hierarchyController.BulkPublish(spec, false))
	}

	api.Get("/hierarchy/:lessonId", hierarchyValidator.LessonID(), hierarchyController.GetHierarchy)
}
