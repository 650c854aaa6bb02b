package adminController

import (
	"encoding/json"

	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"

	"github.com/gofiber/fiber/v2"
)

// collectionSpec exposes a named collection for bulk administrative
// import/export/clear.
type collectionSpec struct {
	Model func() interface{}
	Slice func() interface{}
}

var collections = map[string]collectionSpec{
	"classes": {
		Model: func() interface{} { return &models.Class{} },
		Slice: func() interface{} { return &[]models.Class{} },
	},
	"subjects": {
		Model: func() interface{} { return &models.Subject{} },
		Slice: func() interface{} { return &[]models.Subject{} },
	},
	"units": {
		Model: func() interface{} { return &models.Unit{} },
		Slice: func() interface{} { return &[]models.Unit{} },
	},
	"subunits": {
		Model: func() interface{} { return &models.SubUnit{} },
		Slice: func() interface{} { return &[]models.SubUnit{} },
	},
	"lessons": {
		Model: func() interface{} { return &models.Lesson{} },
		Slice: func() interface{} { return &[]models.Lesson{} },
	},
	"contents": {
		Model: func() interface{} { return &models.Content{} },
		Slice: func() interface{} { return &[]models.Content{} },
	},
	"download_logs": {
		Model: func() interface{} { return &models.DownloadLog{} },
		Slice: func() interface{} { return &[]models.DownloadLog{} },
	},
}

// ExportCollection dumps a named collection as JSON.
func ExportCollection(c *fiber.Ctx) error {
	spec, ok := collections[c.Params("name")]
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown collection!", nil)
	}

	rows := spec.Slice()
	if err := database.Database.Db.Find(rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to export collection!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Collection exported successfully!", rows)
}

// ImportCollection bulk-inserts a JSON array of records into a named
// collection. Rows that collide with existing unique keys fail the whole
// import so a partial load never goes unnoticed.
func ImportCollection(c *fiber.Ctx) error {
	spec, ok := collections[c.Params("name")]
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown collection!", nil)
	}

	rows := spec.Slice()
	if err := json.Unmarshal(c.Body(), rows); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Body must be a JSON array of records!", nil)
	}

	result := database.Database.Db.Create(rows)
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to import collection: "+result.Error.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Collection imported successfully!", fiber.Map{
		"inserted": result.RowsAffected,
	})
}

// ClearCollection hard-deletes every row of a named collection. Clearing
// an empty collection is not an error; it reports existed=false.
func ClearCollection(c *fiber.Ctx) error {
	spec, ok := collections[c.Params("name")]
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown collection!", nil)
	}

	db := database.Database.Db

	var count int64
	if err := db.Model(spec.Model()).Count(&count).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to inspect collection!", nil)
	}

	if count == 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Collection was already empty.", fiber.Map{
			"existed": false,
			"deleted": 0,
		})
	}

	result := db.Unscoped().Where("1 = 1").Delete(spec.Model())
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to clear collection!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Collection cleared successfully!", fiber.Map{
		"existed": true,
		"deleted": result.RowsAffected,
	})
}
