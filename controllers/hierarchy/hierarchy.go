package hierarchyController

import (
	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"
	"kalvi/utils"

	"github.com/gofiber/fiber/v2"
)

// LevelSpec describes one level of the curriculum chain so a single set of
// CRUD handlers serves all five collections.
type LevelSpec struct {
	Collection   string // route segment, e.g. "classes"
	ParentColumn string // FK column on this level, "" for the root
	ParentParam  string // query/body key carrying the parent id
	Model        func() interface{}
	Slice        func() interface{}
}

// Levels registers the chain root-to-leaf.
var Levels = []LevelSpec{
	{
		Collection: "classes",
		Model:      func() interface{} { return &models.Class{} },
		Slice:      func() interface{} { return &[]models.Class{} },
	},
	{
		Collection:   "subjects",
		ParentColumn: "class_id",
		ParentParam:  "class_id",
		Model:        func() interface{} { return &models.Subject{} },
		Slice:        func() interface{} { return &[]models.Subject{} },
	},
	{
		Collection:   "units",
		ParentColumn: "subject_id",
		ParentParam:  "subject_id",
		Model:        func() interface{} { return &models.Unit{} },
		Slice:        func() interface{} { return &[]models.Unit{} },
	},
	{
		Collection:   "subunits",
		ParentColumn: "unit_id",
		ParentParam:  "unit_id",
		Model:        func() interface{} { return &models.SubUnit{} },
		Slice:        func() interface{} { return &[]models.SubUnit{} },
	},
	{
		Collection:   "lessons",
		ParentColumn: "sub_unit_id",
		ParentParam:  "sub_unit_id",
		Model:        func() interface{} { return &models.Lesson{} },
		Slice:        func() interface{} { return &[]models.Lesson{} },
	},
}

// LevelByCollection finds the level descriptor for a route segment.
func LevelByCollection(name string) *LevelSpec {
	for i := range Levels {
		if Levels[i].Collection == name {
			return &Levels[i]
		}
	}
	return nil
}

// List returns the level's records, optionally filtered by parent id and
// the onlyPublished flag.
func List(spec LevelSpec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		db := database.Database.Db.Model(spec.Model()).Where("is_deleted = ?", false)

		if spec.ParentColumn != "" {
			if parent := c.QueryInt(spec.ParentParam, 0); parent > 0 {
				db = db.Where(spec.ParentColumn+" = ?", parent)
			}
		}
		if c.Query("onlyPublished") == "true" {
			db = db.Where("is_published = ?", true)
		}

		rows := spec.Slice()
		if err := db.Order("id asc").Find(rows).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch records!", nil)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Records fetched successfully!", rows)
	}
}

// Create inserts a new node under the validated parent.
func Create(spec LevelSpec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, ok := c.Locals("validatedNode").(*NodeRequest)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		fields := map[string]interface{}{
			"name":         reqData.Name,
			"is_published": reqData.IsPublished != nil && *reqData.IsPublished,
		}
		if spec.ParentColumn != "" {
			if reqData.ParentID == 0 {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Parent id is required!", nil)
			}
			fields[spec.ParentColumn] = reqData.ParentID
		}

		result := database.Database.Db.Model(spec.Model()).Create(fields)
		if result.Error != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create record!", nil)
		}

		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Record created successfully!", fields)
	}
}

// Update renames or re-parents a node.
func Update(spec LevelSpec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nodeID := c.Locals("nodeID").(int)
		reqData, ok := c.Locals("validatedNode").(*NodeRequest)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		db := database.Database.Db
		row := spec.Model()
		if err := db.Where("id = ? AND is_deleted = ?", nodeID, false).First(row).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Record not found!", nil)
		}

		fields := map[string]interface{}{}
		if reqData.Name != "" {
			fields["name"] = reqData.Name
		}
		if spec.ParentColumn != "" && reqData.ParentID > 0 {
			fields[spec.ParentColumn] = reqData.ParentID
		}
		// Only touch the publication flag when the body actually carried it;
		// a rename must not silently unpublish.
		if reqData.IsPublished != nil {
			fields["is_published"] = *reqData.IsPublished
		}
		if len(fields) == 0 {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Record updated successfully!", fields)
		}

		if err := db.Model(spec.Model()).Where("id = ?", nodeID).Updates(fields).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update record!", nil)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Record updated successfully!", fields)
	}
}

// Delete soft deletes a node. Children are intentionally left in place;
// the resolver degrades gracefully when it meets a broken chain.
func Delete(spec LevelSpec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nodeID := c.Locals("nodeID").(int)

		db := database.Database.Db
		row := spec.Model()
		if err := db.Where("id = ? AND is_deleted = ?", nodeID, false).First(row).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Record not found!", nil)
		}

		if err := db.Model(spec.Model()).Where("id = ?", nodeID).Update("is_deleted", true).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete record!", nil)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Record deleted successfully!", nil)
	}
}

// BulkPublish flips the publication flag for a set of node ids.
func BulkPublish(spec LevelSpec, publish bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, ok := c.Locals("validatedBulkIDs").(*BulkIDsRequest)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		result := database.Database.Db.Model(spec.Model()).
			Where("id IN ? AND is_deleted = ?", reqData.IDs, false).
			Update("is_published", publish)
		if result.Error != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update publication state!", nil)
		}

		message := "Records unpublished successfully!"
		if publish {
			message = "Records published successfully!"
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
			"updated": result.RowsAffected,
		})
	}
}

// NodeRequest is the validated create/update body for any level.
type NodeRequest struct {
	Name     string `json:"name"`
	ParentID uint   `json:"parent_id"`
	// Pointer so an absent flag is distinguishable from an explicit false.
	IsPublished *bool `json:"is_published"`
}

// BulkIDsRequest is the validated body for bulk publish endpoints.
type BulkIDsRequest struct {
	IDs []uint `json:"ids"`
}

// GetHierarchy resolves a lesson id into its full named chain, with the
// lesson's download counters and publication flag when the lesson exists.
// Resolution never fails; a dangling id still yields a usable chain.
func GetHierarchy(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")

	db := database.Database.Db
	resolved := utils.ResolveHierarchy(db, lessonID, "")

	counts := models.DownloadCounts{}
	isPublished := false
	if resolved.LessonID > 0 {
		var lesson models.Lesson
		if err := db.Where("id = ?", resolved.LessonID).First(&lesson).Error; err == nil {
			counts = lesson.DownloadCounts
			isPublished = lesson.IsPublished
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Hierarchy resolved successfully!", fiber.Map{
		"class_name":      resolved.ClassName,
		"subject_name":    resolved.SubjectName,
		"unit_name":       resolved.UnitName,
		"sub_unit_name":   resolved.SubUnitName,
		"lesson_name":     resolved.LessonName,
		"complete":        resolved.Complete,
		"download_counts": counts,
		"is_published":    isPublished,
	})
}
