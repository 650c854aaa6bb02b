package statsController

import (
	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"

	"github.com/gofiber/fiber/v2"
)

type levelCounts struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
}

func countLevel(model interface{}) levelCounts {
	db := database.Database.Db
	var counts levelCounts
	db.Model(model).Where("is_deleted = ?", false).Count(&counts.Total)
	db.Model(model).Where("is_deleted = ? AND is_published = ?", false, true).Count(&counts.Published)
	return counts
}

// DashboardStats returns the read-only dashboard aggregates: per-level
// totals, user counts per role, and content counts per type.
func DashboardStats(c *fiber.Ctx) error {
	db := database.Database.Db

	hierarchy := fiber.Map{
		"classes":  countLevel(&models.Class{}),
		"subjects": countLevel(&models.Subject{}),
		"units":    countLevel(&models.Unit{}),
		"subunits": countLevel(&models.SubUnit{}),
		"lessons":  countLevel(&models.Lesson{}),
	}

	type roleCount struct {
		Role  string `json:"role"`
		Count int64  `json:"count"`
	}
	var usersByRole []roleCount
	if err := db.Model(&models.User{}).
		Select("role, COUNT(*) as count").
		Where("is_deleted = ?", false).
		Group("role").
		Scan(&usersByRole).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to aggregate users!", nil)
	}

	type typeCount struct {
		Type  string `json:"type"`
		Count int64  `json:"count"`
	}
	var contentByType []typeCount
	if err := db.Model(&models.Content{}).
		Select("type, COUNT(*) as count").
		Where("is_deleted = ?", false).
		Group("type").
		Order("count desc").
		Scan(&contentByType).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to aggregate content!", nil)
	}

	var totalContent int64
	db.Model(&models.Content{}).Where("is_deleted = ?", false).Count(&totalContent)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", fiber.Map{
		"hierarchy":       hierarchy,
		"users_by_role":   usersByRole,
		"content_by_type": contentByType,
		"total_content":   totalContent,
	})
}
