package adminController

import (
	"strings"

	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"

	"github.com/gofiber/fiber/v2"
)

// ListDownloadLogs pages through the download/export audit trail, newest
// first, filterable by status and requester email.
func ListDownloadLogs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 200 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.DownloadLog{})

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	if email := strings.TrimSpace(c.Query("email")); email != "" {
		db = db.Where("email = ?", email)
	}

	var total int64
	db.Count(&total)

	var logs []models.DownloadLog
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch download logs!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Download logs fetched successfully!", fiber.Map{
		"logs": logs,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DownloadLogStats summarizes the audit trail for the dashboard.
func DownloadLogStats(c *fiber.Ctx) error {
	db := database.Database.Db

	var total, success, failed, emailsSent int64
	db.Model(&models.DownloadLog{}).Count(&total)
	db.Model(&models.DownloadLog{}).Where("status = ?", models.DownloadSuccess).Count(&success)
	db.Model(&models.DownloadLog{}).Where("status = ?", models.DownloadFailed).Count(&failed)
	db.Model(&models.DownloadLog{}).Where("email_sent = ?", true).Count(&emailsSent)

	type typeCount struct {
		ContentType string `json:"content_type"`
		Count       int64  `json:"count"`
	}
	var byType []typeCount
	if err := db.Model(&models.DownloadLog{}).
		Select("content_type, COUNT(*) as count").
		Group("content_type").
		Order("count desc").
		Scan(&byType).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to aggregate download logs!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Download stats fetched successfully!", fiber.Map{
		"total":       total,
		"success":     success,
		"failed":      failed,
		"emails_sent": emailsSent,
		"by_type":     byType,
	})
}
