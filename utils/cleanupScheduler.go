package utils

import (
	"log"
	"time"

	"kalvi/database"
	"kalvi/models"

	"github.com/robfig/cron/v3"
)

const maxCleanupAttempts = 10

// logReaper logs reaper events with timestamp
func logReaper(message string) {
	log.Printf("[STORAGE-REAPER %s] %s", time.Now().Format(time.RFC3339), message)
}

// processCleanupTasks retries storage deletes that failed their immediate
// compensating step. Tasks exceeding the attempt cap stay pending for
// manual review via the admin cleanup endpoint.
func processCleanupTasks(store ObjectStore) {
	db := database.Database.Db

	var tasks []models.CleanupTask
	if err := db.Where("done = ? AND attempts < ?", false, maxCleanupAttempts).
		Order("created_at asc").Limit(50).Find(&tasks).Error; err != nil {
		logReaper("Error fetching cleanup tasks: " + err.Error())
		return
	}

	for _, task := range tasks {
		task.Attempts++
		if err := store.Delete(task.PublicID); err != nil {
			task.LastError = err.Error()
			logReaper("Delete failed for " + task.PublicID + ": " + err.Error())
		} else {
			task.Done = true
			task.LastError = ""
			logReaper("Reaped orphaned object " + task.PublicID)
		}
		db.Save(&task)
	}
}

// StartCleanupScheduler runs the orphaned-object reaper every 30 minutes.
func StartCleanupScheduler(store ObjectStore) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("*/30 * * * *", func() {
		processCleanupTasks(store)
	}); err != nil {
		log.Fatalf("Failed to schedule storage reaper: %v", err)
	}

	c.Start()
	logReaper("Scheduler started")
	return c
}
