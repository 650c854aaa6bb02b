package models

import "gorm.io/gorm"

// CleanupTask queues a storage object whose compensating delete failed
// (e.g. the object uploaded fine but the content row could not be saved
// and the immediate rollback delete also errored). A cron reaper retries
// these until they go through.
type CleanupTask struct {
	gorm.Model
	PublicID  string `json:"public_id" gorm:"index;not null"`
	Attempts  int    `json:"attempts" gorm:"default:0"`
	LastError string `json:"last_error" gorm:"type:text"`
	Done      bool   `json:"done" gorm:"index;default:false"`
}
