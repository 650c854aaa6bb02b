package models

import "gorm.io/gorm"

// DownloadLog statuses. A log row is created when the request is received
// and updated in place once the attempt reaches a terminal state.
const (
	DownloadPending = "pending"
	DownloadSuccess = "success"
	DownloadFailed  = "failed"
)

// DownloadLog is the audit record of a single download or export attempt.
// Reference is quoted back to the requester so support calls can find the
// exact attempt.
type DownloadLog struct {
	gorm.Model
	Reference string `json:"reference" gorm:"index;default:''"`
	UserID    *uint  `json:"user_id" gorm:"index"`
	Email     string `json:"email" gorm:"index;default:''"`

	ContentID    *uint  `json:"content_id" gorm:"index"`
	ContentTitle string `json:"content_title" gorm:"default:''"`
	ContentType  string `json:"content_type" gorm:"default:''"`

	ClassName   string `json:"class_name" gorm:"default:''"`
	SubjectName string `json:"subject_name" gorm:"default:''"`
	UnitName    string `json:"unit_name" gorm:"default:''"`
	SubUnitName string `json:"sub_unit_name" gorm:"default:''"`
	LessonName  string `json:"lesson_name" gorm:"default:''"`

	Status       string `json:"status" gorm:"index;default:'pending'"`
	EmailSent    bool   `json:"email_sent" gorm:"default:false"`
	ErrorMessage string `json:"error_message" gorm:"type:text"`
	ClientIP     string `json:"client_ip" gorm:"default:''"`
}
