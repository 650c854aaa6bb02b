package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Resource type tags. The tag decides which storage folder convention,
// viewer and download counter a content item gets.
const (
	TypeNotes         = "notes"
	TypeQA            = "qa"
	TypeFlashcard     = "flashcard"
	TypeVideo         = "video"
	TypeAudio         = "audio"
	TypeWorksheet     = "worksheet"
	TypeQuestionPaper = "questionPaper"
	TypeQuiz          = "quiz"
	TypeActivity      = "activity"
	TypeBook          = "book"
	TypeSlide         = "slide"
	TypePDF           = "pdf" // legacy
)

// ResourceTypes lists every accepted type tag.
var ResourceTypes = []string{
	TypeNotes, TypeQA, TypeFlashcard, TypeVideo, TypeAudio, TypeWorksheet,
	TypeQuestionPaper, TypeQuiz, TypeActivity, TypeBook, TypeSlide, TypePDF,
}

// IsValidResourceType reports whether t is one of the accepted type tags.
func IsValidResourceType(t string) bool {
	for _, rt := range ResourceTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// StorageInfo describes an object held in external object storage.
type StorageInfo struct {
	StorageURL      string  `json:"storage_url" gorm:"default:''"`
	StoragePublicID string  `json:"storage_public_id" gorm:"default:'';uniqueIndex:idx_content_dup"`
	StorageSize     int64   `json:"storage_size" gorm:"default:0"`
	StorageMime     string  `json:"storage_mime" gorm:"default:''"`
	StoragePages    int     `json:"storage_pages" gorm:"default:0"`
	StorageDuration float64 `json:"storage_duration" gorm:"default:0"`
}

// Content is a polymorphic item attached to exactly one lesson. Its real
// payload is at most one of: storage descriptor, file path, inline body —
// checked in that order when serving.
type Content struct {
	gorm.Model
	LessonID uint   `json:"lesson_id" gorm:"index;not null;uniqueIndex:idx_content_dup,where:is_deleted = false"`
	Type     string `json:"type" gorm:"index;not null;uniqueIndex:idx_content_dup"`
	Title    string `json:"title" gorm:"not null;uniqueIndex:idx_content_dup"`

	Body     string `json:"body" gorm:"type:text"` // inline HTML payload
	FilePath string `json:"file_path" gorm:"default:''"`
	// The partial unique index on (lesson_id, type, title, storage_public_id)
	// doubles as the duplicate guard for the save-after-upload flow, so an
	// identical re-save conflicts instead of racing past the advisory
	// pre-check. It covers live rows only: deleting content frees the key,
	// so the same material can be created or uploaded again.
	StorageInfo

	// Type-specific metadata, e.g. qa carries marks/questionType/cognitiveProcess,
	// question papers carry examCategory.
	Metadata datatypes.JSONMap `json:"metadata"`

	IsPublished bool  `json:"is_published" gorm:"default:false"`
	Views       int64 `json:"views" gorm:"default:0"`
	Downloads   int64 `json:"downloads" gorm:"default:0"`

	// Hierarchy names and ids denormalized at creation time for display.
	ClassID     uint   `json:"class_id" gorm:"default:0"`
	ClassName   string `json:"class_name" gorm:"default:''"`
	SubjectID   uint   `json:"subject_id" gorm:"default:0"`
	SubjectName string `json:"subject_name" gorm:"default:''"`
	UnitID      uint   `json:"unit_id" gorm:"default:0"`
	UnitName    string `json:"unit_name" gorm:"default:''"`
	SubUnitID   uint   `json:"sub_unit_id" gorm:"default:0"`
	SubUnitName string `json:"sub_unit_name" gorm:"default:''"`
	LessonName  string `json:"lesson_name" gorm:"default:''"`

	IsDeleted bool `json:"-" gorm:"default:false"`
}

// FileBearing reports whether the type tag normally carries a file payload
// (as opposed to inline flashcard/qa/quiz bodies).
func FileBearing(resourceType string) bool {
	switch resourceType {
	case TypeFlashcard, TypeQA, TypeQuiz:
		return false
	default:
		return true
	}
}

// PayloadKind identifies where a content item's real payload lives.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadStorage
	PayloadFilePath
	PayloadBody
)

// Payload resolves the content's payload source: storage descriptor first,
// then file path, then inline body.
func (ct *Content) Payload() PayloadKind {
	switch {
	case ct.StorageURL != "" || ct.StoragePublicID != "":
		return PayloadStorage
	case ct.FilePath != "":
		return PayloadFilePath
	case ct.Body != "":
		return PayloadBody
	default:
		return PayloadNone
	}
}
