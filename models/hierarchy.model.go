package models

import "gorm.io/gorm"

// The curriculum is a strict five-level parent chain:
// Class -> Subject -> Unit -> SubUnit -> Lesson.
// Nodes are never cascade-deleted; deleting a parent can leave orphans
// and the resolver is expected to cope with a broken chain.

type Class struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

type Subject struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	ClassID     uint   `json:"class_id" gorm:"index;not null"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

type Unit struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	SubjectID   uint   `json:"subject_id" gorm:"index;not null"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

type SubUnit struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	UnitID      uint   `json:"unit_id" gorm:"index;not null"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

type Lesson struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	SubUnitID   uint   `json:"sub_unit_id" gorm:"index;not null"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
	DownloadCounts
}

// DownloadCounts tracks per-resource-type download totals on a lesson.
// Counters only ever go up; the sole reset path is a bulk collection clear.
type DownloadCounts struct {
	NotesDownloads         int64 `json:"notes_downloads" gorm:"default:0"`
	QADownloads            int64 `json:"qa_downloads" gorm:"default:0"`
	BookDownloads          int64 `json:"book_downloads" gorm:"default:0"`
	SlideDownloads         int64 `json:"slide_downloads" gorm:"default:0"`
	VideoDownloads         int64 `json:"video_downloads" gorm:"default:0"`
	AudioDownloads         int64 `json:"audio_downloads" gorm:"default:0"`
	FlashcardDownloads     int64 `json:"flashcard_downloads" gorm:"default:0"`
	WorksheetDownloads     int64 `json:"worksheet_downloads" gorm:"default:0"`
	QuestionPaperDownloads int64 `json:"question_paper_downloads" gorm:"default:0"`
	QuizDownloads          int64 `json:"quiz_downloads" gorm:"default:0"`
	ActivityDownloads      int64 `json:"activity_downloads" gorm:"default:0"`
	PDFDownloads           int64 `json:"pdf_downloads" gorm:"default:0"` // legacy pdf variants
}

// CounterColumn maps a resource type tag to the lesson counter column it
// increments. Unknown/legacy tags land on the legacy pdf counter.
func CounterColumn(resourceType string) string {
	switch resourceType {
	case TypeNotes:
		return "notes_downloads"
	case TypeQA:
		return "qa_downloads"
	case TypeBook:
		return "book_downloads"
	case TypeSlide:
		return "slide_downloads"
	case TypeVideo:
		return "video_downloads"
	case TypeAudio:
		return "audio_downloads"
	case TypeFlashcard:
		return "flashcard_downloads"
	case TypeWorksheet:
		return "worksheet_downloads"
	case TypeQuestionPaper:
		return "question_paper_downloads"
	case TypeQuiz:
		return "quiz_downloads"
	case TypeActivity:
		return "activity_downloads"
	default:
		return "pdf_downloads"
	}
}
