package utils

import (
	"fmt"
	"strings"
	"time"

	"kalvi/models"
)

// Tamil Unicode block, kept alongside ASCII so bilingual names survive
// sanitization instead of collapsing to underscores.
const (
	tamilBlockStart = 0x0B80
	tamilBlockEnd   = 0x0BFF
)

const maxSegmentLen = 100

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	case r >= tamilBlockStart && r <= tamilBlockEnd:
		return true
	default:
		return false
	}
}

// CleanForFilename sanitizes a name for safe use as a file-system or URL
// path segment. Disallowed runes become underscores, runs of underscores
// collapse, leading/trailing underscores are stripped, and the result is
// truncated to 100 runes. An empty result is replaced with Item_<timestamp>
// so the caller always gets a usable segment.
func CleanForFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if allowedRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	cleaned := b.String()
	for strings.Contains(cleaned, "__") {
		cleaned = strings.ReplaceAll(cleaned, "__", "_")
	}
	cleaned = strings.Trim(cleaned, "_")

	if runes := []rune(cleaned); len(runes) > maxSegmentLen {
		cleaned = strings.Trim(string(runes[:maxSegmentLen]), "_")
	}

	if cleaned == "" {
		return fmt.Sprintf("Item_%d", time.Now().Unix())
	}
	return cleaned
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatUnitName prefixes a purely numeric unit name ("4" -> "Unit_4") so
// the storage folder stays readable. Non-numeric names pass through.
func FormatUnitName(name string) string {
	trimmed := strings.TrimSpace(name)
	if isAllDigits(trimmed) {
		return "Unit_" + trimmed
	}
	return name
}

// FirstNumber extracts the first run of digits from a name, defaulting to
// "0" when the name has none. Used for the <unit>.<subUnit>.<lesson>
// object naming convention.
func FirstNumber(name string) string {
	start := -1
	for i, r := range name {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return name[start:i]
		}
	}
	if start >= 0 {
		return name[start:]
	}
	return "0"
}

// CategoryFolder maps a resource type to its storage folder name.
func CategoryFolder(resourceType string) string {
	switch resourceType {
	case models.TypeNotes:
		return "Notes"
	case models.TypeQA:
		return "Question_Answers"
	case models.TypeFlashcard:
		return "Flashcards"
	case models.TypeVideo:
		return "Videos"
	case models.TypeAudio:
		return "Audios"
	case models.TypeWorksheet:
		return "Worksheets"
	case models.TypeQuestionPaper:
		return "Questions paper"
	case models.TypeQuiz:
		return "Quizzes"
	case models.TypeActivity:
		return "Activities"
	case models.TypeBook:
		return "Books"
	case models.TypeSlide:
		return "Slides"
	default:
		return "Files"
	}
}

// Object storage kinds.
const (
	KindImage = "image"
	KindVideo = "video"
	KindRaw   = "raw"
)

// ClassifyResourceKind picks the storage kind from the declared type and
// MIME. PDFs are always raw so the provider never runs document preview
// transforms on them.
func ClassifyResourceKind(resourceType, mimeType string) string {
	if strings.Contains(mimeType, "pdf") {
		return KindRaw
	}
	if resourceType == models.TypeVideo || strings.HasPrefix(mimeType, "video/") {
		return KindVideo
	}
	if strings.HasPrefix(mimeType, "image/") {
		return KindImage
	}
	return KindRaw
}

// BuildFolderPath joins the sanitized hierarchy with the resource category
// folder. Question papers use the shorter <class>/<subject>/Questions
// paper/<examCategory> layout keyed by exam rather than lesson.
func BuildFolderPath(h ResolvedHierarchy, resourceType, examCategory string) string {
	if resourceType == models.TypeQuestionPaper {
		segments := []string{
			CleanForFilename(h.ClassName),
			CleanForFilename(h.SubjectName),
			CategoryFolder(resourceType),
		}
		if examCategory != "" {
			segments = append(segments, CleanForFilename(examCategory))
		}
		return strings.Join(segments, "/")
	}

	return strings.Join([]string{
		CleanForFilename(h.ClassName),
		CleanForFilename(h.SubjectName),
		CleanForFilename(FormatUnitName(h.UnitName)),
		CleanForFilename(h.SubUnitName),
		CleanForFilename(h.LessonName),
		CategoryFolder(resourceType),
	}, "/")
}

// BuildObjectName derives the deterministic object name: the sanitized
// title for question papers, the numeric unit.subUnit.lesson convention
// for everything else.
func BuildObjectName(h ResolvedHierarchy, resourceType, title string) string {
	if resourceType == models.TypeQuestionPaper {
		return CleanForFilename(title)
	}
	return fmt.Sprintf("%s.%s.%s",
		FirstNumber(h.UnitName),
		FirstNumber(h.SubUnitName),
		FirstNumber(h.LessonName),
	)
}
