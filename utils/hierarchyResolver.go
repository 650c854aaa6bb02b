package utils

import (
	"log"
	"strconv"
	"strings"

	"kalvi/models"

	"gorm.io/gorm"
)

// ResolvedHierarchy carries the full ancestor chain of a lesson. Names are
// the raw database values; callers wanting path-safe segments go through
// CleanForFilename / BuildFolderPath. Complete is false whenever any
// segment had to be synthesized.
type ResolvedHierarchy struct {
	ClassID     uint
	ClassName   string
	SubjectID   uint
	SubjectName string
	UnitID      uint
	UnitName    string
	SubUnitID   uint
	SubUnitName string
	LessonID    uint
	LessonName  string
	Complete    bool
}

// PathSegments returns the five sanitized segments in root-to-leaf order.
func (h ResolvedHierarchy) PathSegments() [5]string {
	return [5]string{
		CleanForFilename(h.ClassName),
		CleanForFilename(h.SubjectName),
		CleanForFilename(FormatUnitName(h.UnitName)),
		CleanForFilename(h.SubUnitName),
		CleanForFilename(h.LessonName),
	}
}

// ResolveHierarchy resolves a node id (lesson first, sub-unit as a second
// guess) into its full ancestor chain. It never returns an error: a broken
// or unresolvable chain degrades to synthesized defaults so an upload can
// always be addressed somewhere.
func ResolveHierarchy(db *gorm.DB, id string, title string) ResolvedHierarchy {
	nodeID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 32)
	if err != nil {
		return fallbackHierarchy(id, title)
	}

	var lesson models.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", uint(nodeID), false).First(&lesson).Error; err == nil {
		return resolveFromLesson(db, &lesson)
	}

	// Not a lesson; maybe the caller handed us a sub-unit id. Use its first
	// lesson as a representative so the chain still lands on real names.
	var subUnit models.SubUnit
	if err := db.Where("id = ? AND is_deleted = ?", uint(nodeID), false).First(&subUnit).Error; err == nil {
		var first models.Lesson
		if err := db.Where("sub_unit_id = ? AND is_deleted = ?", subUnit.ID, false).
			Order("id asc").First(&first).Error; err == nil {
			return resolveFromLesson(db, &first)
		}
		h := resolveFromSubUnit(db, &subUnit)
		h.LessonName = strings.TrimSpace(title)
		if h.LessonName == "" {
			h.LessonName = "UnknownLesson"
		}
		h.Complete = false
		return h
	}

	log.Printf("[HIERARCHY] id %q matched no lesson or sub-unit, using fallback", id)
	return fallbackHierarchy(id, title)
}

func resolveFromLesson(db *gorm.DB, lesson *models.Lesson) ResolvedHierarchy {
	h := ResolvedHierarchy{
		LessonID:   lesson.ID,
		LessonName: lesson.Name,
		Complete:   true,
	}

	var subUnit models.SubUnit
	if err := db.Where("id = ?", lesson.SubUnitID).First(&subUnit).Error; err != nil {
		h.SubUnitName = "UnknownSubUnit"
		h.UnitName = "UnknownUnit"
		h.SubjectName = "UnknownSubject"
		h.ClassName = "DefaultClass"
		h.Complete = false
		return h
	}
	up := resolveFromSubUnit(db, &subUnit)
	up.LessonID = h.LessonID
	up.LessonName = h.LessonName
	return up
}

func resolveFromSubUnit(db *gorm.DB, subUnit *models.SubUnit) ResolvedHierarchy {
	h := ResolvedHierarchy{
		SubUnitID:   subUnit.ID,
		SubUnitName: subUnit.Name,
		Complete:    true,
	}

	var unit models.Unit
	if err := db.Where("id = ?", subUnit.UnitID).First(&unit).Error; err != nil {
		h.UnitName = "UnknownUnit"
		h.SubjectName = "UnknownSubject"
		h.ClassName = "DefaultClass"
		h.Complete = false
		return h
	}
	h.UnitID = unit.ID
	h.UnitName = unit.Name

	var subject models.Subject
	if err := db.Where("id = ?", unit.SubjectID).First(&subject).Error; err != nil {
		h.SubjectName = "UnknownSubject"
		h.ClassName = "DefaultClass"
		h.Complete = false
		return h
	}
	h.SubjectID = subject.ID
	h.SubjectName = subject.Name

	var class models.Class
	if err := db.Where("id = ?", subject.ClassID).First(&class).Error; err != nil {
		h.ClassName = "DefaultClass"
		h.Complete = false
		return h
	}
	h.ClassID = class.ID
	h.ClassName = class.Name

	return h
}

// fallbackHierarchy builds a still-addressable chain out of nothing but
// the literal id and the supplied title. A leading digit run in the id is
// taken as a grade-number guess.
func fallbackHierarchy(id, title string) ResolvedHierarchy {
	className := "DefaultClass"
	trimmed := strings.TrimSpace(id)
	if trimmed != "" {
		if r := trimmed[0]; r >= '0' && r <= '9' {
			className = "Class_" + FirstNumber(trimmed)
		}
	}

	lessonName := strings.TrimSpace(title)
	if lessonName == "" {
		lessonName = "UnknownLesson"
	}

	return ResolvedHierarchy{
		ClassName:   className,
		SubjectName: "UnknownSubject",
		UnitName:    "UnknownUnit",
		SubUnitName: "UnknownSubUnit",
		LessonName:  lessonName,
		Complete:    false,
	}
}
