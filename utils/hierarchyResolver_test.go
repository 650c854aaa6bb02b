package utils_test

import (
	"fmt"
	"testing"

	"kalvi/models"
	"kalvi/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Class{}, &models.Subject{}, &models.Unit{},
		&models.SubUnit{}, &models.Lesson{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedChain creates one full Class->...->Lesson chain and returns the leaf.
func seedChain(t *testing.T, db *gorm.DB) models.Lesson {
	t.Helper()
	class := models.Class{Name: "Class 6"}
	if err := db.Create(&class).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}
	subject := models.Subject{Name: "Maths", ClassID: class.ID}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	unit := models.Unit{Name: "4", SubjectID: subject.ID}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	subUnit := models.SubUnit{Name: "4.2 Decimals", UnitID: unit.ID}
	if err := db.Create(&subUnit).Error; err != nil {
		t.Fatalf("seed subunit: %v", err)
	}
	lesson := models.Lesson{Name: "Place Value", SubUnitID: subUnit.ID}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return lesson
}

func TestResolveHierarchy_FullChain(t *testing.T) {
	db := openTestDB(t)
	lesson := seedChain(t, db)

	h := utils.ResolveHierarchy(db, fmt.Sprint(lesson.ID), "")
	if !h.Complete {
		t.Fatalf("expected complete chain, got %+v", h)
	}
	if h.ClassName != "Class 6" || h.SubjectName != "Maths" ||
		h.UnitName != "4" || h.SubUnitName != "4.2 Decimals" ||
		h.LessonName != "Place Value" {
		t.Errorf("unexpected chain: %+v", h)
	}
	if h.LessonID != lesson.ID {
		t.Errorf("lesson id = %d, want %d", h.LessonID, lesson.ID)
	}
}

func TestResolveHierarchy_SubUnitID(t *testing.T) {
	db := openTestDB(t)
	seedChain(t, db)

	var subUnit models.SubUnit
	if err := db.First(&subUnit).Error; err != nil {
		t.Fatalf("load subunit: %v", err)
	}

	// A sub-unit id resolves through its first lesson.
	h := utils.ResolveHierarchy(db, fmt.Sprint(subUnit.ID), "")
	if h.SubUnitName != "4.2 Decimals" {
		t.Errorf("sub-unit name = %q, want 4.2 Decimals", h.SubUnitName)
	}
	if h.LessonName != "Place Value" {
		t.Errorf("representative lesson = %q, want Place Value", h.LessonName)
	}
}

func TestResolveHierarchy_EmptySubUnit(t *testing.T) {
	db := openTestDB(t)
	seedChain(t, db)

	var unit models.Unit
	if err := db.First(&unit).Error; err != nil {
		t.Fatalf("load unit: %v", err)
	}
	orphan := models.SubUnit{Name: "Empty", UnitID: unit.ID}
	if err := db.Create(&orphan).Error; err != nil {
		t.Fatalf("seed orphan subunit: %v", err)
	}

	h := utils.ResolveHierarchy(db, fmt.Sprint(orphan.ID), "")
	if h.LessonName != "UnknownLesson" {
		t.Errorf("lesson name = %q, want UnknownLesson", h.LessonName)
	}
	if h.Complete {
		t.Error("chain with synthesized lesson must not be complete")
	}
	if h.ClassName != "Class 6" {
		t.Errorf("class name = %q, want Class 6", h.ClassName)
	}

	// A caller-supplied title beats the synthesized lesson name.
	h = utils.ResolveHierarchy(db, fmt.Sprint(orphan.ID), "Decimal Drills")
	if h.LessonName != "Decimal Drills" {
		t.Errorf("lesson name = %q, want Decimal Drills", h.LessonName)
	}
	if h.Complete {
		t.Error("chain with supplied title must still not be complete")
	}
}

func TestResolveHierarchy_BrokenChain(t *testing.T) {
	db := openTestDB(t)

	// Lesson whose sub-unit points at a unit that no longer exists.
	subUnit := models.SubUnit{Name: "Stranded", UnitID: 999}
	if err := db.Create(&subUnit).Error; err != nil {
		t.Fatalf("seed subunit: %v", err)
	}
	lesson := models.Lesson{Name: "Orphaned Lesson", SubUnitID: subUnit.ID}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	h := utils.ResolveHierarchy(db, fmt.Sprint(lesson.ID), "")
	if h.Complete {
		t.Fatal("broken chain reported complete")
	}
	if h.LessonName != "Orphaned Lesson" {
		t.Errorf("lesson name = %q", h.LessonName)
	}
	if h.SubUnitName != "Stranded" {
		t.Errorf("sub-unit name = %q", h.SubUnitName)
	}
	if h.UnitName != "UnknownUnit" || h.SubjectName != "UnknownSubject" || h.ClassName != "DefaultClass" {
		t.Errorf("missing ancestors not synthesized: %+v", h)
	}
}

func TestResolveHierarchy_NeverFails(t *testing.T) {
	db := openTestDB(t)

	cases := []struct {
		id        string
		title     string
		wantClass string
	}{
		{"999", "", "Class_999"},
		{"6abc", "Fractions", "Class_"},            // unparsable, leading digit
		{"garbage", "Some Title", "DefaultClass"},  // no digits at all
		{"", "", "DefaultClass"},
	}

	for _, tc := range cases {
		h := utils.ResolveHierarchy(db, tc.id, tc.title)
		if h.Complete {
			t.Errorf("id %q: fallback chain reported complete", tc.id)
		}
		if tc.wantClass == "Class_" {
			if h.ClassName != "Class_6" {
				t.Errorf("id %q: class = %q, want Class_6", tc.id, h.ClassName)
			}
		} else if h.ClassName != tc.wantClass {
			t.Errorf("id %q: class = %q, want %q", tc.id, h.ClassName, tc.wantClass)
		}
		if tc.title != "" && h.LessonName != tc.title {
			t.Errorf("id %q: lesson = %q, want title %q", tc.id, h.LessonName, tc.title)
		}

		for i, seg := range h.PathSegments() {
			if seg == "" {
				t.Errorf("id %q: path segment %d empty", tc.id, i)
			}
		}
	}
}

func TestResolveHierarchy_SkipsDeleted(t *testing.T) {
	db := openTestDB(t)
	lesson := seedChain(t, db)

	if err := db.Model(&models.Lesson{}).Where("id = ?", lesson.ID).
		Update("is_deleted", true).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	h := utils.ResolveHierarchy(db, fmt.Sprint(lesson.ID), "Fallback Title")
	if h.Complete {
		t.Error("deleted lesson must not resolve as complete")
	}
	if h.LessonName != "Fallback Title" {
		t.Errorf("lesson = %q, want title fallback", h.LessonName)
	}
}
