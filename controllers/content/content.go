package contentController

import (
	"log"
	"strings"

	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"
	"kalvi/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store is the object-storage client, wired once at startup.
var Store utils.ObjectStore

// Init hands the controller its storage dependency.
func Init(store utils.ObjectStore) {
	Store = store
}

// Inline bodies above this are rejected for file-bearing types so a record
// never brushes against the document-size ceiling of downstream consumers.
const MaxInlineBodySize = 12 * 1024 * 1024

// ContentRequest is the validated JSON create body.
type ContentRequest struct {
	LessonID    uint                   `json:"lesson_id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	FilePath    string                 `json:"file_path"`
	Metadata    map[string]interface{} `json:"metadata"`
	IsPublished bool                   `json:"is_published"`
}

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// denormalizeHierarchy copies the resolved chain onto the content record
// for display without joins.
func denormalizeHierarchy(ct *models.Content, h utils.ResolvedHierarchy) {
	ct.ClassID = h.ClassID
	ct.ClassName = h.ClassName
	ct.SubjectID = h.SubjectID
	ct.SubjectName = h.SubjectName
	ct.UnitID = h.UnitID
	ct.UnitName = h.UnitName
	ct.SubUnitID = h.SubUnitID
	ct.SubUnitName = h.SubUnitName
	ct.LessonName = h.LessonName
}

// CreateContent creates a content record from a direct JSON POST (inline
// body or pre-existing file path).
func CreateContent(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedContent").(*ContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var lesson models.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", reqData.LessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if models.FileBearing(reqData.Type) && len(reqData.Body) > MaxInlineBodySize {
		return middleware.JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, "CONTENT_TOO_LARGE: inline body exceeds the 12MB limit for file-bearing types.", nil)
	}

	resolved := utils.ResolveHierarchy(db, itoa(reqData.LessonID), reqData.Title)

	content := models.Content{
		LessonID:    reqData.LessonID,
		Type:        reqData.Type,
		Title:       reqData.Title,
		Body:        reqData.Body,
		FilePath:    reqData.FilePath,
		Metadata:    datatypes.JSONMap(reqData.Metadata),
		IsPublished: reqData.IsPublished,
	}
	denormalizeHierarchy(&content, resolved)

	if err := db.Create(&content).Error; err != nil {
		if isDuplicateErr(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Duplicate content for this lesson, title and type!", fiber.Map{"duplicate": true})
		}
		log.Printf("Error saving content: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content created successfully!", content)
}

// ListGrouped returns all content grouped by type tag.
func ListGrouped(c *fiber.Ctx) error {
	db := database.Database.Db.Where("is_deleted = ?", false)
	if c.Query("onlyPublished") == "true" {
		db = db.Where("is_published = ?", true)
	}
	if lessonID := c.QueryInt("lesson_id", 0); lessonID > 0 {
		db = db.Where("lesson_id = ?", lessonID)
	}

	var contents []models.Content
	if err := db.Order("created_at desc").Find(&contents).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
	}

	grouped := make(map[string][]models.Content)
	for _, ct := range contents {
		grouped[ct.Type] = append(grouped[ct.Type], ct)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content fetched successfully!", fiber.Map{
		"content_by_type": grouped,
		"total":           len(contents),
	})
}

// GetFlashcards returns the published flashcards of a lesson.
func GetFlashcards(c *fiber.Ctx) error {
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil || lessonID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson ID must be a positive number!", nil)
	}

	var cards []models.Content
	if err := database.Database.Db.
		Where("lesson_id = ? AND type = ? AND is_published = ? AND is_deleted = ?", lessonID, models.TypeFlashcard, true, false).
		Order("id asc").Find(&cards).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch flashcards!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Flashcards fetched successfully!", cards)
}

// GetQA returns the published Q&A items of a lesson.
func GetQA(c *fiber.Ctx) error {
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil || lessonID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson ID must be a positive number!", nil)
	}

	var items []models.Content
	if err := database.Database.Db.
		Where("lesson_id = ? AND type = ? AND is_published = ? AND is_deleted = ?", lessonID, models.TypeQA, true, false).
		Order("id asc").Find(&items).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch Q&A!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Q&A fetched successfully!", items)
}

// GetQAStats aggregates a lesson's Q&A metadata: counts per marks value,
// question type and cognitive process.
func GetQAStats(c *fiber.Ctx) error {
	lessonID, err := c.ParamsInt("lessonId")
	if err != nil || lessonID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson ID must be a positive number!", nil)
	}

	var items []models.Content
	if err := database.Database.Db.
		Where("lesson_id = ? AND type = ? AND is_deleted = ?", lessonID, models.TypeQA, false).
		Find(&items).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch Q&A!", nil)
	}

	byMarks := make(map[string]int)
	byQuestionType := make(map[string]int)
	byCognitiveProcess := make(map[string]int)
	for _, item := range items {
		byMarks[metaString(item.Metadata, "marks")]++
		byQuestionType[metaString(item.Metadata, "questionType")]++
		byCognitiveProcess[metaString(item.Metadata, "cognitiveProcess")]++
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Q&A stats fetched successfully!", fiber.Map{
		"total":                items,
		"total_count":          len(items),
		"by_marks":             byMarks,
		"by_question_type":     byQuestionType,
		"by_cognitive_process": byCognitiveProcess,
	})
}

// DeleteContent removes a content record. When the record references a
// storage object, exactly one cleanup call is made first; its failure is
// logged (and queued for the reaper) but never blocks the delete.
func DeleteContent(c *fiber.Ctx) error {
	contentID, err := c.ParamsInt("id")
	if err != nil || contentID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content ID must be a positive number!", nil)
	}

	db := database.Database.Db

	var content models.Content
	if err := db.Where("id = ? AND is_deleted = ?", contentID, false).First(&content).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}

	cleanupStorageObject(db, &content)

	if err := db.Model(&models.Content{}).Where("id = ?", contentID).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully!", nil)
}

// BulkDelete removes a set of content records with the same best-effort
// per-record storage cleanup as single delete.
func BulkDelete(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBulkDelete").(*BulkDeleteRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var contents []models.Content
	if err := db.Where("id IN ? AND is_deleted = ?", reqData.IDs, false).Find(&contents).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch content!", nil)
	}

	for i := range contents {
		cleanupStorageObject(db, &contents[i])
	}

	result := db.Model(&models.Content{}).Where("id IN ?", reqData.IDs).Update("is_deleted", true)
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully!", fiber.Map{
		"deleted": result.RowsAffected,
	})
}

// BulkDeleteRequest is the validated bulk delete body.
type BulkDeleteRequest struct {
	IDs []uint `json:"ids"`
}

// CheckDuplicate reports whether content with the same (lessonId, title,
// type) already exists, optionally narrowed by filename/size. Advisory
// only: the unique index is what actually prevents the duplicate.
func CheckDuplicate(c *fiber.Ctx) error {
	lessonID := c.QueryInt("lessonId", 0)
	title := strings.TrimSpace(c.Query("title"))
	resourceType := strings.TrimSpace(c.Query("type"))

	if lessonID < 1 || title == "" || resourceType == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "lessonId, title and type query params are required!", nil)
	}

	db := database.Database.Db.Model(&models.Content{}).
		Where("lesson_id = ? AND title = ? AND type = ? AND is_deleted = ?", lessonID, title, resourceType, false)

	if size := c.QueryInt("size", 0); size > 0 {
		db = db.Where("storage_size = ?", size)
	}
	if filename := strings.TrimSpace(c.Query("filename")); filename != "" {
		db = db.Where("storage_public_id LIKE ?", "%/"+filename)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check for duplicates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Duplicate check completed!", fiber.Map{
		"exists": count > 0,
		"count":  count,
	})
}

// cleanupStorageObject best-effort deletes the storage object behind a
// content record. On failure the object is queued for the cron reaper.
func cleanupStorageObject(db *gorm.DB, content *models.Content) {
	if content.StoragePublicID == "" || Store == nil {
		return
	}
	if err := Store.Delete(content.StoragePublicID); err != nil {
		log.Printf("Storage cleanup failed for %s: %v", content.StoragePublicID, err)
		db.Create(&models.CleanupTask{
			PublicID:  content.StoragePublicID,
			LastError: err.Error(),
		})
	}
}

func metaString(m datatypes.JSONMap, key string) string {
	if m == nil {
		return "unspecified"
	}
	v, ok := m[key]
	if !ok || v == nil {
		return "unspecified"
	}
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	if f, ok := v.(float64); ok {
		return trimFloat(f)
	}
	return "unspecified"
}
