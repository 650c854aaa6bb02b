package contentController

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kalvi/database"
	"kalvi/middleware"
	"kalvi/models"
	"kalvi/utils"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// UploadRequest is the validated multipart upload metadata.
type UploadRequest struct {
	LessonID     string `json:"lessonId"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	ExamCategory string `json:"examCategory"`
	Pages        int    `json:"pages"`
	Duration     float64 `json:"duration"`
}

// UploadContent is the main upload pipeline: resolve the lesson's ancestry,
// derive the deterministic storage address, stream the file to object
// storage under a bounded timeout, then persist the content record. A
// persistence failure rolls the object back (best effort).
func UploadContent(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUpload").(*UploadRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "A file is required!", nil)
	}

	if Store == nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Object storage is not configured!", nil)
	}

	db := database.Database.Db
	resolved := utils.ResolveHierarchy(db, reqData.LessonID, reqData.Title)

	mimeType := fileHeader.Header.Get("Content-Type")
	kind := utils.ClassifyResourceKind(reqData.Type, mimeType)

	folder := utils.BuildFolderPath(resolved, reqData.Type, reqData.ExamCategory)
	objectName := utils.BuildObjectName(resolved, reqData.Type, reqData.Title)
	if ext := filepath.Ext(fileHeader.Filename); ext != "" {
		objectName += strings.ToLower(ext)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read the uploaded file!", nil)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(c.Context(), utils.UploadTimeout)
	defer cancel()

	result, err := Store.Upload(ctx, folder, objectName, src, fileHeader.Size, mimeType)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Upload timed out after 5 minutes. Please try again with a smaller file or a better connection.", nil)
		}
		if utils.IsSizeLimitError(err) {
			return middleware.JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, "The file exceeds the storage provider's size limit!", nil)
		}
		log.Printf("Storage upload failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Upload failed! "+err.Error(), nil)
	}

	// The lesson can vanish while a big file streams. Re-verify before the
	// record points at it.
	lessonID, _ := strconv.ParseUint(reqData.LessonID, 10, 32)
	var lesson models.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", uint(lessonID), false).First(&lesson).Error; err != nil {
		rollbackStorageObject(result.PublicID)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "INVALID_LESSON: the target lesson no longer exists.", nil)
	}

	content := models.Content{
		LessonID: lesson.ID,
		Type:     reqData.Type,
		Title:    reqData.Title,
		StorageInfo: models.StorageInfo{
			StorageURL:      result.URL,
			StoragePublicID: result.PublicID,
			StorageSize:     fileHeader.Size,
			StorageMime:     result.Mime,
			StoragePages:    reqData.Pages,
			StorageDuration: reqData.Duration,
		},
	}
	if reqData.ExamCategory != "" {
		content.Metadata = datatypes.JSONMap{"examCategory": reqData.ExamCategory}
	}
	denormalizeHierarchy(&content, resolved)

	if err := db.Create(&content).Error; err != nil {
		rollbackStorageObject(result.PublicID)
		if isDuplicateErr(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Duplicate content for this lesson, title and type!", fiber.Map{"duplicate": true})
		}
		log.Printf("Failed to persist content after upload: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Upload stored but the record could not be saved. The uploaded object has been rolled back.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content uploaded successfully!", fiber.Map{
		"content": content,
		"kind":    kind,
		"folder":  folder,
	})
}

// rollbackStorageObject compensates a failed save by deleting the object
// just uploaded; if that also fails the reaper picks it up later.
func rollbackStorageObject(publicID string) {
	if err := Store.Delete(publicID); err != nil {
		log.Printf("Rollback delete failed for %s: %v", publicID, err)
		database.Database.Db.Create(&models.CleanupTask{
			PublicID:  publicID,
			LastError: err.Error(),
		})
	}
}

// URLContentRequest is the validated external-link content body.
type URLContentRequest struct {
	LessonID    uint                   `json:"lesson_id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	URL         string                 `json:"url"`
	Metadata    map[string]interface{} `json:"metadata"`
	IsPublished bool                   `json:"is_published"`
}

// CreateURLContent registers externally hosted content (e.g. a YouTube
// link). The URL is probed with a HEAD request to capture size and MIME;
// probe failure is not fatal.
func CreateURLContent(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedURLContent").(*URLContentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var lesson models.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", reqData.LessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	resolved := utils.ResolveHierarchy(db, itoa(reqData.LessonID), reqData.Title)

	content := models.Content{
		LessonID:    reqData.LessonID,
		Type:        reqData.Type,
		Title:       reqData.Title,
		FilePath:    reqData.URL,
		Metadata:    datatypes.JSONMap(reqData.Metadata),
		IsPublished: reqData.IsPublished,
	}
	denormalizeHierarchy(&content, resolved)

	client := resty.New().SetTimeout(10 * time.Second)
	if resp, err := client.R().Head(reqData.URL); err == nil && resp.StatusCode() < 400 {
		content.StorageMime = resp.Header().Get("Content-Type")
		if length := resp.Header().Get("Content-Length"); length != "" {
			if size, err := strconv.ParseInt(length, 10, 64); err == nil {
				content.StorageSize = size
			}
		}
	} else if err != nil {
		log.Printf("HEAD probe failed for %s: %v", reqData.URL, err)
	}

	if err := db.Create(&content).Error; err != nil {
		if isDuplicateErr(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Duplicate content for this lesson, title and type!", fiber.Map{"duplicate": true})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content created successfully!", content)
}

// UploadSignature issues a presigned PUT target so the client can stream
// the file to object storage directly, then confirm with StorageSave.
func UploadSignature(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignature").(*SignatureRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if Store == nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Object storage is not configured!", nil)
	}

	db := database.Database.Db
	resolved := utils.ResolveHierarchy(db, reqData.LessonID, reqData.Title)

	folder := utils.BuildFolderPath(resolved, reqData.Type, reqData.ExamCategory)
	objectName := utils.BuildObjectName(resolved, reqData.Type, reqData.Title)
	if ext := filepath.Ext(reqData.Filename); ext != "" {
		objectName += strings.ToLower(ext)
	}

	uploadURL, publicID, err := Store.SignedPutURL(folder, objectName, 15*time.Minute)
	if err != nil {
		log.Printf("Failed to sign upload URL: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to prepare the signed upload!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Signed upload prepared!", fiber.Map{
		"upload_url": uploadURL,
		"public_id":  publicID,
		"folder":     folder,
		"expires_in": int((15 * time.Minute).Seconds()),
	})
}

// SignatureRequest is the validated signed-upload preparation body.
type SignatureRequest struct {
	LessonID     string `json:"lessonId"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Filename     string `json:"filename"`
	ExamCategory string `json:"examCategory"`
}

// StorageSaveRequest is the validated post-upload save body.
type StorageSaveRequest struct {
	LessonID    uint                   `json:"lesson_id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	URL         string                 `json:"url"`
	PublicID    string                 `json:"public_id"`
	Size        int64                  `json:"size"`
	Mime        string                 `json:"mime"`
	Pages       int                    `json:"pages"`
	Duration    float64                `json:"duration"`
	Metadata    map[string]interface{} `json:"metadata"`
	IsPublished bool                   `json:"is_published"`
}

// StorageSave persists the record for an object the client uploaded via the
// signed flow. Exact (lesson, title, type, public id) duplicates get a 409.
func StorageSave(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStorageSave").(*StorageSaveRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var lesson models.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", reqData.LessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var existing int64
	db.Model(&models.Content{}).
		Where("lesson_id = ? AND title = ? AND type = ? AND storage_public_id = ? AND is_deleted = ?",
			reqData.LessonID, reqData.Title, reqData.Type, reqData.PublicID, false).
		Count(&existing)
	if existing > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This file is already saved for the lesson!", fiber.Map{"duplicate": true})
	}

	resolved := utils.ResolveHierarchy(db, itoa(reqData.LessonID), reqData.Title)

	content := models.Content{
		LessonID: reqData.LessonID,
		Type:     reqData.Type,
		Title:    reqData.Title,
		StorageInfo: models.StorageInfo{
			StorageURL:      reqData.URL,
			StoragePublicID: reqData.PublicID,
			StorageSize:     reqData.Size,
			StorageMime:     reqData.Mime,
			StoragePages:    reqData.Pages,
			StorageDuration: reqData.Duration,
		},
		Metadata:    datatypes.JSONMap(reqData.Metadata),
		IsPublished: reqData.IsPublished,
	}
	denormalizeHierarchy(&content, resolved)

	if err := db.Create(&content).Error; err != nil {
		// The pre-check above is advisory; the unique index is the real
		// guard when two saves race.
		if isDuplicateErr(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "This file is already saved for the lesson!", fiber.Map{"duplicate": true})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save content!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content saved successfully!", content)
}

// StorageCleanupRequest is the validated manual cleanup body.
type StorageCleanupRequest struct {
	PublicIDs []string `json:"public_ids"`
}

// StorageCleanup deletes the named storage objects and drains the pending
// reaper queue. Maintenance endpoint for operators.
func StorageCleanup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStorageCleanup").(*StorageCleanupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if Store == nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Object storage is not configured!", nil)
	}

	deleted := []string{}
	failed := map[string]string{}
	for _, publicID := range reqData.PublicIDs {
		if err := Store.Delete(publicID); err != nil {
			failed[publicID] = err.Error()
		} else {
			deleted = append(deleted, publicID)
		}
	}

	var pending int64
	database.Database.Db.Model(&models.CleanupTask{}).Where("done = ?", false).Count(&pending)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cleanup completed!", fiber.Map{
		"deleted":       deleted,
		"failed":        failed,
		"pending_tasks": pending,
	})
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
